package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Registry collects modules and mounts them on the /api group in the order
// they were added.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
	Logger *logrus.Logger

	middlewares []gin.HandlerFunc
	modules     []Module
	names       map[string]struct{}
}

func NewRegistry(engine *gin.Engine, logger *logrus.Logger) *Registry {
	return &Registry{
		Engine: engine,
		API:    engine.Group("/api"),
		Logger: logger,
		names:  map[string]struct{}{},
	}
}

// Use adds middleware applied to every module route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

// Add queues mod for registration. A second module with the same name is
// rejected so two features cannot silently claim the same routes.
func (r *Registry) Add(mod Module) error {
	name := mod.Name()
	if _, dup := r.names[name]; dup {
		return fmt.Errorf("router: module %q already added", name)
	}
	r.names[name] = struct{}{}
	r.modules = append(r.modules, mod)
	return nil
}

// MustAdd is Add for startup wiring.
func (r *Registry) MustAdd(mod Module) {
	if err := r.Add(mod); err != nil {
		panic(err)
	}
}

func (r *Registry) Modules() []string {
	out := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m.Name())
	}
	return out
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		before := len(r.Engine.Routes())
		m.Register(r.API)
		if r.Logger != nil {
			r.Logger.WithFields(logrus.Fields{
				"module": m.Name(),
				"routes": len(r.Engine.Routes()) - before,
			}).Debug("module registered")
		}
	}
}
