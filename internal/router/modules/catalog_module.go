package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-social-graph/internal/interface/http"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
)

// CatalogModule serves the public sport/skill catalog.
type CatalogModule struct {
	Handler *handlers.CatalogHandler
	Redis   *redis.Client
}

func NewCatalogModule(h *handlers.CatalogHandler, rdb *redis.Client) *CatalogModule {
	return &CatalogModule{Handler: h, Redis: rdb}
}

func (m *CatalogModule) Name() string { return "catalog" }

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/skills/sports", rl, m.Handler.Sports)
	rg.GET("/skills/:sport", rl, m.Handler.SkillsBySport)
}
