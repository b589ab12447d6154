package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-social-graph/internal/interface/http"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
)

type PostModule struct {
	Handler *handlers.PostHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewPostModule(h *handlers.PostHandler, jwt *helpers.JWTManager, rdb *redis.Client) *PostModule {
	return &PostModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *PostModule) Name() string { return "posts" }

func (m *PostModule) Register(rg *gin.RouterGroup) {
	rg.GET("/posts/public", middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), nil), m.Handler.ListPublic)

	auth := rg.Group("/posts")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/mine", m.Handler.ListMine)
		auth.POST("", m.Handler.Create)
		auth.POST("/images", middleware.RateLimit(m.Redis, 20, time.Minute, middleware.KeyByUserID(), nil), m.Handler.UploadImage)
		auth.PUT("/:id", m.Handler.Update)
		auth.PUT("/:id/visibility", m.Handler.UpdateVisibility)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
