package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-social-graph/internal/interface/http"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
)

type NotificationModule struct {
	Handler *handlers.NotificationHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewNotificationModule(h *handlers.NotificationHandler, jwt *helpers.JWTManager, rdb *redis.Client) *NotificationModule {
	return &NotificationModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *NotificationModule) Name() string { return "notifications" }

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/notifications")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	{
		auth.GET("", m.Handler.List)
		auth.POST("/read-all", m.Handler.MarkAllRead)
		auth.POST("/:id/read", m.Handler.MarkRead)
	}
}
