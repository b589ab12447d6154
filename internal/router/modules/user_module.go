package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-social-graph/internal/interface/http"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
)

// UserModule wires profile, directory and follow-graph routes. All of them
// require authentication.
type UserModule struct {
	Users  *handlers.UserHandler
	Social *handlers.SocialHandler
	JWT    *helpers.JWTManager
	Redis  *redis.Client
}

func NewUserModule(users *handlers.UserHandler, social *handlers.SocialHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Users: users, Social: social, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Name() string { return "users" }

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(
		middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/profile", m.Users.GetProfile)
		auth.PUT("/profile", m.Users.UpdateProfile)
		auth.POST("/profile/picture", m.Users.UploadAvatar)

		auth.GET("/users", m.Users.ListUsers)
		auth.GET("/users/search", m.Users.Search)
		auth.GET("/users/:id", m.Users.GetUser)

		auth.GET("/users/:id/followers", m.Social.Followers)
		auth.GET("/users/:id/following", m.Social.Following)
		auth.GET("/users/:id/is-following/:targetId", m.Social.IsFollowing)
		auth.POST("/users/:id/follow", m.Social.Follow)
		auth.POST("/users/:id/unfollow", m.Social.Unfollow)
	}
}
