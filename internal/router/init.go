package router

import (
	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/container"
	pginfra "github.com/oksasatya/go-social-graph/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-graph/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-social-graph/internal/interface/http"
	"github.com/oksasatya/go-social-graph/internal/router/modules"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
)

// Services groups the application services built from the container.
type Services struct {
	Users         *application.Service
	Graph         *application.SocialGraphService
	Posts         *application.PostService
	Notifications *application.NotificationService
	Catalog       *application.CatalogService
}

// optional interfaces are left nil rather than holding a typed nil pointer.
func objectStorage() application.ObjectStorage {
	if up := helpers.NewGCSUploader(container.GetGCS(), container.GetConfig().GCSBucket); up != nil {
		return up
	}
	return nil
}

func userIndexer() application.UserIndexer {
	if es := container.GetES(); es != nil {
		return search.NewUserIndex(es, container.GetConfig().ESUsersIndex, container.GetLogger())
	}
	return nil
}

func publisher(p *helpers.RabbitPublisher) application.EventPublisher {
	if p != nil {
		return p
	}
	return nil
}

// BuildServices wires the application layer from the container singletons.
func BuildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	users := container.GetUserStore()
	pool := container.GetPGPool()
	storage := objectStorage()

	userSvc := application.NewService(users, container.GetJWT(), storage, container.GetRedis(), logger, userIndexer())
	userSvc.Mail = publisher(container.GetMailPub())
	userSvc.ResetPasswordURL = cfg.ResetPasswordURL
	userSvc.MailSendEnabled = cfg.MailSendEnabled
	userSvc.UploadMaxBytes = cfg.UploadMaxBytes

	postSvc := application.NewPostService(pginfra.NewPostRepository(pool), storage, logger)
	postSvc.UploadMaxBytes = cfg.UploadMaxBytes

	return Services{
		Users:         userSvc,
		Graph:         application.NewSocialGraphService(users, publisher(container.GetEventsPub()), logger, cfg.GraphCompensationAttempts),
		Posts:         postSvc,
		Notifications: application.NewNotificationService(pginfra.NewNotificationRepository(pool), users, logger),
		Catalog:       application.NewCatalogService(pginfra.NewSkillRepository(pool)),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	svc := BuildServices()
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()
	rdb := container.GetRedis()

	r.MustAdd(modules.NewAuthModule(handlers.NewAuthHandler(svc.Users, logger, cfg.CookieDomain, cfg.CookieSecure), jwt, rdb))
	r.MustAdd(modules.NewUserModule(handlers.NewUserHandler(svc.Users, logger), handlers.NewSocialHandler(svc.Graph, logger), jwt, rdb))
	r.MustAdd(modules.NewPostModule(handlers.NewPostHandler(svc.Posts, logger), jwt, rdb))
	r.MustAdd(modules.NewNotificationModule(handlers.NewNotificationHandler(svc.Notifications, logger), jwt, rdb))
	r.MustAdd(modules.NewCatalogModule(handlers.NewCatalogHandler(svc.Catalog, logger), rdb))
	if cfg.DebugMetricsEnabled {
		r.MustAdd(modules.NewDebugModule(rdb))
	}
}
