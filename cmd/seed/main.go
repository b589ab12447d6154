package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/config"
	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/container"
	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	pginfra "github.com/oksasatya/go-social-graph/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
)

type demoUser struct {
	email    string
	username string
	skills   []entity.Skill
}

var demoUsers = []demoUser{
	{"alice@example.com", "alice", []entity.Skill{{Sport: "Tennis", SkillName: "Serve"}}},
	{"bob@example.com", "bob", []entity.Skill{{Sport: "Football", SkillName: "Passing"}}},
	{"carol@example.com", "carol", nil},
}

const demoPassword = "password123"

// seed registers a few demo accounts in the configured user store and
// connects them in the follow graph: alice -> bob, bob -> alice, carol -> alice.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	for _, w := range cfg.Warnings {
		logger.Warn("config: " + w)
	}
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, pginfra.OptionsFromConfig(cfg, cfg.AppName+"-seed"))
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users, mongoClient, err := container.OpenUserStore(ctx, cfg, pool)
	if err != nil {
		log.Fatalf("failed to open user store: %v", err)
	}
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	}

	accounts := application.NewService(users, nil, nil, nil, logger, nil)
	graph := application.NewSocialGraphService(users, nil, logger, cfg.GraphCompensationAttempts)

	ids := map[string]string{}
	for _, d := range demoUsers {
		u, err := accounts.Register(ctx, application.RegisterInput{Email: d.email, Password: demoPassword, Username: d.username})
		if errors.Is(err, application.ErrEmailTaken) {
			u, err = users.GetByEmail(ctx, d.email)
		}
		if err != nil {
			log.Fatalf("failed to seed %s: %v", d.email, err)
		}
		if d.skills != nil {
			if _, err := accounts.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{Skills: d.skills}); err != nil {
				log.Fatalf("failed to set skills for %s: %v", d.email, err)
			}
		}
		ids[d.username] = u.ID
		fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, d.email, d.username, demoPassword)
	}

	edges := [][2]string{{"alice", "bob"}, {"bob", "alice"}, {"carol", "alice"}}
	for _, e := range edges {
		_, err := graph.Follow(ctx, ids[e[0]], ids[e[1]])
		if err != nil && !errors.Is(err, application.ErrAlreadyFollowing) {
			log.Fatalf("failed to seed follow %s -> %s: %v", e[0], e[1], err)
		}
		helpers.LogInfo(logger, "seeded follow", logrus.Fields{"actor": e[0], "target": e[1]})
	}
}
