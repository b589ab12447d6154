package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/go-social-graph/config"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
	"github.com/oksasatya/go-social-graph/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/go-social-graph/internal/infrastructure/postgres"
)

// OpenUserStore builds the user repository named by cfg.UserStore. The mongo
// client is returned so the caller can disconnect it; it is nil for postgres.
func OpenUserStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (repository.UserRepository, *mongo.Client, error) {
	switch cfg.UserStore {
	case config.UserStorePostgres:
		return pginfra.NewUserRepository(pool), nil, nil
	case config.UserStoreMongo:
		client, err := mongodb.NewClient(ctx, cfg.MongoURL)
		if err != nil {
			return nil, nil, err
		}
		users := mongodb.NewUserRepository(client.Database(cfg.MongoDB))
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return users, client, nil
	}
	return nil, nil, fmt.Errorf("unknown user store %q", cfg.UserStore)
}
