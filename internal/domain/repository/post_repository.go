package repository

import (
	"context"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
)

type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Post, error)
	ListPublic(ctx context.Context, limit int) ([]*entity.Post, error)
}
