package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository defines the persistence contract for user records.
//
// Save is a full-record upsert with last-write-wins semantics. FindAllByID
// silently skips ids that do not resolve.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindAllByID(ctx context.Context, ids []string) ([]*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListAll(ctx context.Context) ([]*entity.User, error)
	Save(ctx context.Context, u *entity.User) error
}

// Transactor is implemented by stores that can run several writes atomically.
// Repository calls made with the ctx passed to fn join the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
