package repository

import (
	"context"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	// ListByUser returns the recipient's notifications, newest first.
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error)
	// MarkRead returns ErrNotFound unless the notification belongs to userID.
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
