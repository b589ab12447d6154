package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO notifications (id, user_id, actor_id, type, message, reference_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ID, n.UserID, n.ActorID, string(n.Type), n.Message, n.ReferenceID, n.IsRead, n.CreatedAt)
	return err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, user_id, actor_id, type, message, reference_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1 AND ($2 = false OR is_read = false)
		ORDER BY created_at DESC, id
	`, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*entity.Notification, 0)
	for rows.Next() {
		var (
			n   entity.Notification
			typ string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.ActorID, &typ, &n.Message, &n.ReferenceID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = entity.NotificationType(typ)
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
