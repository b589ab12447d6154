package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

type NotificationRepository struct {
	mu    sync.Mutex
	items map[string]entity.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[string]entity.Notification)}
}

func (r *NotificationRepository) Create(_ context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[n.ID] = *n
	return nil
}

func (r *NotificationRepository) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Notification, 0)
	for _, n := range r.items {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		n := n
		out = append(out, &n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.IsRead = true
	r.items[id] = n
	return nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, item := range r.items {
		if item.UserID == userID && !item.IsRead {
			item.IsRead = true
			r.items[id] = item
			n++
		}
	}
	return n, nil
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
