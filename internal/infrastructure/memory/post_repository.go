package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

type PostRepository struct {
	mu    sync.RWMutex
	posts map[string]entity.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]entity.Post)}
}

func copyPost(p entity.Post) *entity.Post {
	p.ImageURLs = append([]string(nil), p.ImageURLs...)
	return &p
}

func (r *PostRepository) Create(_ context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = *copyPost(*p)
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id string) (*entity.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyPost(p), nil
}

func (r *PostRepository) Update(_ context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.posts[p.ID] = *copyPost(*p)
	return nil
}

func (r *PostRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *PostRepository) ListByUser(_ context.Context, userID string) ([]*entity.Post, error) {
	return r.list(func(p entity.Post) bool { return p.UserID == userID }, 0), nil
}

func (r *PostRepository) ListPublic(_ context.Context, limit int) ([]*entity.Post, error) {
	return r.list(func(p entity.Post) bool { return p.IsPublic }, limit), nil
}

func (r *PostRepository) list(keep func(entity.Post) bool, limit int) []*entity.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Post, 0)
	for _, p := range r.posts {
		if keep(p) {
			out = append(out, copyPost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

var _ repository.PostRepository = (*PostRepository)(nil)
