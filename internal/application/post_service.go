package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
)

const (
	defaultPublicPosts = 50
	maxPublicPosts     = 200
)

type PostService struct {
	Repo    repo.PostRepository
	Storage ObjectStorage
	Logger  *logrus.Logger

	UploadMaxBytes int64

	now func() time.Time
}

func NewPostService(posts repo.PostRepository, storage ObjectStorage, logger *logrus.Logger) *PostService {
	return &PostService{Repo: posts, Storage: storage, Logger: logger, UploadMaxBytes: 5 << 20, now: time.Now}
}

type PostInput struct {
	Content   string
	ImageURLs []string
	IsPublic  bool
}

func (s *PostService) Create(ctx context.Context, actorID string, in PostInput) (*entity.Post, error) {
	now := s.now()
	p := &entity.Post{
		ID:        uuid.NewString(),
		UserID:    actorID,
		Content:   strings.TrimSpace(in.Content),
		ImageURLs: append([]string{}, in.ImageURLs...),
		IsPublic:  in.IsPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// owned loads a post and checks that actorID wrote it.
func (s *PostService) owned(ctx context.Context, actorID, postID string) (*entity.Post, error) {
	p, err := s.Repo.GetByID(ctx, postID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	}
	if err != nil {
		return nil, err
	}
	if p.UserID != actorID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *PostService) Update(ctx context.Context, actorID, postID string, in PostInput) (*entity.Post, error) {
	p, err := s.owned(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}
	p.Content = strings.TrimSpace(in.Content)
	p.ImageURLs = append([]string{}, in.ImageURLs...)
	p.IsPublic = in.IsPublic
	p.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostService) UpdateVisibility(ctx context.Context, actorID, postID string, isPublic bool) (*entity.Post, error) {
	p, err := s.owned(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}
	if p.IsPublic == isPublic {
		return p, nil
	}
	p.IsPublic = isPublic
	p.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	if _, err := s.owned(ctx, actorID, postID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, postID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	return nil
}

// ListMine returns every post of actorID, public or not, newest first.
func (s *PostService) ListMine(ctx context.Context, actorID string) ([]*entity.Post, error) {
	return s.Repo.ListByUser(ctx, actorID)
}

// ListPublic returns public posts newest first. limit is clamped to 1..200.
func (s *PostService) ListPublic(ctx context.Context, limit int) ([]*entity.Post, error) {
	if limit <= 0 {
		limit = defaultPublicPosts
	}
	if limit > maxPublicPosts {
		limit = maxPublicPosts
	}
	return s.Repo.ListPublic(ctx, limit)
}

func (s *PostService) UploadImage(ctx context.Context, actorID string, r io.Reader, filename, contentType string, size int64) (string, error) {
	return uploadImage(ctx, s.Storage, "posts", actorID, r, filename, contentType, size, s.UploadMaxBytes)
}
