package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `id, user_id, content, image_urls, is_public, created_at, updated_at`

func scanPost(row pgx.Row) (*entity.Post, error) {
	var p entity.Post
	if err := row.Scan(&p.ID, &p.UserID, &p.Content, &p.ImageURLs, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	return &p, nil
}

func imageURLs(p *entity.Post) []string {
	if p.ImageURLs == nil {
		return []string{}
	}
	return p.ImageURLs
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.UserID, p.Content, imageURLs(p), p.IsPublic, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	p, err := scanPost(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE posts SET content = $2, image_urls = $3, is_public = $4, updated_at = $5
		WHERE id = $1
	`, p.ID, p.Content, imageURLs(p), p.IsPublic, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Post, error) {
	return r.list(ctx, `SELECT `+postColumns+` FROM posts WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
}

func (r *PostRepository) ListPublic(ctx context.Context, limit int) ([]*entity.Post, error) {
	return r.list(ctx, `SELECT `+postColumns+` FROM posts WHERE is_public ORDER BY created_at DESC, id LIMIT $1`, limit)
}

func (r *PostRepository) list(ctx context.Context, q string, args ...any) ([]*entity.Post, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*entity.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ repository.PostRepository = (*PostRepository)(nil)
