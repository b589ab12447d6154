package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

// UserRepository stores users in the users table. Followers and following
// are text[] columns and skills a jsonb array.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, username, phone_no, address, education, photo_url,
	skills, followers, following, is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u         entity.User
		skills    []byte
		followers []string
		following []string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Username, &u.PhoneNo, &u.Address, &u.Education,
		&u.PhotoURL, &skills, &followers, &following, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &u.Skills); err != nil {
			return nil, fmt.Errorf("decode skills of user %s: %w", u.ID, err)
		}
	}
	u.Followers = entity.NewIDSet(followers...)
	u.Following = entity.NewIDSet(following...)
	u.Normalize()
	return &u, nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	// Inside a transaction the row stays locked until commit, which
	// serializes graph updates touching the same user.
	if _, ok := txFrom(ctx); ok {
		q += ` FOR UPDATE`
	}
	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `lower(email) = lower($1)`, email)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) FindAllByID(ctx context.Context, ids []string) ([]*entity.User, error) {
	if len(ids) == 0 {
		return []*entity.User{}, nil
	}
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id`, ids)
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
}

func (r *UserRepository) list(ctx context.Context, q string, args ...any) ([]*entity.User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Save upserts the whole record; the last writer wins.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	skills := u.Skills
	if skills == nil {
		skills = []entity.Skill{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return err
	}
	followers := u.Followers.Clone()
	followers.Remove(u.ID)
	following := u.Following.Clone()
	following.Remove(u.ID)

	_, err = conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (id, email, password_hash, username, phone_no, address, education, photo_url,
			skills, followers, following, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			username = EXCLUDED.username,
			phone_no = EXCLUDED.phone_no,
			address = EXCLUDED.address,
			education = EXCLUDED.education,
			photo_url = EXCLUDED.photo_url,
			skills = EXCLUDED.skills,
			followers = EXCLUDED.followers,
			following = EXCLUDED.following,
			is_verified = EXCLUDED.is_verified,
			updated_at = EXCLUDED.updated_at
	`, u.ID, u.Email, u.Password, u.Username, u.PhoneNo, u.Address, u.Education, u.PhotoURL,
		skillsJSON, followers.Slice(), following.Slice(), u.IsVerified, u.CreatedAt, u.UpdatedAt)
	return err
}

// WithinTx makes the repository a repository.Transactor.
func (r *UserRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withinTx(ctx, r.pool, fn)
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.Transactor     = (*UserRepository)(nil)
)
