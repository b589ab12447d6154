package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

// SkillRepository reads the skills catalog seeded by the initial migration.
type SkillRepository struct {
	pool *pgxpool.Pool
}

func NewSkillRepository(pool *pgxpool.Pool) *SkillRepository {
	return &SkillRepository{pool: pool}
}

func (r *SkillRepository) ListSports(ctx context.Context) ([]string, error) {
	return r.strings(ctx, `SELECT DISTINCT sport FROM skills ORDER BY sport`)
}

func (r *SkillRepository) ListSkillsBySport(ctx context.Context, sport string) ([]string, error) {
	return r.strings(ctx, `SELECT skill_name FROM skills WHERE lower(sport) = lower($1) ORDER BY skill_name`, sport)
}

func (r *SkillRepository) strings(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ repository.SkillRepository = (*SkillRepository)(nil)
