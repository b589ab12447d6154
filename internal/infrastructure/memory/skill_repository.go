package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

// SkillRepository serves a fixed catalog.
type SkillRepository struct {
	catalog []entity.Skill
}

func NewSkillRepository(catalog []entity.Skill) *SkillRepository {
	return &SkillRepository{catalog: append([]entity.Skill(nil), catalog...)}
}

func (r *SkillRepository) ListSports(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range r.catalog {
		if !seen[s.Sport] {
			seen[s.Sport] = true
			out = append(out, s.Sport)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *SkillRepository) ListSkillsBySport(_ context.Context, sport string) ([]string, error) {
	out := []string{}
	for _, s := range r.catalog {
		if strings.EqualFold(s.Sport, sport) {
			out = append(out, s.SkillName)
		}
	}
	sort.Strings(out)
	return out, nil
}

var _ repository.SkillRepository = (*SkillRepository)(nil)
