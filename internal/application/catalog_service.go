package application

import (
	"context"
	"strings"

	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
)

// CatalogService exposes the sport/skill catalog profiles pick skills from.
type CatalogService struct {
	Repo repo.SkillRepository
}

func NewCatalogService(skills repo.SkillRepository) *CatalogService {
	return &CatalogService{Repo: skills}
}

func (s *CatalogService) Sports(ctx context.Context) ([]string, error) {
	return s.Repo.ListSports(ctx)
}

func (s *CatalogService) SkillsBySport(ctx context.Context, sport string) ([]string, error) {
	return s.Repo.ListSkillsBySport(ctx, strings.TrimSpace(sport))
}
