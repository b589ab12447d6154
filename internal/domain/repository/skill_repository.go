package repository

import "context"

// SkillRepository reads the sport/skill catalog used to fill profile skills.
type SkillRepository interface {
	ListSports(ctx context.Context) ([]string, error)
	ListSkillsBySport(ctx context.Context, sport string) ([]string, error)
}
