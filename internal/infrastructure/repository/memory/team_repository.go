package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/quantfoot/pipeline/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[int64]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	byID := make(map[int64]team.Team, len(teams))
	for _, item := range teams {
		byID[item.ID] = item
	}
	return &TeamRepository{teams: byID}
}

func (r *TeamRepository) List(_ context.Context, limit int) ([]team.Team, error) {
	return truncate(r.filter(func(team.Team) bool { return true }), limit), nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	return item, ok, nil
}

func (r *TeamRepository) ListByCountry(_ context.Context, country string) ([]team.Team, error) {
	country = strings.TrimSpace(country)
	return r.filter(func(t team.Team) bool {
		return strings.EqualFold(t.Country, country)
	}), nil
}

func (r *TeamRepository) SearchByName(_ context.Context, name string) ([]team.Team, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	return r.filter(func(t team.Team) bool {
		return strings.Contains(strings.ToLower(t.Name), needle)
	}), nil
}

func (r *TeamRepository) filter(keep func(team.Team) bool) []team.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		if keep(item) {
			out = append(out, item)
		}
	}
	slices.SortFunc(out, func(a, b team.Team) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
