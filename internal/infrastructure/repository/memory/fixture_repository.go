package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/quantfoot/pipeline/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	fixtures map[int64]fixture.Fixture
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	byID := make(map[int64]fixture.Fixture, len(fixtures))
	for _, item := range fixtures {
		byID[item.ID] = item
	}
	return &FixtureRepository{fixtures: byID}
}

func (r *FixtureRepository) List(_ context.Context, limit int) ([]fixture.Fixture, error) {
	out := r.filter(func(fixture.Fixture) bool { return true })
	slices.SortFunc(out, newestFirst)
	return truncate(out, limit), nil
}

func (r *FixtureRepository) GetByID(_ context.Context, fixtureID int64) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.fixtures[fixtureID]
	return item, ok, nil
}

func (r *FixtureRepository) ListByDate(_ context.Context, date time.Time) ([]fixture.Fixture, error) {
	day := date.UTC().Format(time.DateOnly)
	out := r.filter(func(f fixture.Fixture) bool {
		return f.Date.UTC().Format(time.DateOnly) == day
	})
	slices.SortFunc(out, kickoffOrder)
	return out, nil
}

func (r *FixtureRepository) ListByTeam(_ context.Context, teamID int64, limit int) ([]fixture.Fixture, error) {
	out := r.filter(func(f fixture.Fixture) bool {
		return f.HomeTeam.ID == teamID || f.AwayTeam.ID == teamID
	})
	slices.SortFunc(out, newestFirst)
	return truncate(out, limit), nil
}

func (r *FixtureRepository) ListByStatus(_ context.Context, statuses []string) ([]fixture.Fixture, error) {
	out := r.filter(func(f fixture.Fixture) bool {
		return slices.Contains(statuses, f.Status)
	})
	slices.SortFunc(out, kickoffOrder)
	return out, nil
}

func (r *FixtureRepository) filter(keep func(fixture.Fixture) bool) []fixture.Fixture {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(r.fixtures))
	for _, item := range r.fixtures {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func kickoffOrder(a, b fixture.Fixture) int {
	if c := a.Datetime.Compare(b.Datetime); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func newestFirst(a, b fixture.Fixture) int {
	return kickoffOrder(b, a)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
