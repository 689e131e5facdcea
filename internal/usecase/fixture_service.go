package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quantfoot/pipeline/internal/domain/fixture"
	"github.com/quantfoot/pipeline/internal/platform/cache"
)

const (
	fixtureListLimit   = 100
	fixtureByTeamLimit = 50
)

type FixtureService struct {
	fixtureRepo fixture.Repository
	cache       *cache.Loader
	now         func() time.Time
}

// NewFixtureService builds the fixture read service; a nil loader disables caching.
func NewFixtureService(fixtureRepo fixture.Repository, loader *cache.Loader) *FixtureService {
	return &FixtureService{
		fixtureRepo: fixtureRepo,
		cache:       loader,
		now:         time.Now,
	}
}

func (s *FixtureService) List(ctx context.Context) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.List")
	defer span.End()

	return cache.GetOrLoad(ctx, s.cache, s.cache.Key("fixtures", "all"), func(ctx context.Context) ([]fixture.Fixture, error) {
		items, err := s.fixtureRepo.List(ctx, fixtureListLimit)
		if err != nil {
			return nil, fmt.Errorf("list fixtures: %w", err)
		}
		return items, nil
	})
}

func (s *FixtureService) GetByID(ctx context.Context, fixtureID int64) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.GetByID")
	defer span.End()

	if fixtureID <= 0 {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture id must be positive", ErrInvalidInput)
	}

	return cache.GetOrLoad(ctx, s.cache, s.cache.Key("fixtures", "id", strconv.FormatInt(fixtureID, 10)), func(ctx context.Context) (fixture.Fixture, error) {
		item, ok, err := s.fixtureRepo.GetByID(ctx, fixtureID)
		if err != nil {
			return fixture.Fixture{}, fmt.Errorf("get fixture: %w", err)
		}
		if !ok {
			return fixture.Fixture{}, fmt.Errorf("%w: fixture=%d", ErrNotFound, fixtureID)
		}
		return item, nil
	})
}

// ListByDate returns the fixtures played on a YYYY-MM-DD date, in kickoff order.
func (s *FixtureService) ListByDate(ctx context.Context, date string) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.ListByDate")
	defer span.End()

	day, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return s.listByDay(ctx, day)
}

// ListToday returns the fixtures of the current UTC date.
func (s *FixtureService) ListToday(ctx context.Context) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.ListToday")
	defer span.End()

	return s.listByDay(ctx, s.now().UTC())
}

func (s *FixtureService) listByDay(ctx context.Context, day time.Time) ([]fixture.Fixture, error) {
	key := s.cache.Key("fixtures", "date", day.UTC().Format(time.DateOnly))
	return cache.GetOrLoad(ctx, s.cache, key, func(ctx context.Context) ([]fixture.Fixture, error) {
		items, err := s.fixtureRepo.ListByDate(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("list fixtures by date: %w", err)
		}
		return items, nil
	})
}

func (s *FixtureService) ListByTeam(ctx context.Context, teamID int64) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.ListByTeam")
	defer span.End()

	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team id must be positive", ErrInvalidInput)
	}

	return cache.GetOrLoad(ctx, s.cache, s.cache.Key("fixtures", "team", strconv.FormatInt(teamID, 10)), func(ctx context.Context) ([]fixture.Fixture, error) {
		items, err := s.fixtureRepo.ListByTeam(ctx, teamID, fixtureByTeamLimit)
		if err != nil {
			return nil, fmt.Errorf("list fixtures by team: %w", err)
		}
		return items, nil
	})
}

func (s *FixtureService) ListLive(ctx context.Context) ([]fixture.Fixture, error) {
	return s.ListByStatusGroup(ctx, string(fixture.GroupLive))
}

// ListByStatusGroup serves the live, finished or scheduled fixtures.
func (s *FixtureService) ListByStatusGroup(ctx context.Context, group string) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.ListByStatusGroup")
	defer span.End()

	g := fixture.StatusGroup(strings.ToLower(strings.TrimSpace(group)))
	statuses := g.Statuses()
	if len(statuses) == 0 {
		return nil, fmt.Errorf("%w: unknown fixture status %q", ErrInvalidInput, group)
	}

	return cache.GetOrLoad(ctx, s.cache, s.cache.Key("fixtures", "status", string(g)), func(ctx context.Context) ([]fixture.Fixture, error) {
		items, err := s.fixtureRepo.ListByStatus(ctx, statuses)
		if err != nil {
			return nil, fmt.Errorf("list fixtures by status: %w", err)
		}
		return items, nil
	})
}
