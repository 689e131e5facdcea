package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/quantfoot/pipeline/internal/domain/fixture"
	fixturemock "github.com/quantfoot/pipeline/internal/mocks/domain/fixture"
	"github.com/quantfoot/pipeline/internal/platform/cache"
)

func TestFixtureService_GetByID_UsesCacheUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixtureRepo := fixturemock.NewRepository(t)
	loader := cache.NewLoader(cache.NewMemoryStore(), time.Minute, "test")
	service := NewFixtureService(fixtureRepo, loader)

	expected := fixture.Fixture{
		ID:       868001,
		Datetime: time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC),
		Status:   fixture.StatusFullTime,
		HomeTeam: fixture.Side{ID: 2184, Name: "Harbour City"},
		AwayTeam: fixture.Side{ID: 6654, Name: "Valley Rovers"},
	}

	fixtureRepo.
		On("GetByID", mock.Anything, int64(868001)).
		Return(expected, true, nil).
		Once()

	for range 2 {
		got, err := service.GetByID(ctx, 868001)
		if err != nil {
			t.Fatalf("get fixture: %v", err)
		}
		if got.ID != expected.ID || got.HomeTeam.Name != "Harbour City" {
			t.Fatalf("unexpected fixture: %+v", got)
		}
		if !got.Datetime.Equal(expected.Datetime) {
			t.Fatalf("unexpected kickoff: got=%s want=%s", got.Datetime, expected.Datetime)
		}
	}
}

func TestFixtureService_GetByID_NotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixtureRepo := fixturemock.NewRepository(t)
	service := NewFixtureService(fixtureRepo, nil)

	fixtureRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v != nil }), int64(42)).
		Return(fixture.Fixture{}, false, nil).
		Once()

	_, err := service.GetByID(ctx, 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := service.GetByID(ctx, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFixtureService_ListByDate_ValidatesInputUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixtureRepo := fixturemock.NewRepository(t)
	service := NewFixtureService(fixtureRepo, nil)

	day := time.Date(2025, 8, 16, 0, 0, 0, 0, time.UTC)
	fixtureRepo.
		On("ListByDate", mock.Anything, day).
		Return([]fixture.Fixture{{ID: 1}, {ID: 2}}, nil).
		Once()

	got, err := service.ListByDate(ctx, "2025-08-16")
	if err != nil {
		t.Fatalf("list fixtures by date: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected fixture count: %d", len(got))
	}

	if _, err := service.ListByDate(ctx, "16/08/2025"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFixtureService_ListTodayUsesUTCDateUsingMockery(t *testing.T) {
	t.Parallel()

	fixtureRepo := fixturemock.NewRepository(t)
	service := NewFixtureService(fixtureRepo, nil)
	jakarta := time.FixedZone("WIB", 7*60*60)
	service.now = func() time.Time { return time.Date(2025, 8, 17, 3, 0, 0, 0, jakarta) }

	fixtureRepo.
		On("ListByDate", mock.Anything, mock.MatchedBy(func(d time.Time) bool {
			return d.Format(time.DateOnly) == "2025-08-16"
		})).
		Return([]fixture.Fixture{}, nil).
		Once()

	if _, err := service.ListToday(context.Background()); err != nil {
		t.Fatalf("list today: %v", err)
	}
}

func TestFixtureService_ListByTeamAndStatusUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixtureRepo := fixturemock.NewRepository(t)
	service := NewFixtureService(fixtureRepo, nil)

	fixtureRepo.
		On("ListByTeam", mock.Anything, int64(2184), 50).
		Return([]fixture.Fixture{{ID: 7}}, nil).
		Once()
	fixtureRepo.
		On("ListByStatus", mock.Anything, []string{"LIVE", "1H", "HT", "2H"}).
		Return([]fixture.Fixture{{ID: 8, Status: "1H"}}, nil).
		Once()
	fixtureRepo.
		On("List", mock.Anything, 100).
		Return(nil, errors.New("relation marts.fixtures does not exist")).
		Once()

	if got, err := service.ListByTeam(ctx, 2184); err != nil || len(got) != 1 {
		t.Fatalf("list by team: got=%v err=%v", got, err)
	}
	live, err := service.ListLive(ctx)
	if err != nil || len(live) != 1 || !live[0].IsLive() {
		t.Fatalf("list live: got=%v err=%v", live, err)
	}
	if _, err := service.ListByStatusGroup(ctx, "postponed"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.List(ctx); err == nil {
		t.Fatalf("expected repository error")
	}
}
