package fixture

import (
	"context"
	"time"
)

// Repository exposes fixture read operations over the fixtures mart.
type Repository interface {
	List(ctx context.Context, limit int) ([]Fixture, error)
	GetByID(ctx context.Context, fixtureID int64) (Fixture, bool, error)
	ListByDate(ctx context.Context, date time.Time) ([]Fixture, error)
	ListByTeam(ctx context.Context, teamID int64, limit int) ([]Fixture, error)
	ListByStatus(ctx context.Context, statuses []string) ([]Fixture, error)
}
