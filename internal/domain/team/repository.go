package team

import "context"

// Repository exposes team read operations over the teams mart.
type Repository interface {
	List(ctx context.Context, limit int) ([]Team, error)
	GetByID(ctx context.Context, teamID int64) (Team, bool, error)
	ListByCountry(ctx context.Context, country string) ([]Team, error)
	SearchByName(ctx context.Context, name string) ([]Team, error)
}
