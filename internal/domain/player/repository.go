package player

import "context"

// Repository exposes player read operations over the players mart.
type Repository interface {
	List(ctx context.Context, limit int) ([]Player, error)
	GetByID(ctx context.Context, playerID int64) (Player, bool, error)
	ListByTeam(ctx context.Context, teamID int64) ([]Player, error)
}
