package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quantfoot/pipeline/internal/domain/player"
	qb "github.com/quantfoot/pipeline/internal/platform/querybuilder"
)

// positionOrderExpr sorts squads from goalkeeper to attacker.
const positionOrderExpr = `CASE position
    WHEN 'Goalkeeper' THEN 0
    WHEN 'Defender' THEN 1
    WHEN 'Midfielder' THEN 2
    WHEN 'Attacker' THEN 3
    ELSE 4 END`

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) List(ctx context.Context, limit int) ([]player.Player, error) {
	return r.selectPlayers(ctx, "list players",
		qb.Select(playerColumns...).From(playersMart).OrderBy("player_name", "player_id").Limit(limit),
	)
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (player.Player, bool, error) {
	query, args, err := qb.Select(playerColumns...).From(playersMart).
		Where(qb.Eq("player_id", playerID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerMartModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player id=%d: %w", playerID, err)
	}
	return row.toDomain(), true, nil
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID int64) ([]player.Player, error) {
	return r.selectPlayers(ctx, "list players by team",
		qb.Select(playerColumns...).From(playersMart).
			Where(qb.Eq("team_id", teamID)).
			OrderBy(positionOrderExpr, "jersey_number NULLS LAST", "player_name"),
	)
}

func (r *PlayerRepository) selectPlayers(ctx context.Context, op string, builder *qb.SelectBuilder) ([]player.Player, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []playerMartModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
