package postgres

import (
	"database/sql"

	"github.com/quantfoot/pipeline/internal/domain/player"
)

const playersMart = "marts.players"

var playerColumns = []string{
	"player_id", "player_name", "age", "position", "jersey_number", "photo_url", "team_id", "team_name",
}

type playerMartModel struct {
	PlayerID int64          `db:"player_id"`
	Name     sql.NullString `db:"player_name"`
	Age      sql.NullInt64  `db:"age"`
	Position sql.NullString `db:"position"`
	Number   sql.NullInt64  `db:"jersey_number"`
	Photo    sql.NullString `db:"photo_url"`
	TeamID   sql.NullInt64  `db:"team_id"`
	TeamName sql.NullString `db:"team_name"`
}

func (m playerMartModel) toDomain() player.Player {
	return player.Player{
		ID:       m.PlayerID,
		Name:     nullStringValue(m.Name),
		Age:      nullIntPtr(m.Age),
		Position: player.Position(nullStringValue(m.Position)),
		Number:   nullIntPtr(m.Number),
		Photo:    nullStringValue(m.Photo),
		TeamID:   m.TeamID.Int64,
		TeamName: nullStringValue(m.TeamName),
	}
}
