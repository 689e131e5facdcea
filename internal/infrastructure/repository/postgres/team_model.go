package postgres

import (
	"database/sql"

	"github.com/quantfoot/pipeline/internal/domain/team"
)

const teamsMart = "marts.teams"

var teamColumns = []string{
	"team_id", "team_name", "team_code", "team_country", "team_founded", "is_national_team", "team_logo",
	"venue_id", "venue_name", "venue_address", "venue_city", "venue_capacity", "venue_surface",
}

type teamMartModel struct {
	TeamID        int64          `db:"team_id"`
	Name          sql.NullString `db:"team_name"`
	Code          sql.NullString `db:"team_code"`
	Country       sql.NullString `db:"team_country"`
	Founded       sql.NullInt64  `db:"team_founded"`
	National      sql.NullBool   `db:"is_national_team"`
	Logo          sql.NullString `db:"team_logo"`
	VenueID       sql.NullInt64  `db:"venue_id"`
	VenueName     sql.NullString `db:"venue_name"`
	VenueAddress  sql.NullString `db:"venue_address"`
	VenueCity     sql.NullString `db:"venue_city"`
	VenueCapacity sql.NullInt64  `db:"venue_capacity"`
	VenueSurface  sql.NullString `db:"venue_surface"`
}

func (m teamMartModel) toDomain() team.Team {
	out := team.Team{
		ID:       m.TeamID,
		Name:     nullStringValue(m.Name),
		Code:     nullStringValue(m.Code),
		Country:  nullStringValue(m.Country),
		Founded:  nullIntPtr(m.Founded),
		National: m.National.Valid && m.National.Bool,
		Logo:     nullStringValue(m.Logo),
	}
	if m.VenueID.Valid {
		out.Venue = &team.Venue{
			ID:       m.VenueID.Int64,
			Name:     nullStringValue(m.VenueName),
			Address:  nullStringValue(m.VenueAddress),
			City:     nullStringValue(m.VenueCity),
			Capacity: nullIntPtr(m.VenueCapacity),
			Surface:  nullStringValue(m.VenueSurface),
		}
	}
	return out
}
