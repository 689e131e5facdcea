package postgres

import (
	"database/sql"
	"time"

	"github.com/quantfoot/pipeline/internal/domain/fixture"
)

const fixturesMart = "marts.fixtures"

var fixtureColumns = []string{
	"fixture_id", "fixture_datetime", "fixture_date", "season", "status", "status_long", "minutes_elapsed",
	"league_id", "league_name", "league_type", "league_country", "league_round",
	"venue_id", "venue_name", "venue_city", "venue_capacity",
	"home_team_id", "home_team_name", "home_team_code", "home_team_winner",
	"away_team_id", "away_team_name", "away_team_code", "away_team_winner",
	"goals_home", "goals_away", "halftime_home", "halftime_away", "fulltime_home", "fulltime_away",
	"result", "goal_difference", "total_goals", "referee",
}

type fixtureMartModel struct {
	FixtureID      int64          `db:"fixture_id"`
	Datetime       sql.NullTime   `db:"fixture_datetime"`
	Date           sql.NullTime   `db:"fixture_date"`
	Season         sql.NullInt64  `db:"season"`
	Status         sql.NullString `db:"status"`
	StatusLong     sql.NullString `db:"status_long"`
	Elapsed        sql.NullInt64  `db:"minutes_elapsed"`
	LeagueID       sql.NullInt64  `db:"league_id"`
	LeagueName     sql.NullString `db:"league_name"`
	LeagueType     sql.NullString `db:"league_type"`
	LeagueCountry  sql.NullString `db:"league_country"`
	LeagueRound    sql.NullString `db:"league_round"`
	VenueID        sql.NullInt64  `db:"venue_id"`
	VenueName      sql.NullString `db:"venue_name"`
	VenueCity      sql.NullString `db:"venue_city"`
	VenueCapacity  sql.NullInt64  `db:"venue_capacity"`
	HomeTeamID     sql.NullInt64  `db:"home_team_id"`
	HomeTeamName   sql.NullString `db:"home_team_name"`
	HomeTeamCode   sql.NullString `db:"home_team_code"`
	HomeTeamWinner sql.NullBool   `db:"home_team_winner"`
	AwayTeamID     sql.NullInt64  `db:"away_team_id"`
	AwayTeamName   sql.NullString `db:"away_team_name"`
	AwayTeamCode   sql.NullString `db:"away_team_code"`
	AwayTeamWinner sql.NullBool   `db:"away_team_winner"`
	GoalsHome      sql.NullInt64  `db:"goals_home"`
	GoalsAway      sql.NullInt64  `db:"goals_away"`
	HalftimeHome   sql.NullInt64  `db:"halftime_home"`
	HalftimeAway   sql.NullInt64  `db:"halftime_away"`
	FulltimeHome   sql.NullInt64  `db:"fulltime_home"`
	FulltimeAway   sql.NullInt64  `db:"fulltime_away"`
	Result         sql.NullString `db:"result"`
	GoalDifference sql.NullInt64  `db:"goal_difference"`
	TotalGoals     sql.NullInt64  `db:"total_goals"`
	Referee        sql.NullString `db:"referee"`
}

func (m fixtureMartModel) toDomain() fixture.Fixture {
	out := fixture.Fixture{
		ID:         m.FixtureID,
		Datetime:   nullTimeValue(m.Datetime),
		Date:       nullTimeValue(m.Date),
		Season:     int(m.Season.Int64),
		Status:     nullStringValue(m.Status),
		StatusLong: nullStringValue(m.StatusLong),
		Elapsed:    nullIntPtr(m.Elapsed),
		League: fixture.League{
			ID:      m.LeagueID.Int64,
			Name:    nullStringValue(m.LeagueName),
			Type:    nullStringValue(m.LeagueType),
			Country: nullStringValue(m.LeagueCountry),
			Round:   nullStringValue(m.LeagueRound),
		},
		HomeTeam: fixture.Side{
			ID:     m.HomeTeamID.Int64,
			Name:   nullStringValue(m.HomeTeamName),
			Code:   nullStringValue(m.HomeTeamCode),
			Winner: nullBoolPtr(m.HomeTeamWinner),
		},
		AwayTeam: fixture.Side{
			ID:     m.AwayTeamID.Int64,
			Name:   nullStringValue(m.AwayTeamName),
			Code:   nullStringValue(m.AwayTeamCode),
			Winner: nullBoolPtr(m.AwayTeamWinner),
		},
		Goals:          fixture.Score{Home: nullIntPtr(m.GoalsHome), Away: nullIntPtr(m.GoalsAway)},
		Halftime:       fixture.Score{Home: nullIntPtr(m.HalftimeHome), Away: nullIntPtr(m.HalftimeAway)},
		Fulltime:       fixture.Score{Home: nullIntPtr(m.FulltimeHome), Away: nullIntPtr(m.FulltimeAway)},
		Result:         nullStringValue(m.Result),
		GoalDifference: nullIntPtr(m.GoalDifference),
		TotalGoals:     nullIntPtr(m.TotalGoals),
		Referee:        nullStringValue(m.Referee),
	}
	if m.VenueID.Valid {
		out.Venue = &fixture.Venue{
			ID:       m.VenueID.Int64,
			Name:     nullStringValue(m.VenueName),
			City:     nullStringValue(m.VenueCity),
			Capacity: nullIntPtr(m.VenueCapacity),
		}
	}
	return out
}

func nullTimeValue(v sql.NullTime) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return v.Time.UTC()
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}

func nullBoolPtr(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	out := v.Bool
	return &out
}
