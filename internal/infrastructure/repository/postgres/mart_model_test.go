package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoot/pipeline/internal/domain/fixture"
)

func TestFixtureMartModel_ToDomain(t *testing.T) {
	kickoff := time.Date(2024, 8, 17, 14, 0, 0, 0, time.FixedZone("BST", 3600))
	m := fixtureMartModel{
		FixtureID:      1035037,
		Datetime:       sql.NullTime{Time: kickoff, Valid: true},
		Date:           sql.NullTime{Time: time.Date(2024, 8, 17, 0, 0, 0, 0, time.UTC), Valid: true},
		Season:         sql.NullInt64{Int64: 2024, Valid: true},
		Status:         sql.NullString{String: fixture.StatusFullTime, Valid: true},
		LeagueID:       sql.NullInt64{Int64: 39, Valid: true},
		LeagueName:     sql.NullString{String: "Premier League", Valid: true},
		HomeTeamID:     sql.NullInt64{Int64: 2184, Valid: true},
		HomeTeamWinner: sql.NullBool{Bool: true, Valid: true},
		AwayTeamID:     sql.NullInt64{Int64: 6654, Valid: true},
		GoalsHome:      sql.NullInt64{Int64: 2, Valid: true},
		GoalsAway:      sql.NullInt64{Int64: 0, Valid: true},
		Result:         sql.NullString{String: fixture.ResultHome, Valid: true},
		TotalGoals:     sql.NullInt64{Int64: 2, Valid: true},
	}

	got := m.toDomain()
	assert.Equal(t, int64(1035037), got.ID)
	assert.Equal(t, time.UTC, got.Datetime.Location())
	assert.True(t, got.Datetime.Equal(kickoff))
	assert.Equal(t, 2024, got.Season)
	assert.True(t, got.IsFinished())
	assert.Nil(t, got.Venue)
	assert.Nil(t, got.Elapsed)
	assert.Nil(t, got.AwayTeam.Winner)
	require.NotNil(t, got.HomeTeam.Winner)
	assert.True(t, *got.HomeTeam.Winner)
	require.NotNil(t, got.Goals.Away)
	assert.Equal(t, 0, *got.Goals.Away)
	assert.Nil(t, got.Halftime.Home)

	m.VenueID = sql.NullInt64{Int64: 556, Valid: true}
	m.VenueName = sql.NullString{String: "Old Trafford", Valid: true}
	got = m.toDomain()
	require.NotNil(t, got.Venue)
	assert.Equal(t, "Old Trafford", got.Venue.Name)
	assert.Nil(t, got.Venue.Capacity)
}

func TestTeamMartModel_ToDomain(t *testing.T) {
	got := teamMartModel{
		TeamID:  2184,
		Name:    sql.NullString{String: "Harbour City", Valid: true},
		Country: sql.NullString{String: "England", Valid: true},
	}.toDomain()

	assert.Equal(t, "Harbour City", got.Name)
	assert.False(t, got.National)
	assert.Nil(t, got.Founded)
	assert.Nil(t, got.Venue)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_ FC\\`, escapeLike(`100%_ FC\`))
}
