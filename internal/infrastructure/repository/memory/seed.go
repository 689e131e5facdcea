package memory

import (
	"time"

	"github.com/quantfoot/pipeline/internal/domain/fixture"
	"github.com/quantfoot/pipeline/internal/domain/player"
	"github.com/quantfoot/pipeline/internal/domain/team"
)

// Sample mart rows served by the API when no database is configured.
const (
	SeedTeamHarbour int64 = 2184
	SeedTeamValley  int64 = 6654
	SeedLeagueID    int64 = 1001
)

func SeedTeams() []team.Team {
	return []team.Team{
		{
			ID:      SeedTeamHarbour,
			Name:    "Harbour City",
			Code:    "HBC",
			Country: "England",
			Founded: intPtr(1899),
			Venue: &team.Venue{
				ID:       501,
				Name:     "Dockside Park",
				City:     "Harbour City",
				Capacity: intPtr(32000),
				Surface:  "grass",
			},
		},
		{
			ID:      SeedTeamValley,
			Name:    "Valley Rovers",
			Code:    "VAL",
			Country: "England",
			Founded: intPtr(1921),
			Venue: &team.Venue{
				ID:       502,
				Name:     "Riverside Ground",
				City:     "Valley Town",
				Capacity: intPtr(18500),
				Surface:  "grass",
			},
		},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: 90001, Name: "Sam Keeper", Age: intPtr(29), Position: player.PositionGoalkeeper, Number: intPtr(1), TeamID: SeedTeamHarbour, TeamName: "Harbour City"},
		{ID: 90002, Name: "Leo Back", Age: intPtr(24), Position: player.PositionDefender, Number: intPtr(4), TeamID: SeedTeamHarbour, TeamName: "Harbour City"},
		{ID: 90003, Name: "Max Pivot", Age: intPtr(27), Position: player.PositionMidfielder, Number: intPtr(8), TeamID: SeedTeamHarbour, TeamName: "Harbour City"},
		{ID: 90004, Name: "Nico Strike", Age: intPtr(22), Position: player.PositionAttacker, Number: intPtr(9), TeamID: SeedTeamHarbour, TeamName: "Harbour City"},
		{ID: 90101, Name: "Tom Gloves", Age: intPtr(31), Position: player.PositionGoalkeeper, Number: intPtr(1), TeamID: SeedTeamValley, TeamName: "Valley Rovers"},
		{ID: 90102, Name: "Ari Wing", Age: intPtr(20), Position: player.PositionAttacker, Number: intPtr(11), TeamID: SeedTeamValley, TeamName: "Valley Rovers"},
	}
}

// SeedFixtures returns one finished and one scheduled fixture around now.
func SeedFixtures(now time.Time) []fixture.Fixture {
	now = now.UTC().Truncate(time.Hour)
	played := now.Add(-72 * time.Hour)
	upcoming := now.Add(96 * time.Hour)
	league := fixture.League{ID: SeedLeagueID, Name: "Sample League", Type: "League", Country: "England", Round: "Regular Season - 1"}

	return []fixture.Fixture{
		{
			ID:             700001,
			Datetime:       played,
			Date:           dateOf(played),
			Season:         played.Year(),
			Status:         fixture.StatusFullTime,
			StatusLong:     "Match Finished",
			Elapsed:        intPtr(90),
			League:         league,
			Venue:          &fixture.Venue{ID: 501, Name: "Dockside Park", City: "Harbour City", Capacity: intPtr(32000)},
			HomeTeam:       fixture.Side{ID: SeedTeamHarbour, Name: "Harbour City", Code: "HBC", Winner: boolPtr(true)},
			AwayTeam:       fixture.Side{ID: SeedTeamValley, Name: "Valley Rovers", Code: "VAL", Winner: boolPtr(false)},
			Goals:          fixture.Score{Home: intPtr(2), Away: intPtr(1)},
			Halftime:       fixture.Score{Home: intPtr(1), Away: intPtr(0)},
			Fulltime:       fixture.Score{Home: intPtr(2), Away: intPtr(1)},
			Result:         fixture.ResultHome,
			GoalDifference: intPtr(1),
			TotalGoals:     intPtr(3),
			Referee:        "J. Whistle",
		},
		{
			ID:         700002,
			Datetime:   upcoming,
			Date:       dateOf(upcoming),
			Season:     upcoming.Year(),
			Status:     fixture.StatusNotStarted,
			StatusLong: "Not Started",
			League:     league,
			Venue:      &fixture.Venue{ID: 502, Name: "Riverside Ground", City: "Valley Town", Capacity: intPtr(18500)},
			HomeTeam:   fixture.Side{ID: SeedTeamValley, Name: "Valley Rovers", Code: "VAL"},
			AwayTeam:   fixture.Side{ID: SeedTeamHarbour, Name: "Harbour City", Code: "HBC"},
		},
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
