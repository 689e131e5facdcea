package httpapi

import (
	"encoding/json"
	"time"

	"github.com/quantfoot/pipeline/internal/domain/fixture"
	"github.com/quantfoot/pipeline/internal/domain/pipelinerun"
	"github.com/quantfoot/pipeline/internal/domain/player"
	"github.com/quantfoot/pipeline/internal/domain/team"
)

type fixtureDTO struct {
	ID         int64          `json:"id"`
	Datetime   time.Time      `json:"datetime"`
	Date       string         `json:"date"`
	Season     int            `json:"season"`
	Status     string         `json:"status"`
	StatusLong string         `json:"statusLong"`
	Elapsed    *int           `json:"elapsed"`
	League     leagueDTO      `json:"league"`
	Venue      *venueDTO      `json:"venue"`
	HomeTeam   fixtureTeamDTO `json:"homeTeam"`
	AwayTeam   fixtureTeamDTO `json:"awayTeam"`
	Score      scoreDTO       `json:"score"`
	Result     string         `json:"result,omitempty"`
	Referee    string         `json:"referee,omitempty"`
	IsLive     bool           `json:"isLive"`
	IsFinished bool           `json:"isFinished"`
}

type leagueDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Country string `json:"country,omitempty"`
	Round   string `json:"round,omitempty"`
}

type venueDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Capacity *int   `json:"capacity"`
	Surface  string `json:"surface,omitempty"`
}

type fixtureTeamDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code,omitempty"`
	Winner *bool  `json:"winner"`
}

type goalsDTO struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type scoreDTO struct {
	Goals    goalsDTO `json:"goals"`
	Halftime goalsDTO `json:"halftime"`
	Fulltime goalsDTO `json:"fulltime"`
	Total    *int     `json:"total"`
	Diff     *int     `json:"diff"`
}

type teamDTO struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Code     string    `json:"code,omitempty"`
	Country  string    `json:"country"`
	Founded  *int      `json:"founded"`
	National bool      `json:"national"`
	Logo     string    `json:"logo,omitempty"`
	Venue    *venueDTO `json:"venue"`
}

type playerDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Age      *int   `json:"age"`
	Position string `json:"position"`
	Number   *int   `json:"number"`
	Photo    string `json:"photo,omitempty"`
	TeamID   int64  `json:"teamId"`
	TeamName string `json:"teamName"`
}

type pipelineRunDTO struct {
	RunID       string          `json:"run_id"`
	Trigger     string          `json:"trigger"`
	Status      string          `json:"status"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at"`
	RowsLoaded  map[string]int  `json:"rows_loaded"`
	MergeResult json.RawMessage `json:"merge_result,omitempty"`
	Error       string          `json:"error,omitempty"`
}

func fixtureToDTO(f fixture.Fixture) fixtureDTO {
	out := fixtureDTO{
		ID:         f.ID,
		Datetime:   f.Datetime,
		Date:       f.Date.Format(time.DateOnly),
		Season:     f.Season,
		Status:     f.Status,
		StatusLong: f.StatusLong,
		Elapsed:    f.Elapsed,
		League: leagueDTO{
			ID:      f.League.ID,
			Name:    f.League.Name,
			Type:    f.League.Type,
			Country: f.League.Country,
			Round:   f.League.Round,
		},
		HomeTeam: sideToDTO(f.HomeTeam),
		AwayTeam: sideToDTO(f.AwayTeam),
		Score: scoreDTO{
			Goals:    goalsDTO{Home: f.Goals.Home, Away: f.Goals.Away},
			Halftime: goalsDTO{Home: f.Halftime.Home, Away: f.Halftime.Away},
			Fulltime: goalsDTO{Home: f.Fulltime.Home, Away: f.Fulltime.Away},
			Total:    f.TotalGoals,
			Diff:     f.GoalDifference,
		},
		Result:     f.Result,
		Referee:    f.Referee,
		IsLive:     f.IsLive(),
		IsFinished: f.IsFinished(),
	}
	if f.Venue != nil {
		out.Venue = &venueDTO{
			ID:       f.Venue.ID,
			Name:     f.Venue.Name,
			City:     f.Venue.City,
			Capacity: f.Venue.Capacity,
		}
	}
	return out
}

func sideToDTO(s fixture.Side) fixtureTeamDTO {
	return fixtureTeamDTO{ID: s.ID, Name: s.Name, Code: s.Code, Winner: s.Winner}
}

func teamToDTO(t team.Team) teamDTO {
	out := teamDTO{
		ID:       t.ID,
		Name:     t.Name,
		Code:     t.Code,
		Country:  t.Country,
		Founded:  t.Founded,
		National: t.National,
		Logo:     t.Logo,
	}
	if t.Venue != nil {
		out.Venue = &venueDTO{
			ID:       t.Venue.ID,
			Name:     t.Venue.Name,
			Address:  t.Venue.Address,
			City:     t.Venue.City,
			Capacity: t.Venue.Capacity,
			Surface:  t.Venue.Surface,
		}
	}
	return out
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:       p.ID,
		Name:     p.Name,
		Age:      p.Age,
		Position: string(p.Position),
		Number:   p.Number,
		Photo:    p.Photo,
		TeamID:   p.TeamID,
		TeamName: p.TeamName,
	}
}

func pipelineRunToDTO(r pipelinerun.Run) pipelineRunDTO {
	rows := r.RowsLoaded
	if rows == nil {
		rows = map[string]int{}
	}
	return pipelineRunDTO{
		RunID:       r.RunID,
		Trigger:     string(r.Trigger),
		Status:      string(r.Status),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		RowsLoaded:  rows,
		MergeResult: json.RawMessage(r.MergeResult),
		Error:       r.Error,
	}
}
