package fixture

import (
	"slices"
	"strings"
	"time"
)

// Short status codes as reported by API-Football.
const (
	StatusNotStarted   = "NS"
	StatusToBeDecided  = "TBD"
	StatusLive         = "LIVE"
	StatusFirstHalf    = "1H"
	StatusHalfTime     = "HT"
	StatusSecondHalf   = "2H"
	StatusFullTime     = "FT"
	StatusAfterExtra   = "AET"
	StatusAfterPenalty = "PEN"
)

const (
	ResultHome = "HOME"
	ResultAway = "AWAY"
	ResultDraw = "DRAW"
)

// StatusGroup names a set of short status codes served together.
type StatusGroup string

const (
	GroupLive      StatusGroup = "live"
	GroupFinished  StatusGroup = "finished"
	GroupScheduled StatusGroup = "scheduled"
)

var statusGroups = map[StatusGroup][]string{
	GroupLive:      {StatusLive, StatusFirstHalf, StatusHalfTime, StatusSecondHalf},
	GroupFinished:  {StatusFullTime, StatusAfterExtra, StatusAfterPenalty},
	GroupScheduled: {StatusToBeDecided, StatusNotStarted},
}

// Statuses returns the codes of a group, or nil for an unknown group.
func (g StatusGroup) Statuses() []string {
	return slices.Clone(statusGroups[StatusGroup(strings.ToLower(strings.TrimSpace(string(g))))])
}

// Fixture is one row of the fixtures mart.
type Fixture struct {
	ID             int64
	Datetime       time.Time
	Date           time.Time
	Season         int
	Status         string
	StatusLong     string
	Elapsed        *int
	League         League
	Venue          *Venue
	HomeTeam       Side
	AwayTeam       Side
	Goals          Score
	Halftime       Score
	Fulltime       Score
	Result         string
	GoalDifference *int
	TotalGoals     *int
	Referee        string
}

type League struct {
	ID      int64
	Name    string
	Type    string
	Country string
	Round   string
}

type Venue struct {
	ID       int64
	Name     string
	City     string
	Capacity *int
}

type Side struct {
	ID     int64
	Name   string
	Code   string
	Winner *bool
}

type Score struct {
	Home *int
	Away *int
}

func NormalizeStatus(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func IsLiveStatus(status string) bool {
	return slices.Contains(statusGroups[GroupLive], NormalizeStatus(status))
}

func IsFinishedStatus(status string) bool {
	return slices.Contains(statusGroups[GroupFinished], NormalizeStatus(status))
}

func (f Fixture) IsLive() bool {
	return IsLiveStatus(f.Status)
}

func (f Fixture) IsFinished() bool {
	return IsFinishedStatus(f.Status)
}
