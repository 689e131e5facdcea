package player

import "strings"

// Position is the API-Football position label.
type Position string

const (
	PositionGoalkeeper Position = "Goalkeeper"
	PositionDefender   Position = "Defender"
	PositionMidfielder Position = "Midfielder"
	PositionAttacker   Position = "Attacker"
)

var positionOrder = map[Position]int{
	PositionGoalkeeper: 0,
	PositionDefender:   1,
	PositionMidfielder: 2,
	PositionAttacker:   3,
}

// Rank orders positions from goalkeeper to attacker; unknown labels sort last.
func (p Position) Rank() int {
	for known, rank := range positionOrder {
		if strings.EqualFold(string(known), strings.TrimSpace(string(p))) {
			return rank
		}
	}
	return len(positionOrder)
}

// Player is one row of the players mart.
type Player struct {
	ID       int64
	Name     string
	Age      *int
	Position Position
	Number   *int
	Photo    string
	TeamID   int64
	TeamName string
}
