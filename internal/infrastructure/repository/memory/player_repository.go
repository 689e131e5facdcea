package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/quantfoot/pipeline/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[int64]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	byID := make(map[int64]player.Player, len(players))
	for _, item := range players {
		byID[item.ID] = item
	}
	return &PlayerRepository{players: byID}
}

func (r *PlayerRepository) List(_ context.Context, limit int) ([]player.Player, error) {
	out := r.filter(func(player.Player) bool { return true })
	slices.SortFunc(out, func(a, b player.Player) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return truncate(out, limit), nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID int64) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.players[playerID]
	return item, ok, nil
}

func (r *PlayerRepository) ListByTeam(_ context.Context, teamID int64) ([]player.Player, error) {
	out := r.filter(func(p player.Player) bool { return p.TeamID == teamID })
	slices.SortFunc(out, squadOrder)
	return out, nil
}

func (r *PlayerRepository) filter(keep func(player.Player) bool) []player.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, item := range r.players {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// squadOrder sorts by position, then shirt number with unnumbered players last.
func squadOrder(a, b player.Player) int {
	if c := cmp.Compare(a.Position.Rank(), b.Position.Rank()); c != 0 {
		return c
	}
	switch {
	case a.Number != nil && b.Number == nil:
		return -1
	case a.Number == nil && b.Number != nil:
		return 1
	case a.Number != nil && b.Number != nil && *a.Number != *b.Number:
		return cmp.Compare(*a.Number, *b.Number)
	}
	return cmp.Compare(a.Name, b.Name)
}
