package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/quantfoot/pipeline/internal/domain/player"
	"github.com/quantfoot/pipeline/internal/platform/cache"
)

const playerListLimit = 100

type PlayerService struct {
	playerRepo player.Repository
	cache      *cache.Loader
}

func NewPlayerService(playerRepo player.Repository, loader *cache.Loader) *PlayerService {
	return &PlayerService{
		playerRepo: playerRepo,
		cache:      loader,
	}
}

func (s *PlayerService) List(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.List")
	defer span.End()

	return cache.GetOrLoad(ctx, s.cache, s.cache.Key("players", "all"), func(ctx context.Context) ([]player.Player, error) {
		items, err := s.playerRepo.List(ctx, playerListLimit)
		if err != nil {
			return nil, fmt.Errorf("list players: %w", err)
		}
		return items, nil
	})
}

func (s *PlayerService) GetByID(ctx context.Context, playerID int64) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GetByID")
	defer span.End()

	if playerID <= 0 {
		return player.Player{}, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}

	return cache.GetOrLoad(ctx, s.cache, s.cache.Key("players", "id", strconv.FormatInt(playerID, 10)), func(ctx context.Context) (player.Player, error) {
		item, ok, err := s.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			return player.Player{}, fmt.Errorf("get player: %w", err)
		}
		if !ok {
			return player.Player{}, fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
		}
		return item, nil
	})
}
