package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/quantfoot/pipeline/internal/domain/player"
	"github.com/quantfoot/pipeline/internal/domain/team"
	"github.com/quantfoot/pipeline/internal/platform/cache"
)

const teamListLimit = 100

type TeamService struct {
	teamRepo   team.Repository
	playerRepo player.Repository
	cache      *cache.Loader
}

func NewTeamService(teamRepo team.Repository, playerRepo player.Repository, loader *cache.Loader) *TeamService {
	return &TeamService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		cache:      loader,
	}
}

func (s *TeamService) List(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.List")
	defer span.End()

	return cache.GetOrLoad(ctx, s.cache, s.cache.Key("teams", "all"), func(ctx context.Context) ([]team.Team, error) {
		items, err := s.teamRepo.List(ctx, teamListLimit)
		if err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		return items, nil
	})
}

func (s *TeamService) GetByID(ctx context.Context, teamID int64) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetByID")
	defer span.End()

	if teamID <= 0 {
		return team.Team{}, fmt.Errorf("%w: team id must be positive", ErrInvalidInput)
	}

	return cache.GetOrLoad(ctx, s.cache, s.cache.Key("teams", "id", strconv.FormatInt(teamID, 10)), func(ctx context.Context) (team.Team, error) {
		item, ok, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return team.Team{}, fmt.Errorf("get team: %w", err)
		}
		if !ok {
			return team.Team{}, fmt.Errorf("%w: team=%d", ErrNotFound, teamID)
		}
		return item, nil
	})
}

func (s *TeamService) ListByCountry(ctx context.Context, country string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListByCountry")
	defer span.End()

	country = strings.TrimSpace(country)
	if country == "" {
		return nil, fmt.Errorf("%w: country is required", ErrInvalidInput)
	}

	return cache.GetOrLoad(ctx, s.cache, s.cache.Key("teams", "country", strings.ToLower(country)), func(ctx context.Context) ([]team.Team, error) {
		items, err := s.teamRepo.ListByCountry(ctx, country)
		if err != nil {
			return nil, fmt.Errorf("list teams by country: %w", err)
		}
		return items, nil
	})
}

func (s *TeamService) SearchByName(ctx context.Context, name string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.SearchByName")
	defer span.End()

	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, fmt.Errorf("%w: name must have at least 2 characters", ErrInvalidInput)
	}

	items, err := s.teamRepo.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search teams by name: %w", err)
	}
	return items, nil
}

// ListPlayers returns the squad of an existing team.
func (s *TeamService) ListPlayers(ctx context.Context, teamID int64) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListPlayers")
	defer span.End()

	if _, err := s.GetByID(ctx, teamID); err != nil {
		return nil, err
	}

	return cache.GetOrLoad(ctx, s.cache, s.cache.Key("teams", "players", strconv.FormatInt(teamID, 10)), func(ctx context.Context) ([]player.Player, error) {
		items, err := s.playerRepo.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("list players by team: %w", err)
		}
		return items, nil
	})
}
