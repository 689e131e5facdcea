package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quantfoot/pipeline/internal/domain/player"
	"github.com/quantfoot/pipeline/internal/domain/team"
	"github.com/quantfoot/pipeline/internal/infrastructure/repository/memory"
	playermock "github.com/quantfoot/pipeline/internal/mocks/domain/player"
	teammock "github.com/quantfoot/pipeline/internal/mocks/domain/team"
	"github.com/quantfoot/pipeline/internal/platform/cache"
)

func TestTeamService_WithSeedData(t *testing.T) {
	ctx := context.Background()
	svc := NewTeamService(
		memory.NewTeamRepository(memory.SeedTeams()),
		memory.NewPlayerRepository(memory.SeedPlayers()),
		cache.NewLoader(cache.NewMemoryStore(), time.Minute, "test"),
	)

	teams, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Harbour City", teams[0].Name)

	byCountry, err := svc.ListByCountry(ctx, "england")
	require.NoError(t, err)
	assert.Len(t, byCountry, 2)

	found, err := svc.SearchByName(ctx, "rov")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, memory.SeedTeamValley, found[0].ID)

	squad, err := svc.ListPlayers(ctx, memory.SeedTeamHarbour)
	require.NoError(t, err)
	require.Len(t, squad, 4)
	assert.Equal(t, player.PositionGoalkeeper, squad[0].Position)
	assert.Equal(t, player.PositionAttacker, squad[3].Position)
}

func TestTeamService_ValidationAndNotFound(t *testing.T) {
	ctx := context.Background()
	teamRepo := teammock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)
	svc := NewTeamService(teamRepo, playerRepo, nil)

	teamRepo.On("GetByID", mock.Anything, int64(99)).Return(team.Team{}, false, nil).Once()

	_, err := svc.ListPlayers(ctx, 99)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByID(ctx, -1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ListByCountry(ctx, "  ")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SearchByName(ctx, "a")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlayerService(t *testing.T) {
	ctx := context.Background()
	playerRepo := playermock.NewRepository(t)
	svc := NewPlayerService(playerRepo, nil)

	number := 9
	playerRepo.On("GetByID", mock.Anything, int64(90004)).
		Return(player.Player{ID: 90004, Name: "Nico Strike", Number: &number}, true, nil).Once()
	playerRepo.On("GetByID", mock.Anything, int64(1)).
		Return(player.Player{}, false, nil).Once()
	playerRepo.On("List", mock.Anything, 100).
		Return(nil, errors.New("connection refused")).Once()

	got, err := svc.GetByID(ctx, 90004)
	require.NoError(t, err)
	assert.Equal(t, "Nico Strike", got.Name)

	_, err = svc.GetByID(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.List(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list players")
}
