package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/repository/postgres"
	"github.com/remi/owc-fantasy/internal/service"
	"github.com/remi/owc-fantasy/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamService_SaveTeam(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	teamService := service.NewTeamService(repos.Team, repos.Player, cfg)
	ctx := context.Background()

	// Five players at 7000 each fit the 35000 budget exactly; a sixth
	// player and pricier variants drive the violation cases.
	seedRoster := func(t *testing.T) []int64 {
		var ids []int64
		for i := 0; i < 5; i++ {
			p := testutil.NewPlayerBuilder(int64(1000+i)).
				WithRank(i+1).
				WithCost(7000).
				Build(t, testDB.DB)
			ids = append(ids, p.ID)
		}
		expensive := testutil.NewPlayerBuilder(2000).
			WithRank(6).
			WithCost(8000).
			Build(t, testDB.DB)
		return append(ids, expensive.ID)
	}

	tests := []struct {
		name    string
		input   func(ids []int64) service.SaveTeamInput
		wantErr error
	}{
		{
			name: "valid full roster",
			input: func(ids []int64) service.SaveTeamInput {
				return service.SaveTeamInput{PlayerIDs: ids[:5]}
			},
		},
		{
			name: "partial roster allowed",
			input: func(ids []int64) service.SaveTeamInput {
				return service.SaveTeamInput{PlayerIDs: ids[:2]}
			},
		},
		{
			name: "budget exceeded",
			input: func(ids []int64) service.SaveTeamInput {
				// Four at 7000 plus one at 8000 = 36000 over 35000.
				return service.SaveTeamInput{PlayerIDs: append([]int64{}, ids[0], ids[1], ids[2], ids[3], ids[5])}
			},
			wantErr: domain.ErrBudgetExceeded,
		},
		{
			name: "roster too large",
			input: func(ids []int64) service.SaveTeamInput {
				return service.SaveTeamInput{PlayerIDs: ids[:6]}
			},
			wantErr: domain.ErrRosterTooLarge,
		},
		{
			name: "duplicate player",
			input: func(ids []int64) service.SaveTeamInput {
				return service.SaveTeamInput{PlayerIDs: []int64{ids[0], ids[0]}}
			},
			wantErr: domain.ErrDuplicatePlayer,
		},
		{
			name: "unknown player",
			input: func(ids []int64) service.SaveTeamInput {
				return service.SaveTeamInput{PlayerIDs: []int64{99999}}
			},
			wantErr: domain.ErrUnknownPlayer,
		},
		{
			name: "booster for off-roster player",
			input: func(ids []int64) service.SaveTeamInput {
				return service.SaveTeamInput{
					PlayerIDs: ids[:2],
					Boosters:  map[int64]int{ids[4]: 2},
				}
			},
			wantErr: domain.ErrBoosterOffRoster,
		},
		{
			name: "unknown booster id",
			input: func(ids []int64) service.SaveTeamInput {
				return service.SaveTeamInput{
					PlayerIDs: ids[:2],
					Boosters:  map[int64]int{ids[0]: 999},
				}
			},
			wantErr: domain.ErrUnknownBooster,
		},
		{
			name: "same booster bet twice",
			input: func(ids []int64) service.SaveTeamInput {
				return service.SaveTeamInput{
					PlayerIDs: ids[:2],
					Boosters:  map[int64]int{ids[0]: 2, ids[1]: 2},
				}
			},
			wantErr: domain.ErrBoosterReused,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)
			ids := seedRoster(t)
			testutil.CreateUser(t, testDB.DB, 7777)

			view, err := teamService.SaveTeam(ctx, 7777, tt.input(ids))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, view)
			assert.Equal(t, cfg.TotalBudget, view.Budget)
			assert.LessOrEqual(t, view.Spent, cfg.TotalBudget)
		})
	}
}

func TestTeamService_SaveOverwritesExistingTeam(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	teamService := service.NewTeamService(repos.Team, repos.Player, cfg)
	ctx := context.Background()

	p1 := testutil.NewPlayerBuilder(100).WithCost(5000).Build(t, testDB.DB)
	p2 := testutil.NewPlayerBuilder(200).WithCost(6000).Build(t, testDB.DB)
	testutil.CreateUser(t, testDB.DB, 7777)

	_, err := teamService.SaveTeam(ctx, 7777, service.SaveTeamInput{PlayerIDs: []int64{p1.ID}})
	require.NoError(t, err)

	_, err = teamService.SaveTeam(ctx, 7777, service.SaveTeamInput{
		PlayerIDs: []int64{p2.ID},
		Boosters:  map[int64]int{p2.ID: 4},
	})
	require.NoError(t, err)

	view, err := teamService.GetTeam(ctx, 7777)
	require.NoError(t, err)

	roster, err := view.Team.PlayerIDList()
	require.NoError(t, err)
	assert.Equal(t, []int64{p2.ID}, roster)
	assert.Equal(t, 6000, view.Spent)

	boosters, err := view.Team.BoosterMap()
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{p2.ID: 4}, boosters)
}

func TestTeamService_GetTeamNotFound(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	teamService := service.NewTeamService(repos.Team, repos.Player, testutil.TestConfig())

	_, err := teamService.GetTeam(context.Background(), 12345)
	assert.True(t, errors.Is(err, domain.ErrTeamNotFound))
}
