package service

import (
	"github.com/remi/owc-fantasy/internal/config"
	"github.com/remi/owc-fantasy/internal/osuapi"
	"github.com/remi/owc-fantasy/internal/repository"
)

type Services struct {
	Auth        *AuthService
	Player      *PlayerService
	Team        *TeamService
	Leaderboard *LeaderboardService
}

func NewServices(repos *repository.Repositories, osu *osuapi.Client, cfg *config.Config) *Services {
	return &Services{
		Auth:        NewAuthService(repos.User, repos.Session, osu, cfg),
		Player:      NewPlayerService(repos.Player, repos.Snapshot, cfg),
		Team:        NewTeamService(repos.Team, repos.Player, cfg),
		Leaderboard: NewLeaderboardService(repos.Score, cfg),
	}
}
