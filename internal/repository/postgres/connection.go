package postgres

import (
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.Player{},
		&domain.PlayerWeekSnapshot{},
		&domain.Match{},
		&domain.MatchMapRecord{},
		&domain.Team{},
		&domain.WeeklyScoreRecord{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:     NewUserRepository(db),
		Session:  NewSessionRepository(db),
		Player:   NewPlayerRepository(db),
		Match:    NewMatchRepository(db),
		Team:     NewTeamRepository(db),
		Snapshot: NewSnapshotRepository(db),
		Score:    NewScoreRepository(db),
		RunLock:  NewAdvisoryRunLock(db),
	}
}
