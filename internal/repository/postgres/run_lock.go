package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/remi/owc-fantasy/internal/domain"
	"gorm.io/gorm"
)

// advisoryRunLock serializes pipeline runs with a postgres session-level
// advisory lock. The lock is held on a dedicated connection so pool
// rotation cannot release it early.
type advisoryRunLock struct {
	db *gorm.DB
}

func NewAdvisoryRunLock(db *gorm.DB) *advisoryRunLock {
	return &advisoryRunLock{db: db}
}

func (l *advisoryRunLock) Acquire(ctx context.Context, tournament string, week int) (func(), error) {
	sqlDB, err := l.db.DB()
	if err != nil {
		return nil, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, err
	}

	key := lockKey(tournament, week)
	var locked bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&locked); err != nil {
		conn.Close()
		return nil, err
	}
	if !locked {
		conn.Close()
		return nil, fmt.Errorf("%w: %s week %d", domain.ErrWeekLocked, tournament, week)
	}

	release := func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", key)
		conn.Close()
	}
	return release, nil
}

func lockKey(tournament string, week int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", tournament, week)
	return int64(h.Sum64())
}
