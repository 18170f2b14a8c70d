package domain

import (
	"errors"
	"fmt"
)

// Team validation errors; each names the specific violated constraint so
// the caller can surface it.
var (
	ErrRosterTooLarge   = errors.New("roster exceeds the maximum team size")
	ErrBudgetExceeded   = errors.New("budget cap exceeded")
	ErrDuplicatePlayer  = errors.New("duplicate player in roster")
	ErrUnknownPlayer    = errors.New("unknown player in roster")
	ErrUnknownBooster   = errors.New("unknown booster id")
	ErrBoosterReused    = errors.New("booster assigned to more than one player")
	ErrBoosterOffRoster = errors.New("booster assigned to a player not on the roster")
)

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrWeekLocked     = errors.New("another run holds the lock for this tournament week")
)

// IngestError marks a single match id that could not be ingested. The
// pipeline skips the match and continues; the run is flagged incomplete.
type IngestError struct {
	MatchID int64
	Err     error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest match %d: %v", e.MatchID, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// ComputationError marks malformed or missing statistics encountered while
// evaluating a single booster assignment. The evaluation resolves to
// NotApplicable instead of failing the run.
type ComputationError struct {
	PlayerID  int64
	BoosterID int
	Err       error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("booster %d for player %d: %v", e.BoosterID, e.PlayerID, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
