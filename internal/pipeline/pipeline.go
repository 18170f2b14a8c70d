package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/repository"
)

// Notifier pushes a signal to connected clients after a week's results
// land. The websocket hub satisfies it; the CLI runs with a no-op.
type Notifier interface {
	ScoresUpdated(tournament string, week int)
}

type noopNotifier struct{}

func (noopNotifier) ScoresUpdated(string, int) {}

// Pipeline drives the weekly scoring run: ingest, participation,
// p-scores, cost recalibration and score aggregation, in that order.
// Every stage is idempotent for a given (tournament, week), so a crashed
// or partial run is repaired by running again.
type Pipeline struct {
	repos      *repository.Repositories
	ingestor   *Ingestor
	tournament string
	teamSize   int
	costCfg    CostConfig
	notifier   Notifier
	logger     *slog.Logger
}

func New(repos *repository.Repositories, ingestor *Ingestor, tournament string, teamSize int, costCfg CostConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		repos:      repos,
		ingestor:   ingestor,
		tournament: tournament,
		teamSize:   teamSize,
		costCfg:    costCfg,
		notifier:   noopNotifier{},
		logger:     logger,
	}
}

// SetNotifier installs a post-commit notification target.
func (p *Pipeline) SetNotifier(n Notifier) {
	if n != nil {
		p.notifier = n
	}
}

// Ingestor exposes the ingest stage for running it standalone.
func (p *Pipeline) Ingestor() *Ingestor {
	return p.ingestor
}

// RunOptions selects what a pipeline invocation does. MatchIDs may be
// empty when re-running stages over already-ingested data.
type RunOptions struct {
	Week     int
	MatchIDs []int64
	DryRun   bool
}

// RunReport summarizes a completed run. Records holds the computed weekly
// records whether or not they were committed, so a dry run's outcome can
// be inspected before running for real.
type RunReport struct {
	Week        int
	Ingest      *IngestReport
	Records     []*domain.WeeklyScoreRecord
	UsersScored int
	Incomplete  bool
	Duration    time.Duration
}

// Run executes the full weekly pipeline under the per-week run lock.
// Stage outputs flow forward in memory; the database is only written
// when DryRun is off, so a dry run computes exactly what a real run
// would commit. Ingest failures for individual matches degrade the run
// (results are flagged incomplete) but do not abort it; any other error
// stops the run before results are committed.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	release, err := p.repos.RunLock.Acquire(ctx, p.tournament, opts.Week)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	report := &RunReport{Week: opts.Week}

	report.Ingest, err = p.ingestor.Ingest(ctx, opts.Week, opts.MatchIDs, opts.DryRun)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	report.Incomplete = report.Ingest.Incomplete()

	players, records, err := p.loadWeek(ctx, opts.Week)
	if err != nil {
		return nil, err
	}
	// A dry run left the fetched matches uncommitted; splice their
	// records in so every later stage sees the same week a real run
	// would.
	if len(report.Ingest.Pending) > 0 {
		records = append(records, report.Ingest.Pending...)
		sortRecords(records)
	}

	playing := applyParticipation(players, records)
	p.logger.Info("participation marked", "week", opts.Week, "playing", playing, "roster", len(players))

	scored := applyPScores(players, records)
	p.logger.Info("p-scores computed", "week", opts.Week, "scored_players", scored)

	repriced := applyRecost(players, p.costCfg)
	p.logger.Info("costs recalibrated", "week", opts.Week, "repriced", repriced)

	if !opts.DryRun {
		if err := p.repos.Player.UpdateAll(ctx, players); err != nil {
			return nil, err
		}
		if err := p.writeSnapshots(ctx, opts.Week, players); err != nil {
			return nil, err
		}
	}

	report.Records, err = p.computeScores(ctx, opts.Week, players, records, report.Incomplete)
	if err != nil {
		return nil, fmt.Errorf("scores: %w", err)
	}
	report.UsersScored = len(report.Records)

	if !opts.DryRun && len(report.Records) > 0 {
		if err := p.repos.Score.CommitWeek(ctx, report.Records); err != nil {
			return nil, fmt.Errorf("scores: %w", err)
		}
		p.notifier.ScoresUpdated(p.tournament, opts.Week)
	}
	report.Duration = time.Since(start)

	p.logger.Info("pipeline run complete",
		"tournament", p.tournament, "week", opts.Week,
		"ingested", len(report.Ingest.Ingested),
		"skipped", len(report.Ingest.Skipped),
		"failed", len(report.Ingest.Failed),
		"users_scored", report.UsersScored,
		"incomplete", report.Incomplete,
		"duration", report.Duration,
		"dry_run", opts.DryRun)
	return report, nil
}

// applyParticipation flags which roster players appeared in the records
// and stores their match and map counts. Returns the playing count.
func applyParticipation(players []*domain.Player, records []*domain.MatchMapRecord) int {
	stats := MarkParticipation(players, records)
	playing := 0
	for _, pl := range players {
		s := stats[pl.OsuUserID]
		pl.Playing = s.Playing
		pl.MatchesPlayed = s.MatchesPlayed
		pl.MapsPlayed = s.MapsPlayed
		if s.Playing {
			playing++
		}
	}
	return playing
}

// applyPScores recomputes the weekly performance index for every player.
// Players without a single map are pinned to the baseline rather than
// left at their previous value. Returns the count of players with a
// computed score.
func applyPScores(players []*domain.Player, records []*domain.MatchMapRecord) int {
	byMatch := make(map[int64][]*domain.MatchMapRecord)
	for _, rec := range records {
		byMatch[rec.MatchID] = append(byMatch[rec.MatchID], rec)
	}
	pscores := WeeklyPScores(byMatch)

	for _, pl := range players {
		if score, ok := pscores[pl.OsuUserID]; ok {
			pl.PScore = score
		} else {
			pl.PScore = BaselinePScore
		}
	}
	return len(pscores)
}

// applyRecost reprices players from their p-scores. Players who did not
// play keep their price. Returns the count of changed costs.
func applyRecost(players []*domain.Player, cfg CostConfig) int {
	repriced := 0
	for _, pl := range players {
		if !pl.Playing {
			continue
		}
		next := RecalibrateCost(pl.Cost, pl.PScore, cfg)
		if next != pl.Cost {
			repriced++
		}
		pl.Cost = next
	}
	return repriced
}

func sortRecords(records []*domain.MatchMapRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].MatchID != records[j].MatchID {
			return records[i].MatchID < records[j].MatchID
		}
		return records[i].MapIndex < records[j].MapIndex
	})
}

// MarkParticipation runs the participation stage standalone over the
// week's committed records.
func (p *Pipeline) MarkParticipation(ctx context.Context, week int, dryRun bool) error {
	players, records, err := p.loadWeek(ctx, week)
	if err != nil {
		return err
	}

	playing := applyParticipation(players, records)
	p.logger.Info("participation marked", "week", week, "playing", playing, "roster", len(players))

	if dryRun {
		return nil
	}
	if err := p.repos.Player.UpdateAll(ctx, players); err != nil {
		return err
	}
	return p.writeSnapshots(ctx, week, players)
}

// ComputePScores runs the p-score stage standalone over the week's
// committed records.
func (p *Pipeline) ComputePScores(ctx context.Context, week int, dryRun bool) error {
	players, records, err := p.loadWeek(ctx, week)
	if err != nil {
		return err
	}

	scored := applyPScores(players, records)
	p.logger.Info("p-scores computed", "week", week, "scored_players", scored)

	if dryRun {
		return nil
	}
	if err := p.repos.Player.UpdateAll(ctx, players); err != nil {
		return err
	}
	return p.writeSnapshots(ctx, week, players)
}

// RecalibrateCosts runs the repricing stage standalone from the stored
// p-scores.
func (p *Pipeline) RecalibrateCosts(ctx context.Context, week int, dryRun bool) error {
	players, err := p.repos.Player.GetAll(ctx, p.tournament)
	if err != nil {
		return err
	}

	repriced := applyRecost(players, p.costCfg)
	p.logger.Info("costs recalibrated", "week", week, "repriced", repriced)

	if dryRun {
		return nil
	}
	if err := p.repos.Player.UpdateAll(ctx, players); err != nil {
		return err
	}
	return p.writeSnapshots(ctx, week, players)
}

// UpdateScores evaluates every complete fantasy team for the week from
// stored player state and commits one record per user in a single
// transaction. It returns the number of users scored.
func (p *Pipeline) UpdateScores(ctx context.Context, week int, incomplete, dryRun bool) (int, error) {
	players, records, err := p.loadWeek(ctx, week)
	if err != nil {
		return 0, err
	}

	committed, err := p.computeScores(ctx, week, players, records, incomplete)
	if err != nil {
		return 0, err
	}
	if dryRun || len(committed) == 0 {
		return len(committed), nil
	}
	if err := p.repos.Score.CommitWeek(ctx, committed); err != nil {
		return 0, err
	}
	p.notifier.ScoresUpdated(p.tournament, week)
	return len(committed), nil
}

func (p *Pipeline) loadWeek(ctx context.Context, week int) ([]*domain.Player, []*domain.MatchMapRecord, error) {
	players, err := p.repos.Player.GetAll(ctx, p.tournament)
	if err != nil {
		return nil, nil, err
	}
	records, err := p.repos.Match.RecordsByWeek(ctx, p.tournament, week)
	if err != nil {
		return nil, nil, err
	}
	return players, records, nil
}

// computeScores resolves every team's weekly record without persisting
// anything. Read-only repository access (teams, prior totals) is still
// allowed, so a dry run sees real cumulative history.
func (p *Pipeline) computeScores(ctx context.Context, week int, players []*domain.Player, records []*domain.MatchMapRecord, incomplete bool) ([]*domain.WeeklyScoreRecord, error) {
	teams, err := p.repos.Team.GetAll(ctx, p.tournament)
	if err != nil {
		return nil, err
	}

	playerByID := make(map[int64]*domain.Player, len(players))
	pscores := make(map[int64]float64, len(players))
	for _, pl := range players {
		playerByID[pl.ID] = pl
		pscores[pl.OsuUserID] = pl.PScore
	}
	wc := BuildWeekContext(records, pscores)

	var committed []*domain.WeeklyScoreRecord
	for _, team := range teams {
		rec, err := p.scoreTeam(ctx, team, playerByID, wc, week, incomplete)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			committed = append(committed, rec)
		}
	}
	return committed, nil
}

// scoreTeam resolves one user's weekly record, or nil for teams that are
// not eligible this week: rosters that are not fully drafted, or rosters
// referencing players no longer on the tournament roster (a recreate can
// orphan stored teams). Ineligible teams are skipped, never fatal.
func (p *Pipeline) scoreTeam(ctx context.Context, team *domain.Team, playerByID map[int64]*domain.Player, wc *WeekContext, week int, incomplete bool) (*domain.WeeklyScoreRecord, error) {
	roster, err := team.PlayerIDList()
	if err != nil {
		return nil, fmt.Errorf("team %s: decode roster: %w", team.ID, err)
	}
	if len(roster) != p.teamSize {
		p.logger.Warn("skipping incomplete roster", "user", team.UserOsuID, "size", len(roster))
		return nil, nil
	}

	var sum float64
	for _, id := range roster {
		pl, ok := playerByID[id]
		if !ok {
			p.logger.Warn("skipping team with unknown player",
				"user", team.UserOsuID, "player", id)
			return nil, nil
		}
		sum += pl.PScore
	}
	teamDelta := TeamDelta(sum / float64(len(roster)))

	boosters, err := team.BoosterMap()
	if err != nil {
		return nil, fmt.Errorf("team %s: decode boosters: %w", team.ID, err)
	}
	boosterDelta := 0
	for playerID, boosterID := range boosters {
		pl, ok := playerByID[playerID]
		if !ok {
			p.logger.Warn("skipping team with unknown booster target",
				"user", team.UserOsuID, "player", playerID)
			return nil, nil
		}
		verdict, err := EvaluateBooster(boosterID, pl.OsuUserID, wc)
		if err != nil {
			// Broken evaluation counts as not-applicable for that bet.
			var compErr *domain.ComputationError
			if !errors.As(err, &compErr) {
				return nil, err
			}
			p.logger.Warn("booster evaluation degraded",
				"user", team.UserOsuID, "player", pl.OsuUserID,
				"booster", boosterID, "error", err)
		}
		boosterDelta += verdict.Delta
	}

	prev, err := p.repos.Score.PreviousTotal(ctx, team.UserOsuID, p.tournament, week)
	if err != nil {
		return nil, err
	}

	return &domain.WeeklyScoreRecord{
		ID:               uuid.New(),
		UserOsuID:        team.UserOsuID,
		Tournament:       p.tournament,
		Week:             week,
		TeamDelta:        teamDelta,
		BoosterDelta:     boosterDelta,
		Total:            ApplyDelta(prev, teamDelta+boosterDelta),
		IncompleteIngest: incomplete,
		ComputedAt:       time.Now(),
	}, nil
}

func (p *Pipeline) writeSnapshots(ctx context.Context, week int, players []*domain.Player) error {
	snapshots := make([]*domain.PlayerWeekSnapshot, 0, len(players))
	for _, pl := range players {
		snapshots = append(snapshots, &domain.PlayerWeekSnapshot{
			Tournament: p.tournament,
			Week:       week,
			PlayerID:   pl.ID,
			Playing:    pl.Playing,
			PScore:     pl.PScore,
			Cost:       pl.Cost,
			Rank:       pl.Rank,
		})
	}
	return p.repos.Snapshot.UpsertAll(ctx, snapshots)
}

// SeedPlayer is one entry of the roster seed file consumed by Recreate.
type SeedPlayer struct {
	OsuUserID int64  `json:"osuUserId"`
	Username  string `json:"username"`
	Country   string `json:"country"`
	AvatarURL string `json:"avatarUrl"`
	Rank      int    `json:"rank"`
}

// Recreate wipes the tournament roster and reseeds it from a JSON file,
// pricing each player from their seed rank. Destructive: snapshots for
// the tournament are wiped with the roster.
func (p *Pipeline) Recreate(ctx context.Context, seedPath string, dryRun bool) (int, error) {
	data, err := os.ReadFile(seedPath)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var seeds []SeedPlayer
	if err := json.Unmarshal(data, &seeds); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}
	if len(seeds) == 0 {
		return 0, errors.New("seed file has no players")
	}

	sort.Slice(seeds, func(i, j int) bool { return seeds[i].Rank < seeds[j].Rank })

	players := make([]*domain.Player, 0, len(seeds))
	for _, s := range seeds {
		players = append(players, &domain.Player{
			OsuUserID:  s.OsuUserID,
			Tournament: p.tournament,
			Username:   s.Username,
			Country:    s.Country,
			AvatarURL:  s.AvatarURL,
			Rank:       s.Rank,
			Cost:       SeedCost(s.Rank, len(seeds), p.costCfg),
			PScore:     BaselinePScore,
		})
	}
	p.logger.Info("recreating roster", "tournament", p.tournament, "players", len(players), "dry_run", dryRun)

	if dryRun {
		return len(players), nil
	}
	if err := p.repos.Player.ReplaceAll(ctx, p.tournament, players); err != nil {
		return 0, err
	}
	return len(players), nil
}
