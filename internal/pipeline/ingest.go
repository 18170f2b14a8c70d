package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/osuapi"
	"github.com/remi/owc-fantasy/internal/repository"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// MatchSource is the external tournament data source; satisfied by
// *osuapi.Client.
type MatchSource interface {
	FetchMatch(ctx context.Context, matchID int64) (*osuapi.MatchResponse, error)
}

// IngestReport records what happened to every requested match id.
type IngestReport struct {
	Ingested []int64
	Skipped  []int64 // already known; re-ingestion is a no-op
	Failed   map[int64]error

	// Pending holds the normalized records of fetched matches that were
	// not persisted (dry run only). Downstream stages consume them in
	// place of the rows a real run would have committed.
	Pending []*domain.MatchMapRecord
}

// Incomplete reports whether downstream stages run on partial data.
func (r *IngestReport) Incomplete() bool { return len(r.Failed) > 0 }

// Ingestor fetches raw match results and normalizes them into map
// records. Match ids are fetched in parallel with bounded concurrency;
// one failing id never aborts the others.
type Ingestor struct {
	source      MatchSource
	matches     repository.MatchRepository
	tournament  string
	concurrency int
	maxRetries  uint64
	logger      *slog.Logger
}

func NewIngestor(source MatchSource, matches repository.MatchRepository, tournament string, concurrency int, logger *slog.Logger) *Ingestor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Ingestor{
		source:      source,
		matches:     matches,
		tournament:  tournament,
		concurrency: concurrency,
		maxRetries:  3,
		logger:      logger,
	}
}

// Ingest processes the given match ids for a week. Each id is committed
// all-or-nothing; ids that are already known are skipped. With dryRun the
// fetch and normalization still run but nothing is persisted.
func (in *Ingestor) Ingest(ctx context.Context, week int, matchIDs []int64, dryRun bool) (*IngestReport, error) {
	report := &IngestReport{Failed: make(map[int64]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.concurrency)

	for _, matchID := range matchIDs {
		g.Go(func() error {
			outcome, records, err := in.ingestOne(gctx, week, matchID, dryRun)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				ingErr := &domain.IngestError{MatchID: matchID, Err: err}
				in.logger.Error("match ingest failed", "match", matchID, "error", err)
				report.Failed[matchID] = ingErr
			case outcome == ingestSkipped:
				in.logger.Info("match already ingested", "match", matchID)
				report.Skipped = append(report.Skipped, matchID)
			default:
				report.Ingested = append(report.Ingested, matchID)
				if dryRun {
					report.Pending = append(report.Pending, records...)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

type ingestOutcome int

const (
	ingestCommitted ingestOutcome = iota
	ingestSkipped
)

func (in *Ingestor) ingestOne(ctx context.Context, week int, matchID int64, dryRun bool) (ingestOutcome, []*domain.MatchMapRecord, error) {
	known, err := in.matches.Exists(ctx, matchID)
	if err != nil {
		return 0, nil, err
	}
	if known {
		return ingestSkipped, nil, nil
	}

	var resp *osuapi.MatchResponse
	fetch := func() error {
		var ferr error
		resp, ferr = in.source.FetchMatch(ctx, matchID)
		return ferr
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newFetchBackoff(), in.maxRetries), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return 0, nil, err
	}

	match, records := in.normalize(resp, week)
	in.logger.Info("fetched match",
		"match", matchID, "name", match.Name,
		"maps", countMaps(records), "records", len(records))

	if dryRun {
		return ingestCommitted, records, nil
	}
	if err := in.matches.CreateWithRecords(ctx, match, records); err != nil {
		return 0, nil, err
	}
	return ingestCommitted, records, nil
}

func newFetchBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 30 * time.Second
	return b
}

// normalize flattens an API match into immutable map records. Map order
// within the match is preserved via MapIndex.
func (in *Ingestor) normalize(resp *osuapi.MatchResponse, week int) (*domain.Match, []*domain.MatchMapRecord) {
	match := &domain.Match{
		ID:         resp.Match.ID,
		Tournament: in.tournament,
		Week:       week,
		Name:       resp.Match.Name,
		IngestedAt: time.Now(),
	}

	var records []*domain.MatchMapRecord
	mapIndex := 0
	for _, event := range resp.Events {
		game := event.Game
		if game == nil || len(game.Scores) == 0 {
			continue
		}

		var beatmapID int64
		mapName := ""
		tiebreaker := false
		if game.Beatmap != nil {
			beatmapID = game.Beatmap.ID
			mapName = beatmapName(game.Beatmap)
			tiebreaker = isTiebreaker(game.Beatmap.Version)
		}

		for _, score := range game.Scores {
			if score.UserID == 0 {
				continue
			}
			mods, _ := json.Marshal(score.Mods)
			records = append(records, &domain.MatchMapRecord{
				MatchID:     match.ID,
				PlayerOsuID: score.UserID,
				MapIndex:    mapIndex,
				Tournament:  in.tournament,
				Week:        week,
				BeatmapID:   beatmapID,
				MapName:     mapName,
				Score:       score.Score,
				MaxCombo:    score.MaxCombo,
				Grade:       score.Rank,
				Mods:        datatypes.JSON(mods),
				TeamColor:   normalizeTeam(score.Match.Team),
				Tiebreaker:  tiebreaker,
			})
		}
		mapIndex++
	}
	return match, records
}

func countMaps(records []*domain.MatchMapRecord) int {
	seen := make(map[int]bool)
	for _, rec := range records {
		seen[rec.MapIndex] = true
	}
	return len(seen)
}

func beatmapName(b *osuapi.Beatmap) string {
	if b.Beatmapset != nil && b.Beatmapset.Artist != "" {
		return b.Beatmapset.Artist + " - " + b.Beatmapset.Title + " [" + b.Version + "]"
	}
	return "[" + b.Version + "]"
}

// isTiebreaker spots tiebreaker picks from the difficulty name, the
// convention tournament mappools follow ("TB" or an explicit label).
func isTiebreaker(version string) bool {
	lower := strings.ToLower(version)
	if strings.Contains(lower, "tiebreaker") {
		return true
	}
	for _, field := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == ':' || r == '|' || r == '[' || r == ']'
	}) {
		if field == "tb" || field == "tb1" {
			return true
		}
	}
	return false
}

func normalizeTeam(team string) string {
	if team == "none" {
		return ""
	}
	return team
}
