package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/remi/owc-fantasy/internal/config"
	"github.com/remi/owc-fantasy/internal/osuapi"
	"github.com/remi/owc-fantasy/internal/pipeline"
	"github.com/remi/owc-fantasy/internal/repository"
	"github.com/remi/owc-fantasy/internal/repository/postgres"
	"github.com/urfave/cli/v2"
)

// app wires the scoring pipeline for CLI use.
type app struct {
	cfg    *config.Config
	repos  *repository.Repositories
	pipe   *pipeline.Pipeline
	logger *slog.Logger
}

func newApp(c *cli.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if t := c.String("tournament"); t != "" {
		cfg.Tournament = t
	}

	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	repos := postgres.NewRepositories(db)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	osu := osuapi.NewClient(cfg.OsuAPIClientID, cfg.OsuAPIClientSecret, cfg.OsuAPITimeout,
		osuapi.WithLogger(logger))
	ingestor := pipeline.NewIngestor(osu, repos.Match, cfg.Tournament, cfg.IngestConcurrency, logger)

	costCfg := pipeline.CostConfig{
		MinCost:        cfg.MinCost,
		MaxCost:        cfg.MaxCost,
		Step:           cfg.CostStep,
		MaxWeeklyDelta: cfg.MaxWeeklyCostDelta,
	}
	pipe := pipeline.New(repos, ingestor, cfg.Tournament, cfg.MaxTeamSize, costCfg, logger)

	return &app{cfg: cfg, repos: repos, pipe: pipe, logger: logger}, nil
}

func main() {
	cliApp := &cli.App{
		Name:  "pipeline",
		Usage: "weekly fantasy scoring pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tournament", Usage: "override the configured tournament"},
			&cli.BoolFlag{Name: "dry-run", Usage: "compute everything, persist nothing"},
		},
		Commands: []*cli.Command{
			recreateCommand(),
			ingestCommand(),
			weekCommand(),
			stageCommand("participation", "mark which players appeared this week",
				func(a *app, c *cli.Context) error {
					return a.pipe.MarkParticipation(c.Context, c.Int("week"), c.Bool("dry-run"))
				}),
			stageCommand("pscores", "recompute weekly performance indexes",
				func(a *app, c *cli.Context) error {
					return a.pipe.ComputePScores(c.Context, c.Int("week"), c.Bool("dry-run"))
				}),
			stageCommand("recost", "recalibrate player costs from p-scores",
				func(a *app, c *cli.Context) error {
					return a.pipe.RecalibrateCosts(c.Context, c.Int("week"), c.Bool("dry-run"))
				}),
			stageCommand("scores", "evaluate teams and commit weekly scores",
				func(a *app, c *cli.Context) error {
					n, err := a.pipe.UpdateScores(c.Context, c.Int("week"), false, c.Bool("dry-run"))
					if err != nil {
						return err
					}
					fmt.Printf("Scored %d users\n", n)
					return nil
				}),
			resetScoresCommand(),
			scheduleCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func weekFlag() cli.Flag {
	return &cli.IntFlag{Name: "week", Usage: "scoring week number", Required: true}
}

func stageCommand(name, usage string, action func(*app, *cli.Context) error) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{weekFlag(), &cli.BoolFlag{Name: "dry-run"}},
		Action: func(c *cli.Context) error {
			a, err := newApp(c)
			if err != nil {
				return err
			}
			return action(a, c)
		},
	}
}

func recreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "recreate",
		Usage: "wipe and reseed the tournament roster from a seed file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "seed-file", Usage: "JSON roster seed", Required: true},
			&cli.BoolFlag{Name: "dry-run"},
		},
		Action: func(c *cli.Context) error {
			a, err := newApp(c)
			if err != nil {
				return err
			}
			n, err := a.pipe.Recreate(c.Context, c.String("seed-file"), c.Bool("dry-run"))
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d players\n", n)
			return nil
		},
	}
}

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "fetch and store match results without scoring",
		Flags: []cli.Flag{
			weekFlag(),
			&cli.Int64SliceFlag{Name: "matches", Usage: "osu! match ids"},
			&cli.StringFlag{Name: "match-file", Usage: "file with one match id per line"},
			&cli.BoolFlag{Name: "dry-run"},
		},
		Action: func(c *cli.Context) error {
			a, err := newApp(c)
			if err != nil {
				return err
			}
			ids, err := matchIDs(c)
			if err != nil {
				return err
			}
			report, err := a.pipe.Ingestor().Ingest(c.Context, c.Int("week"), ids, c.Bool("dry-run"))
			if err != nil {
				return err
			}
			printIngestReport(report)
			return nil
		},
	}
}

func weekCommand() *cli.Command {
	return &cli.Command{
		Name:  "week",
		Usage: "run the full weekly pipeline",
		Flags: []cli.Flag{
			weekFlag(),
			&cli.Int64SliceFlag{Name: "matches", Usage: "osu! match ids"},
			&cli.StringFlag{Name: "match-file", Usage: "file with one match id per line"},
			&cli.BoolFlag{Name: "dry-run"},
		},
		Action: func(c *cli.Context) error {
			a, err := newApp(c)
			if err != nil {
				return err
			}
			ids, err := matchIDs(c)
			if err != nil {
				return err
			}
			report, err := a.pipe.Run(c.Context, pipeline.RunOptions{
				Week:     c.Int("week"),
				MatchIDs: ids,
				DryRun:   c.Bool("dry-run"),
			})
			if err != nil {
				return err
			}
			printIngestReport(report.Ingest)
			for _, rec := range report.Records {
				fmt.Printf("  user %d: team %+d, boosters %+d, total %d\n",
					rec.UserOsuID, rec.TeamDelta, rec.BoosterDelta, rec.Total)
			}
			fmt.Printf("Week %d: scored %d users in %s (incomplete=%v, dry-run=%v)\n",
				report.Week, report.UsersScored, report.Duration,
				report.Incomplete, c.Bool("dry-run"))
			return nil
		},
	}
}

func resetScoresCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset-scores",
		Usage: "zero every user's cached cumulative score",
		Action: func(c *cli.Context) error {
			a, err := newApp(c)
			if err != nil {
				return err
			}
			n, err := a.repos.User.ResetScores(c.Context)
			if err != nil {
				return err
			}
			fmt.Printf("Reset %d users\n", n)
			return nil
		},
	}
}

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "run the pipeline on a cron schedule",
		Flags: []cli.Flag{
			weekFlag(),
			&cli.StringFlag{Name: "cron", Value: "0 4 * * 1", Usage: "cron expression"},
			&cli.StringFlag{Name: "match-file", Usage: "file with one match id per line", Required: true},
		},
		Action: func(c *cli.Context) error {
			a, err := newApp(c)
			if err != nil {
				return err
			}

			scheduler, err := gocron.NewScheduler()
			if err != nil {
				return err
			}

			week := c.Int("week")
			matchFile := c.String("match-file")
			_, err = scheduler.NewJob(
				gocron.CronJob(c.String("cron"), false),
				gocron.NewTask(func() {
					ids, err := pipeline.ReadMatchIDs(matchFile)
					if err != nil {
						a.logger.Error("read match file", "error", err)
						return
					}
					if _, err := a.pipe.Run(context.Background(), pipeline.RunOptions{
						Week:     week,
						MatchIDs: ids,
					}); err != nil {
						a.logger.Error("scheduled run failed", "error", err)
					}
				}),
			)
			if err != nil {
				return err
			}

			scheduler.Start()
			a.logger.Info("scheduler started", "cron", c.String("cron"), "week", week)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			return scheduler.Shutdown()
		},
	}
}

func matchIDs(c *cli.Context) ([]int64, error) {
	ids := c.Int64Slice("matches")
	if file := c.String("match-file"); file != "" {
		fromFile, err := pipeline.ReadMatchIDs(file)
		if err != nil {
			return nil, err
		}
		ids = append(ids, fromFile...)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no match ids: pass --matches or --match-file")
	}
	return ids, nil
}

func printIngestReport(r *pipeline.IngestReport) {
	fmt.Printf("Ingested %d, skipped %d, failed %d\n",
		len(r.Ingested), len(r.Skipped), len(r.Failed))
	for id, err := range r.Failed {
		fmt.Printf("  match %d: %v\n", id, err)
	}
}
