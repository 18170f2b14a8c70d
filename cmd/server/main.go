package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/remi/owc-fantasy/internal/api"
	"github.com/remi/owc-fantasy/internal/config"
	"github.com/remi/owc-fantasy/internal/osuapi"
	"github.com/remi/owc-fantasy/internal/pipeline"
	"github.com/remi/owc-fantasy/internal/repository"
	"github.com/remi/owc-fantasy/internal/repository/postgres"
	"github.com/remi/owc-fantasy/internal/service"
	"github.com/remi/owc-fantasy/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize osu! client and services
	osu := osuapi.NewClient(cfg.OsuClientID, cfg.OsuClientSecret, cfg.OsuAPITimeout)
	services := service.NewServices(repos, osu, cfg)

	// Optional in-process scheduled pipeline runs. The hub is the
	// notifier, so committed runs push scores_updated to clients.
	var scheduler gocron.Scheduler
	if cfg.PipelineCron != "" {
		scheduler, err = startScheduledPipeline(cfg, repos, hub)
		if err != nil {
			log.Fatalf("failed to start pipeline scheduler: %v", err)
		}
	}

	// Initialize router
	router := api.NewRouter(services, hub)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
	}
	hub.Stop()
	log.Println("Server stopped")
}

func startScheduledPipeline(cfg *config.Config, repos *repository.Repositories, hub *websocket.Hub) (gocron.Scheduler, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	osu := osuapi.NewClient(cfg.OsuAPIClientID, cfg.OsuAPIClientSecret, cfg.OsuAPITimeout,
		osuapi.WithLogger(logger))
	ingestor := pipeline.NewIngestor(osu, repos.Match, cfg.Tournament, cfg.IngestConcurrency, logger)
	pipe := pipeline.New(repos, ingestor, cfg.Tournament, cfg.MaxTeamSize, pipeline.CostConfig{
		MinCost:        cfg.MinCost,
		MaxCost:        cfg.MaxCost,
		Step:           cfg.CostStep,
		MaxWeeklyDelta: cfg.MaxWeeklyCostDelta,
	}, logger)
	pipe.SetNotifier(hub)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = scheduler.NewJob(
		gocron.CronJob(cfg.PipelineCron, false),
		gocron.NewTask(func() {
			ids, err := pipeline.ReadMatchIDs(cfg.PipelineMatchFile)
			if err != nil {
				logger.Error("read match file", "error", err)
				return
			}
			if _, err := pipe.Run(context.Background(), pipeline.RunOptions{
				Week:     cfg.PipelineWeek,
				MatchIDs: ids,
			}); err != nil {
				logger.Error("scheduled run failed", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	log.Printf("Pipeline scheduler started (cron %q, week %d)", cfg.PipelineCron, cfg.PipelineWeek)
	return scheduler, nil
}
