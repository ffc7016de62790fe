package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/roadpulse/internal/adapters/nats"
	"github.com/samirrijal/roadpulse/internal/adapters/postgres"
	"github.com/samirrijal/roadpulse/internal/adapters/scoring"
	temporaladapter "github.com/samirrijal/roadpulse/internal/adapters/temporal"
	"github.com/samirrijal/roadpulse/internal/core/ports"
	"github.com/samirrijal/roadpulse/internal/core/usecases"
	"github.com/samirrijal/roadpulse/internal/pkg/config"
	"github.com/samirrijal/roadpulse/internal/pkg/logging"
	"github.com/samirrijal/roadpulse/internal/pkg/telemetry"
	"github.com/samirrijal/roadpulse/internal/workflows"
)

// The scorer runs the condition report workflow for reports the API queued
// with async=true. It needs the postgres store: an in-memory store would not
// be shared with the API.
func main() {
	cfg, err := config.Load("roadpulse-scorer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Storage.Backend != "postgres" {
		log.Fatalf("scorer requires storage.backend=postgres, got %q", cfg.Storage.Backend)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, updates will not be announced", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	scorer, err := newScorer(cfg.Scoring)
	if err != nil {
		log.Fatalf("scoring: %v", err)
	}

	roads := usecases.NewRoadService(postgres.NewRoadRepo(db), scorer, publisher, usecases.MatchingOptions{
		BufferHalfWidthMeters: cfg.Matching.BufferHalfWidthMeters,
		RegionRadiusMeters:    cfg.Matching.RegionRadiusMeters,
		MaxCandidates:         cfg.Matching.MaxCandidates,
		NearestLimit:          cfg.Matching.NearestLimit,
		PublishTimeout:        cfg.NATS.PublishTimeout,
	})

	c, err := temporaladapter.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	taskQueue := cfg.Temporal.TaskQueue
	if taskQueue == "" {
		taskQueue = workflows.TaskQueue
	}
	w := worker.New(c, taskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.ConditionReportWorkflow)
	w.RegisterActivity(&workflows.ConditionActivities{Roads: roads})

	slog.Info("scorer worker started", "task_queue", taskQueue, "scoring", cfg.Scoring.Provider)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func newScorer(cfg config.ScoringConfig) (ports.ConditionProvider, error) {
	switch cfg.Provider {
	case "static":
		return scoring.NewStatic(cfg.StaticCondition), nil
	case "http":
		return scoring.NewHTTP(scoring.HTTPOptions{
			URL:           cfg.URL,
			Timeout:       cfg.Timeout,
			RatePerSecond: cfg.RatePerSecond,
			Burst:         cfg.Burst,
			MaxAttempts:   cfg.MaxAttempts,
		}), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}
