package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/roadpulse/internal/adapters/http"
	"github.com/samirrijal/roadpulse/internal/adapters/memory"
	natsadapter "github.com/samirrijal/roadpulse/internal/adapters/nats"
	"github.com/samirrijal/roadpulse/internal/adapters/postgres"
	"github.com/samirrijal/roadpulse/internal/adapters/scoring"
	temporaladapter "github.com/samirrijal/roadpulse/internal/adapters/temporal"
	"github.com/samirrijal/roadpulse/internal/adapters/valkey"
	"github.com/samirrijal/roadpulse/internal/core/ports"
	"github.com/samirrijal/roadpulse/internal/core/usecases"
	"github.com/samirrijal/roadpulse/internal/pkg/config"
	"github.com/samirrijal/roadpulse/internal/pkg/logging"
	"github.com/samirrijal/roadpulse/internal/pkg/metrics"
	"github.com/samirrijal/roadpulse/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("roadpulse-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	deps := &http.Dependencies{RateLimitPerIP: cfg.Server.RateLimitPerIP}

	// Road store
	var (
		roads  ports.RoadRepository
		cities ports.CityRepository
	)
	switch cfg.Storage.Backend {
	case "memory":
		store := memory.NewStore()
		roads, cities, deps.DB = store.Roads(), store.Cities(), store
		slog.Warn("using in-memory road store; data is lost on restart")
	default:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		roads, cities, deps.DB = postgres.NewRoadRepo(db), postgres.NewCityRepo(db), db
		go reportPoolStats(ctx, db)
	}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache, deps.Cache = vc, vc
			deps.LimiterStorage = vc.LimiterStorage("roadpulse:limiter:")
		}
	}

	// NATS
	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			deps.NATS = pub.Conn()
			deps.Feed = natsadapter.NewSubscriber(pub.Conn())
		}
	}

	// Temporal
	if cfg.Temporal.Enabled {
		tc, err := temporaladapter.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
		if err != nil {
			slog.Warn("temporal unavailable, async reports disabled", "error", err)
		} else {
			defer tc.Close()
			deps.Reports = temporaladapter.NewReportQueue(tc, cfg.Temporal.TaskQueue)
		}
	}

	scorer, err := newScorer(cfg.Scoring)
	if err != nil {
		log.Fatalf("scoring: %v", err)
	}

	// Use cases
	deps.Roads = usecases.NewRoadService(roads, scorer, publisher, usecases.MatchingOptions{
		BufferHalfWidthMeters: cfg.Matching.BufferHalfWidthMeters,
		RegionRadiusMeters:    cfg.Matching.RegionRadiusMeters,
		MaxCandidates:         cfg.Matching.MaxCandidates,
		NearestLimit:          cfg.Matching.NearestLimit,
		PublishTimeout:        cfg.NATS.PublishTimeout,
	})
	deps.Cities = usecases.NewCityService(cities, roads, cache)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      "RoadPulse API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", cfg.Storage.Backend, "scoring", cfg.Scoring.Provider)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
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

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s := db.Stat(); s != nil {
				metrics.UpdateDBPoolMetrics(s)
			}
		}
	}
}
