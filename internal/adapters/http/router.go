package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/roadpulse/internal/pkg/metrics"
)

const (
	readTimeout   = 15 * time.Second
	reportTimeout = 60 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(TracingMiddleware())
	app.Use(AccessLogMiddleware())

	perIP := deps.RateLimitPerIP
	if perIP <= 0 {
		perIP = 120
	}
	app.Use(limiter.New(limiter.Config{
		Max:        perIP,
		Expiration: 1 * time.Minute,
		Storage:    deps.LimiterStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	app.Use(SecurityHeaders())
	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler())
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/roads/view", timeout.NewWithContext(RoadsInViewHandler(deps), readTimeout))
	v1.Get("/roads/view.geojson", timeout.NewWithContext(RoadsGeoJSONHandler(deps), readTimeout))
	v1.Get("/roads/view.kml", timeout.NewWithContext(RoadsKMLHandler(deps), readTimeout))
	v1.Get("/roads/nearest", timeout.NewWithContext(NearestRoadsHandler(deps), readTimeout))
	v1.Post("/roads/match", timeout.NewWithContext(MatchRoadsHandler(deps), readTimeout))
	v1.Post("/conditions", timeout.NewWithContext(ReportConditionHandler(deps), reportTimeout))
	v1.Post("/cities", timeout.NewWithContext(CreateCityHandler(deps), readTimeout))
	v1.Get("/cities/:id", timeout.NewWithContext(GetCityHandler(deps), readTimeout))
	v1.Post("/cities/:id/roads", timeout.NewWithContext(AddRoadHandler(deps), readTimeout))

	// Routes of the first map client
	legacy := app.Group("/api/v1/map", DeprecationMiddleware(legacyRoutes))
	legacy.Post("/get", timeout.NewWithContext(LegacyMapGetHandler(deps), readTimeout))
	legacy.Post("/setcity", timeout.NewWithContext(LegacySetCityHandler(deps), readTimeout))
	legacy.Post("/setroad/:id", timeout.NewWithContext(LegacySetRoadHandler(deps), readTimeout))
	legacy.Post("/setcondition", timeout.NewWithContext(LegacySetConditionHandler(deps), reportTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, DefaultSpecPath)

	if deps.Feed != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.Feed)))
	}
}
