package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/core/ports"
	"github.com/samirrijal/roadpulse/internal/core/usecases"
)

// Pinger is a backend that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConditionFeed delivers condition updates for an area. An empty area selects
// every area.
type ConditionFeed interface {
	SubscribeConditions(area string, handler func(*domain.ConditionUpdated)) (func() error, error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Roads   *usecases.RoadService
	Cities  *usecases.CityService
	Reports ports.ReportQueue // nil disables async=true
	Feed    ConditionFeed     // nil disables /ws
	NATS    *nats.Conn
	DB      Pinger
	Cache   Pinger

	// LimiterStorage shares rate limit counters between instances. The
	// limiter keeps them in memory when nil.
	LimiterStorage fiber.Storage
	RateLimitPerIP int
}
