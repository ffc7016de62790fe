package ports

import (
	"context"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// ConditionProvider turns a report into a condition score.
type ConditionProvider interface {
	Score(ctx context.Context, report *domain.ConditionReport) (float64, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishConditionUpdated(ctx context.Context, event *domain.ConditionUpdated) error
}

// ReportQueue hands a report to asynchronous processing and returns a handle
// for it.
type ReportQueue interface {
	Enqueue(ctx context.Context, report *domain.ConditionReport) (string, error)
}

// CacheService provides key/value caching with a TTL.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
