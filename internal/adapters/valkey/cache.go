package valkey

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/roadpulse/internal/pkg/metrics"
)

// Cache implements ports.CacheService using Valkey (Redis-compatible).
type Cache struct {
	client valkey.Client
}

// New creates a new Valkey cache client.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, eris.Wrap(err, "valkey: connect")
	}
	return &Cache{client: client}, nil
}

// Get retrieves a value by key. Hits and misses are counted under the key's
// first colon-separated component.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	op := cacheOperation(key)
	b, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			metrics.CacheMisses.WithLabelValues(op).Inc()
		}
		return nil, err
	}
	metrics.CacheHits.WithLabelValues(op).Inc()
	return b, nil
}

func cacheOperation(key string) string {
	op, _, _ := strings.Cut(key, ":")
	return op
}

// Set stores a value with a TTL in seconds.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	cmd := c.client.Do(ctx,
		c.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Ex(time.Duration(ttlSeconds)*time.Second).Build(),
	)
	return cmd.Error()
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error()
}

// Ping checks the server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// LimiterStorage returns a fiber.Storage backed by this client, with every key
// under prefix.
func (c *Cache) LimiterStorage(prefix string) *Storage {
	return &Storage{client: c.client, prefix: prefix, timeout: 2 * time.Second}
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}
