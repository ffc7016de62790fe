package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	natsadapter "github.com/samirrijal/roadpulse/internal/adapters/nats"
	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to areas.
type wsMessage struct {
	Action string   `json:"action"` // "subscribe" | "unsubscribe"
	Area   string   `json:"area"`   // geohash area key, "" = all areas
	Lat    *float64 `json:"lat"`    // alternative to area
	Lon    *float64 `json:"lon"`
}

// area resolves the area key a message refers to.
func (m wsMessage) area() (string, error) {
	if m.Lat == nil || m.Lon == nil {
		return m.Area, nil
	}
	p := domain.GeoPoint{Lat: *m.Lat, Lon: *m.Lon}
	if err := p.Validate(); err != nil {
		return "", err
	}
	return natsadapter.AreaOf(p), nil
}

// WebSocketHandler relays condition updates to connected clients. A client
// starts subscribed to the area given by the "area" query parameter, or to
// every area, and then sends JSON such as
// {"action":"subscribe","lat":43.26,"lon":-2.93} or
// {"action":"unsubscribe","area":"ezb3k"}.
func WebSocketHandler(feed ConditionFeed) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		log := slog.Default().With("remote", c.RemoteAddr().String())
		log.Info("ws client connected")

		var mu sync.Mutex
		subs := make(map[string]func() error) // area -> cancel

		write := func(data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return write(data)
		}
		relay := func(e *domain.ConditionUpdated) {
			data, err := natsadapter.ConditionUpdatedJSON(e)
			if err != nil {
				log.Warn("ws encode update", "error", err)
				return
			}
			_ = write(data)
		}

		subscribe := func(area string) error {
			if _, exists := subs[area]; exists {
				return writeJSON(map[string]string{"status": "already subscribed", "area": area})
			}
			cancel, err := feed.SubscribeConditions(area, relay)
			if err != nil {
				return writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
			}
			subs[area] = cancel
			return writeJSON(map[string]string{"status": "subscribed", "area": area})
		}

		defer func() {
			for _, cancel := range subs {
				_ = cancel()
			}
			log.Info("ws client disconnected")
		}()

		if err := subscribe(c.Query("area")); err != nil {
			log.Warn("ws initial subscribe", "error", err)
			return
		}

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			area, err := m.area()
			if err != nil {
				_ = writeJSON(map[string]string{"error": err.Error()})
				continue
			}

			switch m.Action {
			case "subscribe":
				_ = subscribe(area)
			case "unsubscribe":
				cancel, exists := subs[area]
				if !exists {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + area})
					continue
				}
				_ = cancel()
				delete(subs, area)
				_ = writeJSON(map[string]string{"status": "unsubscribed", "area": area})
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}
	}
}
