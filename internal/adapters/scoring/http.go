package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// HTTPOptions configures the HTTP condition provider.
type HTTPOptions struct {
	URL           string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	// MaxAttempts is the total number of requests per report, counting the
	// first one.
	MaxAttempts int
}

// HTTP posts the report media to a model service and reads back a score.
type HTTP struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    HTTPOptions
}

type scoreResponse struct {
	Condition *float64 `json:"condition"`
}

// NewHTTP creates an HTTP provider.
func NewHTTP(opts HTTPOptions) *HTTP {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 2
	}
	return &HTTP{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		opts:    opts,
	}
}

// Score implements ports.ConditionProvider. Transport failures, non-2xx
// responses and a null condition are reported as domain.ErrScoringUnavailable.
func (h *HTTP) Score(ctx context.Context, report *domain.ConditionReport) (float64, error) {
	body, contentType, err := encodeReport(report)
	if err != nil {
		return 0, err
	}

	var lastErr error
	for attempt := range h.opts.MaxAttempts {
		if err := h.limiter.Wait(ctx); err != nil {
			return 0, eris.Wrap(err, "scoring: rate limiter wait")
		}

		condition, retry, err := h.post(ctx, body, contentType)
		if err == nil {
			return condition, nil
		}
		lastErr = err
		if !retry || attempt+1 == h.opts.MaxAttempts {
			break
		}
		slog.Warn("scoring request failed, retrying", "attempt", attempt+1, "error", err)
	}
	return 0, fmt.Errorf("%w: %w", domain.ErrScoringUnavailable, lastErr)
}

func (h *HTTP) post(ctx context.Context, body []byte, contentType string) (float64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.opts.URL, bytes.NewReader(body))
	if err != nil {
		return 0, false, eris.Wrap(err, "scoring: build request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, ctx.Err() == nil, eris.Wrap(err, "scoring: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, true, eris.Errorf("scoring: upstream status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, false, eris.Errorf("scoring: upstream status %d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return 0, false, eris.Wrap(err, "scoring: decode response")
	}
	if out.Condition == nil {
		return 0, false, eris.New("scoring: model returned no condition")
	}
	return *out.Condition, false, nil
}

func encodeReport(report *domain.ConditionReport) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"lat": strconv.FormatFloat(report.Location.Lat, 'f', -1, 64),
		"lng": strconv.FormatFloat(report.Location.Lon, 'f', -1, 64),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", eris.Wrap(err, "scoring: write field")
		}
	}

	name := report.Filename
	if name == "" {
		name = "upload"
	}
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		return nil, "", eris.Wrap(err, "scoring: create form file")
	}
	if _, err := part.Write(report.Media); err != nil {
		return nil, "", eris.Wrap(err, "scoring: write media")
	}
	if err := w.Close(); err != nil {
		return nil, "", eris.Wrap(err, "scoring: close multipart")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
