package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, no_match, store_unavailable, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errFromDomain maps a use case error onto its HTTP status and code.
func errFromDomain(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	if status >= 500 {
		LoggerFromCtx(c.UserContext()).Error("request failed",
			"path", c.Path(), "code", code, "error", err)
	}
	return newError(c, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return 400, "bad_request"
	case errors.Is(err, domain.ErrNoCandidates):
		return 404, "no_candidates"
	case errors.Is(err, domain.ErrNoMatch):
		return 404, "no_match"
	case errors.Is(err, domain.ErrCityNotFound):
		return 404, "city_not_found"
	case errors.Is(err, domain.ErrRoadNotFound):
		return 404, "road_not_found"
	case errors.Is(err, domain.ErrScoringUnavailable):
		return 502, "scoring_unavailable"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return 503, "store_unavailable"
	default:
		return 500, "internal_error"
	}
}
