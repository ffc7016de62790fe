package http

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/pkg/geospatial"
	"github.com/samirrijal/roadpulse/internal/pkg/metrics"
)

// pointRequest is the JSON body of endpoints that take a single location.
type pointRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (r pointRequest) point() (domain.GeoPoint, error) {
	if r.Lat == nil || r.Lon == nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: lat and lon are required", domain.ErrInvalidInput)
	}
	p := domain.GeoPoint{Lat: *r.Lat, Lon: *r.Lon}
	return p, p.Validate()
}

// parsePoint reads a location from two raw string values.
func parsePoint(latStr, lonStr string) (domain.GeoPoint, error) {
	if latStr == "" || lonStr == "" {
		return domain.GeoPoint{}, fmt.Errorf("%w: lat and lon are required", domain.ErrInvalidInput)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: lat must be a number", domain.ErrInvalidInput)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: lon must be a number", domain.ErrInvalidInput)
	}
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	return p, p.Validate()
}

func queryPoint(c *fiber.Ctx) (domain.GeoPoint, error) {
	return parsePoint(c.Query("lat"), c.Query("lon"))
}

// RoadsInViewHandler returns every road of the cities around a location.
func RoadsInViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryPoint(c)
		if err != nil {
			return errFromDomain(c, err)
		}

		roads, err := deps.Roads.RoadsInView(c.UserContext(), p)
		metrics.ObserveOutcome("view", err)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(roads)
	}
}

// NearestRoadsHandler ranks the roads around a location by distance.
func NearestRoadsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryPoint(c)
		if err != nil {
			return errFromDomain(c, err)
		}
		limit := c.QueryInt("limit", 0)
		if limit < 0 {
			return errBadRequest(c, "limit must not be negative")
		}

		roads, err := deps.Roads.NearestRoads(c.UserContext(), p, limit)
		metrics.ObserveOutcome("nearest", err)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(roads)
	}
}

type matchResponse struct {
	MatchedCount int      `json:"matched_count"`
	MatchedIDs   []string `json:"matched_ids"`
}

// MatchRoadsHandler reports which roads contain a location without writing
// anything.
func MatchRoadsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pointRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		p, err := req.point()
		if err != nil {
			return errFromDomain(c, err)
		}

		ids, err := deps.Roads.MatchRoads(c.UserContext(), p)
		metrics.ObserveOutcome("match", err)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(matchResponse{MatchedCount: len(ids), MatchedIDs: ids})
	}
}

type queuedResponse struct {
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
}

// ReportConditionHandler accepts a multipart upload with lat, lon and an
// image, scores it and writes the score to every road the location is on.
// With async=true the report is queued and 202 is returned.
func ReportConditionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePoint(c.FormValue("lat"), c.FormValue("lon"))
		if err != nil {
			return errFromDomain(c, err)
		}
		report, err := readReport(c, "image", p)
		if err != nil {
			return errFromDomain(c, err)
		}

		if c.Query("async") == "true" || c.FormValue("async") == "true" {
			return queueReport(c, deps, report)
		}

		result, err := deps.Roads.ReportCondition(c.UserContext(), report)
		observeReport(result, err)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(result)
	}
}

func queueReport(c *fiber.Ctx, deps *Dependencies, report *domain.ConditionReport) error {
	if deps.Reports == nil {
		return newError(c, 503, "queue_unavailable", "asynchronous processing is not enabled")
	}
	id, err := deps.Reports.Enqueue(c.UserContext(), report)
	if err != nil {
		LoggerFromCtx(c.UserContext()).Error("enqueue report", "report_id", report.ID, "error", err)
		return newError(c, 503, "queue_unavailable", err.Error())
	}
	metrics.ReportsQueued.Inc()
	return c.Status(202).JSON(queuedResponse{ReportID: id, Status: "queued"})
}

func observeReport(result *domain.MatchReport, err error) {
	metrics.ObserveOutcome("report", err)
	if err != nil {
		return
	}
	metrics.MatchedRoads.Observe(float64(result.MatchedCount))
	metrics.ConditionsApplied.Add(float64(result.MatchedCount))
}

// readReport builds a condition report from the uploaded file in field.
func readReport(c *fiber.Ctx, field string, p domain.GeoPoint) (*domain.ConditionReport, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: location and file are required", domain.ErrInvalidInput)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	media, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(media) == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", domain.ErrInvalidInput)
	}

	return &domain.ConditionReport{
		ID:          uuid.NewString(),
		Location:    p,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Media:       media,
		ReceivedAt:  time.Now().UTC(),
	}, nil
}

// CreateCityHandler registers a city from a JSON {lat, lon} center.
func CreateCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pointRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		center, err := req.point()
		if err != nil {
			return errFromDomain(c, err)
		}

		city, err := deps.Cities.CreateCity(c.UserContext(), center)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(201).JSON(city)
	}
}

// GetCityHandler returns a city with the IDs of its roads.
func GetCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		city, err := deps.Cities.GetCity(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(city)
	}
}

// roadRequest describes a new road either as coordinates or as a Google
// encoded polyline.
type roadRequest struct {
	Coordinates []domain.GeoPoint `json:"coordinates"`
	Polyline    string            `json:"polyline"`
	Condition   *float64          `json:"condition"`
}

// AddRoadHandler attaches a road to an existing city.
func AddRoadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req roadRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		coords := req.Coordinates
		if len(coords) == 0 && req.Polyline != "" {
			decoded, err := geospatial.DecodePolyline(req.Polyline)
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			coords = decoded
		}

		road, err := deps.Cities.AddRoad(c.UserContext(), c.Params("id"), coords, req.Condition)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(201).JSON(road)
	}
}
