package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// The /api/v1/map routes keep the request and response shapes of the first
// map client. Positions in bodies are [lng, lat] pairs except for
// centerLocation on /get, which is [lat, lng].

func legacyError(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	if status >= 500 {
		LoggerFromCtx(c.UserContext()).Error("legacy request failed",
			"path", c.Path(), "code", code, "error", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": err.Error(),
		"success": false,
	})
}

func pairToPoint(pair []float64, latFirst bool) (domain.GeoPoint, error) {
	if len(pair) != 2 {
		return domain.GeoPoint{}, fmt.Errorf("%w: send coordinate", domain.ErrInvalidInput)
	}
	p := domain.GeoPoint{Lat: pair[1], Lon: pair[0]}
	if latFirst {
		p = domain.GeoPoint{Lat: pair[0], Lon: pair[1]}
	}
	return p, p.Validate()
}

// LegacyMapGetHandler returns every road around centerLocation.
func LegacyMapGetHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		CenterLocation []float64 `json:"centerLocation"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return legacyError(c, fmt.Errorf("%w: send coordinate", domain.ErrInvalidInput))
		}
		p, err := pairToPoint(req.CenterLocation, true)
		if err != nil {
			return legacyError(c, err)
		}

		roads, err := deps.Roads.RoadsInView(c.UserContext(), p)
		if err != nil {
			return legacyError(c, err)
		}
		return c.JSON(fiber.Map{
			"roads":   roads,
			"message": "get successfully",
			"success": true,
		})
	}
}

// LegacySetCityHandler creates a city from centerCoordinates.
func LegacySetCityHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		CenterCoordinates []float64 `json:"centerCoordinates"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return legacyError(c, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		}
		center, err := pairToPoint(req.CenterCoordinates, false)
		if err != nil {
			return legacyError(c, err)
		}

		city, err := deps.Cities.CreateCity(c.UserContext(), center)
		if err != nil {
			return legacyError(c, err)
		}
		return c.Status(201).JSON(fiber.Map{
			"createdCity": city,
			"message":     "city created",
			"success":     true,
		})
	}
}

// LegacySetRoadHandler adds a road to the city named in the path.
func LegacySetRoadHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Coordinates [][]float64 `json:"coordinates"`
		Condition   *float64    `json:"condition"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return legacyError(c, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		}

		coords := make([]domain.GeoPoint, 0, len(req.Coordinates))
		for _, pair := range req.Coordinates {
			p, err := pairToPoint(pair, false)
			if err != nil {
				return legacyError(c, err)
			}
			coords = append(coords, p)
		}

		road, err := deps.Cities.AddRoad(c.UserContext(), c.Params("id"), coords, req.Condition)
		if err != nil {
			return legacyError(c, err)
		}
		return c.Status(201).JSON(fiber.Map{
			"createdRoad": road,
			"message":     "road created",
			"success":     true,
		})
	}
}

// LegacySetConditionHandler scores an uploaded file and writes the score to
// the roads at centerLocation, a "lng,lat" form value.
func LegacySetConditionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.FormValue("centerLocation")
		parts := strings.Split(raw, ",")
		if raw == "" || len(parts) != 2 {
			return legacyError(c, fmt.Errorf("%w: location and file are required", domain.ErrInvalidInput))
		}
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLng != nil || errLat != nil {
			return legacyError(c, fmt.Errorf("%w: centerLocation must be \"lng,lat\"", domain.ErrInvalidInput))
		}
		p := domain.GeoPoint{Lat: lat, Lon: lng}
		if err := p.Validate(); err != nil {
			return legacyError(c, err)
		}

		report, err := readReport(c, "file", p)
		if err != nil {
			return legacyError(c, err)
		}

		result, err := deps.Roads.ReportCondition(c.UserContext(), report)
		observeReport(result, err)
		if err != nil {
			return legacyError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":        true,
			"message":        fmt.Sprintf("Successfully updated condition for %d road(s)", result.MatchedCount),
			"updatedRoadIds": result.MatchedIDs,
			"condition":      result.Condition,
		})
	}
}
