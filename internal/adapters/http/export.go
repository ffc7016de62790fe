package http

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-kml"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/pkg/metrics"
)

// roadsFeatureCollection renders roads as GeoJSON LineString features. The
// feature ID is the road ID; properties carry the condition when known.
func roadsFeatureCollection(roads []domain.DisplayRoad) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range roads {
		line := make(orb.LineString, len(r.Coordinates))
		for i, p := range r.Coordinates {
			line[i] = orb.Point{p.Lon, p.Lat}
		}

		f := geojson.NewFeature(line)
		f.ID = r.ID
		f.Properties["id"] = r.ID
		if r.Condition != nil {
			f.Properties["condition"] = *r.Condition
		}
		fc.Append(f)
	}
	return fc
}

// roadsKML renders roads as a KML document with one placemark per road.
func roadsKML(roads []domain.DisplayRoad) *kml.CompoundElement {
	placemarks := make([]kml.Element, 0, len(roads))
	for _, r := range roads {
		coords := make([]kml.Coordinate, len(r.Coordinates))
		for i, p := range r.Coordinates {
			coords[i] = kml.Coordinate{Lon: p.Lon, Lat: p.Lat}
		}

		children := []kml.Element{
			kml.Name(r.ID),
			kml.LineString(kml.Tessellate(true), kml.Coordinates(coords...)),
		}
		if r.Condition != nil {
			children = append(children,
				kml.Description("condition "+strconv.FormatFloat(*r.Condition, 'f', -1, 64)))
		}
		placemarks = append(placemarks, kml.Placemark(children...))
	}
	return kml.KML(kml.Document(placemarks...))
}

// RoadsGeoJSONHandler serves the roads around a location as a GeoJSON
// FeatureCollection.
func RoadsGeoJSONHandler(deps *Dependencies) fiber.Handler {
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

		data, err := roadsFeatureCollection(roads).MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// RoadsKMLHandler serves the roads around a location as KML.
func RoadsKMLHandler(deps *Dependencies) fiber.Handler {
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

		var buf bytes.Buffer
		if err := roadsKML(roads).WriteIndent(&buf, "", "  "); err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/vnd.google-earth.kml+xml")
		return c.Send(buf.Bytes())
	}
}
