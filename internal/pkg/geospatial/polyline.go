package geospatial

import (
	"errors"

	"github.com/twpayne/go-polyline"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// EncodePolyline encodes points as a Google polyline string.
func EncodePolyline(pts []domain.GeoPoint) string {
	if len(pts) == 0 {
		return ""
	}
	coords := make([][]float64, len(pts))
	for i, p := range pts {
		coords[i] = []float64{p.Lat, p.Lon}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline decodes a Google polyline string.
func DecodePolyline(encoded string) ([]domain.GeoPoint, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.New("failed to decode polyline: " + err.Error())
	}
	pts := make([]domain.GeoPoint, len(coords))
	for i, c := range coords {
		pts[i] = domain.GeoPoint{Lat: c[0], Lon: c[1]}
	}
	return pts, nil
}
