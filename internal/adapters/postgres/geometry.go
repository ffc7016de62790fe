package postgres

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

const srid = 4326

// encodeLineString converts road coordinates to an EWKB LineString with SRID
// 4326. PostGIS stores x = longitude, y = latitude.
func encodeLineString(pts []domain.GeoPoint) ([]byte, error) {
	flat := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		flat = append(flat, p.Lon, p.Lat)
	}
	ls := geom.NewLineStringFlat(geom.XY, flat).SetSRID(srid)

	data, err := ewkb.Marshal(ls, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode linestring")
	}
	return data, nil
}

// decodeLineString converts an EWKB LineString back to road coordinates.
func decodeLineString(data []byte) ([]domain.GeoPoint, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: decode linestring")
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return nil, eris.Errorf("postgres: expected LineString, got %T", g)
	}

	pts := make([]domain.GeoPoint, 0, ls.NumCoords())
	for _, c := range ls.Coords() {
		pts = append(pts, domain.GeoPoint{Lat: c.Y(), Lon: c.X()})
	}
	return pts, nil
}
