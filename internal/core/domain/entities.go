package domain

import (
	"time"
)

// City groups the roads that belong to one populated area. Its center is what
// the region query is evaluated against.
type City struct {
	ID        string    `json:"id"`
	Center    GeoPoint  `json:"center"`
	RoadIDs   []string  `json:"road_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Road is a polyline of coordinates with the last reported surface condition.
type Road struct {
	ID          string     `json:"id"`
	CityID      string     `json:"city_id"`
	Coordinates []GeoPoint `json:"coordinates"`
	Condition   *float64   `json:"condition,omitempty"`
	// OSMWayID is set for roads imported from OpenStreetMap. A city holds at
	// most one road per way.
	OSMWayID  *int64    `json:"osm_way_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Segments splits the road into consecutive two-point chords.
func (r Road) Segments() []Segment {
	if len(r.Coordinates) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(r.Coordinates)-1)
	for i := 0; i < len(r.Coordinates)-1; i++ {
		segs = append(segs, Segment{Start: r.Coordinates[i], End: r.Coordinates[i+1]})
	}
	return segs
}

// ConditionReport is a geolocated media upload from a reporting device.
type ConditionReport struct {
	ID          string    `json:"id"`
	Location    GeoPoint  `json:"location"`
	Filename    string    `json:"filename,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Media       []byte    `json:"-"`
	ReceivedAt  time.Time `json:"received_at"`
}

// MatchReport is the outcome of a successful condition update.
type MatchReport struct {
	MatchedCount int      `json:"matched_count"`
	MatchedIDs   []string `json:"matched_ids"`
	Condition    float64  `json:"condition"`
}

// DisplayRoad is a road as returned for map rendering.
type DisplayRoad struct {
	ID          string     `json:"id"`
	Coordinates []GeoPoint `json:"coordinates"`
	Condition   *float64   `json:"condition,omitempty"`
	Polyline    string     `json:"polyline,omitempty"` // Google encoded polyline
}

// NearbyRoad is a candidate road ranked by its distance to a point.
type NearbyRoad struct {
	ID             string     `json:"id"`
	Coordinates    []GeoPoint `json:"coordinates"`
	Condition      *float64   `json:"condition,omitempty"`
	DistanceMeters float64    `json:"distance_meters"`
}

// ConditionUpdated is published after a batch of roads received a new condition.
type ConditionUpdated struct {
	ReportID  string    `json:"report_id,omitempty"`
	Location  GeoPoint  `json:"location"`
	RoadIDs   []string  `json:"road_ids"`
	Condition float64   `json:"condition"`
	Time      time.Time `json:"time"`
}
