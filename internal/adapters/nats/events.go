package natsadapter

import (
	"time"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/rotisserie/eris"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

const (
	// SubjectPrefix roots every condition update subject.
	SubjectPrefix = "roads.condition."
	// AreaPrecision is the geohash length of an area (about 5 km cells).
	AreaPrecision = 5
)

// AreaOf returns the geohash area key of p.
func AreaOf(p domain.GeoPoint) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lon, AreaPrecision)
}

// SubjectFor returns the subject condition updates for area are published
// on. An empty area selects every area.
func SubjectFor(area string) string {
	if area == "" {
		return SubjectPrefix + ">"
	}
	return SubjectPrefix + area
}

func conditionStruct(e *domain.ConditionUpdated) (*structpb.Struct, error) {
	ids := make([]any, len(e.RoadIDs))
	for i, id := range e.RoadIDs {
		ids[i] = id
	}

	s, err := structpb.NewStruct(map[string]any{
		"report_id": e.ReportID,
		"lat":       e.Location.Lat,
		"lon":       e.Location.Lon,
		"road_ids":  ids,
		"condition": e.Condition,
		"time":      e.Time.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, eris.Wrap(err, "nats: build event struct")
	}
	return s, nil
}

// EncodeConditionUpdated serialises an event as a protobuf Struct.
func EncodeConditionUpdated(e *domain.ConditionUpdated) ([]byte, error) {
	s, err := conditionStruct(e)
	if err != nil {
		return nil, err
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "nats: marshal event")
	}
	return data, nil
}

// ConditionUpdatedJSON renders an event as the canonical JSON form of its
// protobuf Struct, the shape websocket clients receive.
func ConditionUpdatedJSON(e *domain.ConditionUpdated) ([]byte, error) {
	s, err := conditionStruct(e)
	if err != nil {
		return nil, err
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "nats: marshal event json")
	}
	return data, nil
}

// DecodeConditionUpdated parses an event written by EncodeConditionUpdated.
func DecodeConditionUpdated(data []byte) (*domain.ConditionUpdated, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrap(err, "nats: unmarshal event")
	}

	f := s.GetFields()
	e := &domain.ConditionUpdated{
		ReportID:  f["report_id"].GetStringValue(),
		Location:  domain.GeoPoint{Lat: f["lat"].GetNumberValue(), Lon: f["lon"].GetNumberValue()},
		Condition: f["condition"].GetNumberValue(),
	}
	for _, v := range f["road_ids"].GetListValue().GetValues() {
		e.RoadIDs = append(e.RoadIDs, v.GetStringValue())
	}
	if ts := f["time"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, eris.Wrap(err, "nats: parse event time")
		}
		e.Time = t
	}
	return e, nil
}
