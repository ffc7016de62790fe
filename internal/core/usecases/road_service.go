package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/core/ports"
	"github.com/samirrijal/roadpulse/internal/pkg/geospatial"
)

// MatchingOptions tunes the road matching engine.
type MatchingOptions struct {
	BufferHalfWidthMeters float64
	RegionRadiusMeters    float64
	MaxCandidates         int
	NearestLimit          int
	// PublishTimeout bounds each condition update announcement.
	PublishTimeout time.Duration
}

const defaultPublishTimeout = 2 * time.Second

// DefaultMatchingOptions returns a 50 m corridor searched over a 10 km region.
func DefaultMatchingOptions() MatchingOptions {
	return MatchingOptions{
		BufferHalfWidthMeters: 50,
		RegionRadiusMeters:    10000,
		MaxCandidates:         500,
		NearestLimit:          5,
		PublishTimeout:        defaultPublishTimeout,
	}
}

// RoadService answers which roads are near a point and records their condition.
type RoadService struct {
	region       *RegionSelector
	matcher      Matcher
	writer       ports.ConditionWriter
	scorer       ports.ConditionProvider
	publisher    ports.EventPublisher
	nearestLimit int
	publishWait  time.Duration
}

// NewRoadService creates a new RoadService. publisher may be nil.
func NewRoadService(
	roads ports.RoadIndex,
	scorer ports.ConditionProvider,
	publisher ports.EventPublisher,
	opts MatchingOptions,
) *RoadService {
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaultPublishTimeout
	}
	return &RoadService{
		region:       NewRegionSelector(roads, opts.RegionRadiusMeters, opts.MaxCandidates),
		matcher:      Matcher{HalfWidthMeters: opts.BufferHalfWidthMeters},
		writer:       roads,
		scorer:       scorer,
		publisher:    publisher,
		nearestLimit: opts.NearestLimit,
		publishWait:  opts.PublishTimeout,
	}
}

// MatchRoads returns the IDs of the roads whose buffer contains p.
func (s *RoadService) MatchRoads(ctx context.Context, p domain.GeoPoint) ([]string, error) {
	candidates, err := s.region.Candidates(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.matcher.Match(p, candidates)
}

// ApplyCondition writes condition to every road in ids as one batch. Any
// store failure fails the whole batch.
func (s *RoadService) ApplyCondition(ctx context.Context, ids []string, condition float64) error {
	if len(ids) == 0 {
		return domain.ErrNoMatch
	}
	if math.IsNaN(condition) || math.IsInf(condition, 0) {
		return fmt.Errorf("%w: condition must be a finite number", domain.ErrInvalidInput)
	}
	if err := s.writer.ApplyCondition(ctx, ids, condition); err != nil {
		return domain.NewStoreError("apply condition", err)
	}
	return nil
}

// Score asks the condition provider for the report's condition.
func (s *RoadService) Score(ctx context.Context, report *domain.ConditionReport) (float64, error) {
	condition, err := s.scorer.Score(ctx, report)
	if err != nil {
		if errors.Is(err, domain.ErrScoringUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", domain.ErrScoringUnavailable, err)
	}
	if math.IsNaN(condition) || math.IsInf(condition, 0) {
		return 0, fmt.Errorf("%w: provider returned %v", domain.ErrScoringUnavailable, condition)
	}
	return condition, nil
}

// ReportCondition matches the report location to roads, scores the report and
// applies the score to every matched road.
func (s *RoadService) ReportCondition(ctx context.Context, report *domain.ConditionReport) (*domain.MatchReport, error) {
	if report == nil || len(report.Media) == 0 {
		return nil, fmt.Errorf("%w: location and file are required", domain.ErrInvalidInput)
	}

	ids, err := s.MatchRoads(ctx, report.Location)
	if err != nil {
		return nil, err
	}

	condition, err := s.Score(ctx, report)
	if err != nil {
		return nil, err
	}

	if err := s.ApplyCondition(ctx, ids, condition); err != nil {
		return nil, err
	}

	s.Announce(ctx, report, ids, condition)

	return &domain.MatchReport{
		MatchedCount: len(ids),
		MatchedIDs:   ids,
		Condition:    condition,
	}, nil
}

// Announce publishes a condition update. Delivery is best effort: the
// condition is already written, so a slow or failed publish is logged and
// bounded by the publish timeout instead of the caller's deadline.
func (s *RoadService) Announce(ctx context.Context, report *domain.ConditionReport, ids []string, condition float64) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishWait)
	defer cancel()

	err := s.publisher.PublishConditionUpdated(ctx, &domain.ConditionUpdated{
		ReportID:  report.ID,
		Location:  report.Location,
		RoadIDs:   ids,
		Condition: condition,
		Time:      time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("publish condition update", "report_id", report.ID, "roads", len(ids), "error", err)
	}
}

// RoadsInView returns every candidate road around center for rendering. Only
// the coarse region filter is applied.
func (s *RoadService) RoadsInView(ctx context.Context, center domain.GeoPoint) ([]domain.DisplayRoad, error) {
	candidates, err := s.region.Candidates(ctx, center)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DisplayRoad, 0, len(candidates))
	for _, r := range candidates {
		out = append(out, domain.DisplayRoad{
			ID:          r.ID,
			Coordinates: r.Coordinates,
			Condition:   r.Condition,
			Polyline:    geospatial.EncodePolyline(r.Coordinates),
		})
	}
	return out, nil
}

// NearestRoads ranks the candidate roads around p by distance, closest first.
func (s *RoadService) NearestRoads(ctx context.Context, p domain.GeoPoint, limit int) ([]domain.NearbyRoad, error) {
	if limit <= 0 {
		limit = s.nearestLimit
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	candidates, err := s.region.Candidates(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := validateRoads(candidates); err != nil {
		return nil, err
	}

	ranked := make([]domain.NearbyRoad, 0, len(candidates))
	for _, r := range candidates {
		ranked = append(ranked, domain.NearbyRoad{
			ID:             r.ID,
			Coordinates:    r.Coordinates,
			Condition:      r.Condition,
			DistanceMeters: geospatial.DistanceToPolyline(p, r.Coordinates),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceMeters < ranked[j].DistanceMeters
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
