// Package scoring provides condition providers that turn a report into a
// road condition score.
package scoring

import (
	"context"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// DefaultCondition is the score reported when no model backend is configured.
const DefaultCondition = 96.0

// Static returns the same condition for every report.
type Static struct {
	Condition float64
}

// NewStatic creates a Static provider. A zero condition selects
// DefaultCondition.
func NewStatic(condition float64) *Static {
	if condition == 0 {
		condition = DefaultCondition
	}
	return &Static{Condition: condition}
}

// Score implements ports.ConditionProvider.
func (s *Static) Score(ctx context.Context, report *domain.ConditionReport) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.Condition, nil
}
