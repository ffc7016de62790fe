package domain

import "errors"

var (
	// ErrInvalidInput marks missing or malformed coordinates and road data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoCandidates means the region query returned no roads.
	ErrNoCandidates = errors.New("no candidate roads in region")
	// ErrNoMatch means candidates existed but none contained the point.
	ErrNoMatch = errors.New("point is not on any known road")
	// ErrStoreUnavailable marks a failed candidate fetch or condition write.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrScoringUnavailable means the condition provider produced no score.
	ErrScoringUnavailable = errors.New("condition scoring unavailable")
	// ErrCityNotFound is returned when a road is attached to an unknown city.
	ErrCityNotFound = errors.New("city not found")
	// ErrRoadNotFound is returned when a road ID is unknown.
	ErrRoadNotFound = errors.New("road not found")
)

// StoreError carries a store failure unchanged while classifying it as
// ErrStoreUnavailable.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + ErrStoreUnavailable.Error() + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStoreUnavailable) succeed.
func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// NewStoreError wraps err, or returns nil when err is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
