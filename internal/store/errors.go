package store

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateSeries is returned by Create when the ticker already has a series.
	ErrDuplicateSeries = errors.New("series already exists")

	// ErrSeriesNotFound is returned when no series exists for the ticker.
	ErrSeriesNotFound = errors.New("series not found")

	// ErrMultipleSeries means more than one series matches a ticker. The store
	// can no longer be trusted once this is seen.
	ErrMultipleSeries = errors.New("multiple series for ticker")
)

// SeriesError attaches the ticker (and match count) to a store error.
type SeriesError struct {
	Ticker string
	Count  int
	Err    error
}

func (e *SeriesError) Error() string {
	if errors.Is(e.Err, ErrMultipleSeries) {
		return fmt.Sprintf("%s: %q matched %d series", e.Err, e.Ticker, e.Count)
	}
	return fmt.Sprintf("%s: %q", e.Err, e.Ticker)
}

func (e *SeriesError) Unwrap() error { return e.Err }

// IsInvariantViolation reports whether err means the store's uniqueness
// guarantee was broken or bypassed.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrMultipleSeries) || errors.Is(err, ErrDuplicateSeries)
}
