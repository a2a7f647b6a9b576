package ingest

import (
	"errors"
	"fmt"

	"MarketSeries/internal/model"
)

// ErrTickerFiltered is returned for rows whose ticker is outside the allow-list.
var ErrTickerFiltered = errors.New("ticker not selected")

// MalformedRowError means the row's ticker could not be read.
type MalformedRowError struct {
	Field model.Field
	Err   error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row: %s: %v", e.Field, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// FieldConversionError means a field of an identified row could not be converted.
type FieldConversionError struct {
	Ticker string
	Field  model.Field
	Err    error
}

func (e *FieldConversionError) Error() string {
	return fmt.Sprintf("convert %s for %q: %v", e.Field, e.Ticker, e.Err)
}

func (e *FieldConversionError) Unwrap() error { return e.Err }

// IsRowError reports whether err only concerns the current row. Row errors
// are skipped; everything else aborts the run.
func IsRowError(err error) bool {
	var malformed *MalformedRowError
	var conversion *FieldConversionError
	return errors.As(err, &malformed) || errors.As(err, &conversion) || errors.Is(err, ErrTickerFiltered)
}

func skipReason(err error) SkipReason {
	var malformed *MalformedRowError
	switch {
	case errors.As(err, &malformed):
		return SkipMalformed
	case errors.Is(err, ErrTickerFiltered):
		return SkipFiltered
	default:
		return SkipConversion
	}
}
