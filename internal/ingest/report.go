package ingest

import (
	"fmt"
	"strings"
	"time"
)

// SkipReason classifies a dropped row.
type SkipReason string

const (
	SkipMalformed  SkipReason = "malformed_row"
	SkipConversion SkipReason = "field_conversion"
	SkipFiltered   SkipReason = "filtered"
)

// Run status values.
const (
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
	StatusCancelled = "cancelled"
)

// Report summarises one ingestion run.
type Report struct {
	Source       string
	Started      time.Time
	Finished     time.Time
	Status       string
	Rows         int // rows pulled from the reader
	Ingested     int
	Skipped      map[SkipReason]int
	Series       int
	Observations int
	Fatal        string // set when the run was aborted
	Corrupt      bool   // the store's one-series-per-ticker guarantee was broken
}

func newReport(source string) *Report {
	return &Report{
		Source:  source,
		Started: time.Now(),
		Skipped: make(map[SkipReason]int),
	}
}

// SkippedTotal returns the number of rows dropped for any reason.
func (r *Report) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s run from %s: %d rows, %d ingested, %d skipped",
		r.Status, r.Source, r.Rows, r.Ingested, r.SkippedTotal())
	for _, reason := range []SkipReason{SkipMalformed, SkipConversion, SkipFiltered} {
		if n := r.Skipped[reason]; n > 0 {
			fmt.Fprintf(&b, " (%s=%d)", reason, n)
		}
	}
	fmt.Fprintf(&b, ", %d series, %d observations in %v", r.Series, r.Observations, r.Duration().Round(time.Millisecond))
	if r.Fatal != "" {
		fmt.Fprintf(&b, "; fatal: %s", r.Fatal)
	}
	return b.String()
}
