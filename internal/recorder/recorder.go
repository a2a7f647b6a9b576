package recorder

import (
	"time"

	"MarketSeries/internal/ingest"
)

// RunRecord is one journaled ingestion run.
type RunRecord struct {
	Source       string
	Status       string
	Started      time.Time
	Finished     time.Time
	Rows         int
	Ingested     int
	Malformed    int
	Conversion   int
	Filtered     int
	Series       int
	Observations int
	Fatal        string
}

// FromReport flattens a run report into a journal record.
func FromReport(rep *ingest.Report) *RunRecord {
	return &RunRecord{
		Source:       rep.Source,
		Status:       rep.Status,
		Started:      rep.Started,
		Finished:     rep.Finished,
		Rows:         rep.Rows,
		Ingested:     rep.Ingested,
		Malformed:    rep.Skipped[ingest.SkipMalformed],
		Conversion:   rep.Skipped[ingest.SkipConversion],
		Filtered:     rep.Skipped[ingest.SkipFiltered],
		Series:       rep.Series,
		Observations: rep.Observations,
		Fatal:        rep.Fatal,
	}
}

// Recorder journals run outcomes. It never stores series data.
type Recorder interface {
	RecordRun(rep *ingest.Report) error
	RecentRuns(limit int) ([]RunRecord, error)
	Close() error
}
