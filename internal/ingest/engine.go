// Package ingest turns a stream of rows into per-ticker series.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"MarketSeries/internal/metrics"
	"MarketSeries/internal/model"
	"MarketSeries/internal/store"
)

const (
	maxLoggedSkips = 20
	progressEvery  = 100000
)

var errEmptyTicker = errors.New("empty ticker")

// SeriesStore is the store contract the engine depends on.
type SeriesStore interface {
	CountMatching(ticker string) int
	Create(id model.Identity) (*model.Series, error)
	Series(ticker string) (*model.Series, error)
	Len() int
	Observations() int
	SortAll()
}

// Engine resolves each row to a series and appends its observation.
type Engine struct {
	store   SeriesStore
	allow   map[string]bool
	sort    bool
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithTickers restricts ingestion to the given tickers. Blank entries are
// ignored; a list with no usable ticker keeps all.
func WithTickers(tickers []string) Option {
	return func(e *Engine) {
		if len(tickers) == 0 {
			return
		}
		allow := make(map[string]bool, len(tickers))
		for _, t := range tickers {
			if t = strings.TrimSpace(t); t != "" {
				allow[t] = true
			}
		}
		if len(allow) > 0 {
			e.allow = allow
		}
	}
}

// WithSortOnFinish sorts every series by timestamp after a completed run.
func WithSortOnFinish(sort bool) Option {
	return func(e *Engine) { e.sort = sort }
}

// WithMetrics records row and run outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine that owns st for the duration of a run.
func New(st SeriesStore, opts ...Option) *Engine {
	e := &Engine{store: st}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest processes one row. Row-level failures (see IsRowError) leave the
// store untouched; any other error means the store is no longer consistent.
func (e *Engine) Ingest(row model.Row) error {
	ticker, err := row.Text(model.FieldSecurity)
	if err != nil {
		return &MalformedRowError{Field: model.FieldSecurity, Err: err}
	}
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return &MalformedRowError{Field: model.FieldSecurity, Err: errEmptyTicker}
	}
	if e.allow != nil && !e.allow[ticker] {
		return fmt.Errorf("%w: %s", ErrTickerFiltered, ticker)
	}

	// Identity is read before the observation fields and only on first
	// sighting; later rows never touch it.
	var identity *model.Identity
	switch n := e.store.CountMatching(ticker); n {
	case 0:
		id, err := readIdentity(ticker, row)
		if err != nil {
			return err
		}
		identity = &id
	case 1:
	default:
		return &store.SeriesError{Ticker: ticker, Count: n, Err: store.ErrMultipleSeries}
	}

	obs, err := readObservation(ticker, row)
	if err != nil {
		return err
	}

	var series *model.Series
	if identity != nil {
		series, err = e.store.Create(*identity)
		if err == nil {
			e.metrics.SeriesAdded()
		}
	} else {
		series, err = e.store.Series(ticker)
	}
	if err != nil {
		return err
	}
	series.Append(obs)
	return nil
}

// Run pulls rows from r until it is exhausted, ctx is cancelled or a fatal
// error occurs. The report is always returned; the store stays queryable.
func (e *Engine) Run(ctx context.Context, r model.RowReader) (*Report, error) {
	rep := newReport(r.Name())
	log.Printf("[INFO] ingest run started, source=%s", rep.Source)

	err := e.pull(ctx, r, rep)

	switch {
	case err == nil:
		rep.Status = StatusCompleted
		if e.sort {
			e.store.SortAll()
		}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		rep.Status = StatusCancelled
	default:
		rep.Status = StatusAborted
		rep.Fatal = err.Error()
	}
	rep.Finished = time.Now()
	rep.Series = e.store.Len()
	rep.Observations = e.store.Observations()
	e.metrics.RunFinished(rep.Status, rep.Duration(), rep.Series)

	if err != nil {
		log.Printf("[ERROR] ingest run %s: %v", rep.Status, err)
	}
	log.Printf("[INFO] %s", rep)
	return rep, err
}

func (e *Engine) pull(ctx context.Context, r model.RowReader, rep *Report) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row %d from %s: %w", rep.Rows+1, r.Name(), err)
		}
		rep.Rows++

		if err := e.Ingest(row); err != nil {
			if store.IsInvariantViolation(err) {
				rep.Corrupt = true
				return fmt.Errorf("row %d: store corrupted: %w", rep.Rows, err)
			}
			if !IsRowError(err) {
				return fmt.Errorf("row %d: %w", rep.Rows, err)
			}
			reason := skipReason(err)
			rep.Skipped[reason]++
			e.metrics.RowSkipped(string(reason))
			if reason != SkipFiltered && rep.SkippedTotal() <= maxLoggedSkips {
				log.Printf("[WARN] skip row %d: %v", rep.Rows, err)
			}
			continue
		}
		rep.Ingested++
		e.metrics.RowIngested()

		if rep.Rows%progressEvery == 0 {
			log.Printf("[INFO] processed %d rows, %d series", rep.Rows, e.store.Len())
		}
	}
}

func readIdentity(ticker string, row model.Row) (model.Identity, error) {
	id := model.Identity{Ticker: ticker}
	texts := []struct {
		field model.Field
		dst   *string
	}{
		{model.FieldCurrency, &id.Currency},
		{model.FieldInstrumentType, &id.InstrumentType},
		{model.FieldExchangeName, &id.ExchangeName},
		{model.FieldTimeZone, &id.TimeZone},
	}
	for _, t := range texts {
		v, err := row.Text(t.field)
		if err != nil {
			return id, &FieldConversionError{Ticker: ticker, Field: t.field, Err: err}
		}
		*t.dst = strings.TrimSpace(v)
	}
	offset, err := row.Int(model.FieldGMTOffset)
	if err != nil {
		return id, &FieldConversionError{Ticker: ticker, Field: model.FieldGMTOffset, Err: err}
	}
	id.GMTOffset = int(offset)
	return id, nil
}

func readObservation(ticker string, row model.Row) (model.Observation, error) {
	var obs model.Observation
	secs, err := row.Int(model.FieldAsAt)
	if err != nil {
		return obs, &FieldConversionError{Ticker: ticker, Field: model.FieldAsAt, Err: err}
	}
	obs.Time = time.Unix(secs, 0).UTC()

	floats := []struct {
		field model.Field
		dst   *float64
	}{
		{model.FieldLow, &obs.Low},
		{model.FieldHigh, &obs.High},
		{model.FieldOpen, &obs.Open},
		{model.FieldClose, &obs.Close},
		{model.FieldVolume, &obs.Volume},
	}
	for _, f := range floats {
		v, err := row.Float(f.field)
		if err != nil {
			return obs, &FieldConversionError{Ticker: ticker, Field: f.field, Err: err}
		}
		*f.dst = v
	}
	return obs, nil
}
