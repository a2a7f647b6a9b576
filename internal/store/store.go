// Package store holds the in-memory collection of per-ticker series for one
// ingestion run.
package store

import "MarketSeries/internal/model"

// Store maps each ticker to its series. It is not safe for concurrent use;
// a run owns its store exclusively.
type Store struct {
	byTicker map[string][]*model.Series
	order    []string
}

// New creates an empty store.
func New() *Store {
	return &Store{byTicker: make(map[string][]*model.Series)}
}

// Has reports whether a series exists for ticker.
func (s *Store) Has(ticker string) bool {
	return len(s.byTicker[ticker]) > 0
}

// CountMatching returns how many series are held for ticker. Anything other
// than 0 or 1 is corruption.
func (s *Store) CountMatching(ticker string) int {
	return len(s.byTicker[ticker])
}

// Create adds an empty series for id.Ticker.
func (s *Store) Create(id model.Identity) (*model.Series, error) {
	if n := s.CountMatching(id.Ticker); n > 0 {
		return nil, &SeriesError{Ticker: id.Ticker, Count: n, Err: ErrDuplicateSeries}
	}
	series := model.NewSeries(id)
	s.insert(series)
	return series, nil
}

func (s *Store) insert(series *model.Series) {
	t := series.Ticker()
	if len(s.byTicker[t]) == 0 {
		s.order = append(s.order, t)
	}
	s.byTicker[t] = append(s.byTicker[t], series)
}

// Series returns the mutable series for ticker.
func (s *Store) Series(ticker string) (*model.Series, error) {
	matches := s.byTicker[ticker]
	switch len(matches) {
	case 0:
		return nil, &SeriesError{Ticker: ticker, Err: ErrSeriesNotFound}
	case 1:
		return matches[0], nil
	default:
		return nil, &SeriesError{Ticker: ticker, Count: len(matches), Err: ErrMultipleSeries}
	}
}

// Snapshot returns a deep copy of the series for ticker.
func (s *Store) Snapshot(ticker string) (*model.Series, error) {
	series, err := s.Series(ticker)
	if err != nil {
		return nil, err
	}
	return series.Clone(), nil
}

// Tickers returns every ticker in order of first sighting.
func (s *Store) Tickers() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of tickers held.
func (s *Store) Len() int { return len(s.order) }

// Observations returns the total number of observations across all series.
func (s *Store) Observations() int {
	n := 0
	for _, t := range s.order {
		for _, series := range s.byTicker[t] {
			n += series.Len()
		}
	}
	return n
}

// SortAll sorts every series chronologically.
func (s *Store) SortAll() {
	for _, t := range s.order {
		for _, series := range s.byTicker[t] {
			series.SortByTime()
		}
	}
}
