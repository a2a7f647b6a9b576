package model

import (
	"sort"
	"time"
)

// Identity holds the per-instrument attributes captured when a series is created.
type Identity struct {
	Ticker         string
	Currency       string
	InstrumentType string
	ExchangeName   string
	TimeZone       string
	GMTOffset      int // as supplied by the source
}

// Observation is one OHLCV bar for an instrument.
type Observation struct {
	Time   time.Time // UTC
	Low    float64
	High   float64
	Open   float64
	Close  float64
	Volume float64
}

// Series is the accumulated history for one ticker.
// The six sequences always have the same length.
type Series struct {
	id     Identity
	times  []time.Time
	low    []float64
	high   []float64
	open   []float64
	close  []float64
	volume []float64
}

// NewSeries creates an empty series with the given identity.
func NewSeries(id Identity) *Series {
	return &Series{id: id}
}

func (s *Series) Identity() Identity { return s.id }
func (s *Series) Ticker() string     { return s.id.Ticker }
func (s *Series) Len() int           { return len(s.times) }

// Append pushes one observation onto all six sequences.
func (s *Series) Append(o Observation) {
	s.times = append(s.times, o.Time.UTC())
	s.low = append(s.low, o.Low)
	s.high = append(s.high, o.High)
	s.open = append(s.open, o.Open)
	s.close = append(s.close, o.Close)
	s.volume = append(s.volume, o.Volume)
}

// At returns the i-th observation. It panics if i is out of range.
func (s *Series) At(i int) Observation {
	return Observation{
		Time:   s.times[i],
		Low:    s.low[i],
		High:   s.high[i],
		Open:   s.open[i],
		Close:  s.close[i],
		Volume: s.volume[i],
	}
}

// Observations returns the series as a slice of bars.
func (s *Series) Observations() []Observation {
	out := make([]Observation, s.Len())
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

func (s *Series) Timestamps() []time.Time { return append([]time.Time(nil), s.times...) }
func (s *Series) Lows() []float64         { return append([]float64(nil), s.low...) }
func (s *Series) Highs() []float64        { return append([]float64(nil), s.high...) }
func (s *Series) Opens() []float64        { return append([]float64(nil), s.open...) }
func (s *Series) Closes() []float64       { return append([]float64(nil), s.close...) }
func (s *Series) Volumes() []float64      { return append([]float64(nil), s.volume...) }

// IsSorted reports whether timestamps are non-decreasing.
func (s *Series) IsSorted() bool {
	return sort.SliceIsSorted(s.times, func(i, j int) bool { return s.times[i].Before(s.times[j]) })
}

// SortByTime orders the series chronologically. Equal timestamps keep their
// ingestion order.
func (s *Series) SortByTime() {
	if s.IsSorted() {
		return
	}
	obs := s.Observations()
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Time.Before(obs[j].Time) })
	for i, o := range obs {
		s.times[i] = o.Time
		s.low[i] = o.Low
		s.high[i] = o.High
		s.open[i] = o.Open
		s.close[i] = o.Close
		s.volume[i] = o.Volume
	}
}

// Clone returns a deep copy safe to hand to readers outside the run.
func (s *Series) Clone() *Series {
	return &Series{
		id:     s.id,
		times:  s.Timestamps(),
		low:    s.Lows(),
		high:   s.Highs(),
		open:   s.Opens(),
		close:  s.Closes(),
		volume: s.Volumes(),
	}
}
