package source

import (
	"context"
	"io"
	"time"

	"MarketSeries/internal/model"
)

// MockReader generates deterministic interleaved minute bars for a set of
// tickers. Used for development when no database is reachable.
type MockReader struct {
	Tickers   []string
	BasePrice float64
	Bars      int // bars per ticker
	Start     time.Time

	pos int
}

// NewMockReader creates a mock reader yielding bars rows per ticker.
func NewMockReader(tickers []string, bars int) *MockReader {
	return &MockReader{
		Tickers:   tickers,
		BasePrice: 100,
		Bars:      bars,
		Start:     time.Now().UTC().Truncate(24 * time.Hour).Add(-time.Duration(bars) * time.Minute),
	}
}

func (m *MockReader) Name() string { return "mock" }

func (m *MockReader) Next(_ context.Context) (model.Row, error) {
	if len(m.Tickers) == 0 || m.pos >= len(m.Tickers)*m.Bars {
		return nil, io.EOF
	}
	// Rows are interleaved across tickers the way a time-ordered table scan
	// returns them.
	i := m.pos / len(m.Tickers)
	ticker := m.Tickers[m.pos%len(m.Tickers)]
	m.pos++

	p := m.BasePrice * (1 + float64(i-m.Bars/2)*0.001)
	return MapRow{
		model.FieldAsAt:           m.Start.Add(time.Duration(i) * time.Minute).Unix(),
		model.FieldSecurity:       ticker,
		model.FieldCurrency:       "USD",
		model.FieldInstrumentType: "EQUITY",
		model.FieldExchangeName:   "NMS",
		model.FieldTimeZone:       "EST",
		model.FieldGMTOffset:      int64(-18000),
		model.FieldLow:            p * 0.995,
		model.FieldHigh:           p * 1.005,
		model.FieldOpen:           p * 0.999,
		model.FieldClose:          p,
		model.FieldVolume:         1000000.0,
	}, nil
}

func (m *MockReader) Close() error { return nil }
