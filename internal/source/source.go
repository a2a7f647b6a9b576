// Package source provides the row readers that feed the ingestion engine.
package source

import (
	"context"
	"fmt"

	"MarketSeries/internal/config"
	"MarketSeries/internal/model"
)

// Source kinds.
const (
	KindSQL   = "sql"
	KindYahoo = "yahoo"
	KindMock  = "mock"
)

// Open builds the reader described by cfg. The caller must Close it.
func Open(ctx context.Context, cfg config.DataSource, proxy string) (model.RowReader, error) {
	switch cfg.Kind {
	case KindSQL:
		query := cfg.Query
		if query == "" {
			query = DefaultQuery(cfg.Driver, cfg.Table)
		}
		return NewSQLReader(ctx, cfg.Driver, cfg.DSN, query)
	case KindYahoo:
		return NewYahooReader(cfg.Tickers, cfg.Interval, cfg.Range, proxy), nil
	case KindMock:
		tickers := cfg.Tickers
		if len(tickers) == 0 {
			tickers = DefaultTickers
		}
		return NewMockReader(tickers, cfg.MockBars), nil
	default:
		return nil, fmt.Errorf("unknown data source kind %q", cfg.Kind)
	}
}
