package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSeries/internal/config"
	"MarketSeries/internal/model"
)

func TestOpen_Kinds(t *testing.T) {
	r, err := Open(context.Background(), config.DataSource{Kind: KindMock, Tickers: []string{"AAPL"}, MockBars: 3}, "")
	require.NoError(t, err)
	assert.Equal(t, "mock", r.Name())

	r, err = Open(context.Background(), config.DataSource{Kind: KindYahoo, Interval: "1d", Range: "1mo"}, "")
	require.NoError(t, err)
	assert.Equal(t, "yahoo", r.Name())

	path := seedSQLite(t)
	r, err = Open(context.Background(), config.DataSource{Kind: KindSQL, Driver: "sqlite", DSN: path}, "")
	require.NoError(t, err)
	assert.Equal(t, "sql:sqlite", r.Name())
	require.NoError(t, r.Close())

	_, err = Open(context.Background(), config.DataSource{Kind: "ftp"}, "")
	assert.Error(t, err)
}

func TestMockReader_Interleaves(t *testing.T) {
	m := NewMockReader([]string{"AAPL", "MSFT"}, 3)
	rows, err := drain(t, m)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	var tickers []string
	for _, r := range rows {
		tk, err := r.Text(model.FieldSecurity)
		require.NoError(t, err)
		tickers = append(tickers, tk)
	}
	assert.Equal(t, []string{"AAPL", "MSFT", "AAPL", "MSFT", "AAPL", "MSFT"}, tickers)
}
