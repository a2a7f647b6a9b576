package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSeries/internal/model"
)

const chartJSON = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"%s","exchangeName":"NMS","instrumentType":"EQUITY","gmtoffset":-14400,"timezone":"EDT"},
  "timestamp":[1716557400,1716557460],
  "indicators":{"quote":[{"open":[11,null],"high":[12,null],"low":[10,null],"close":[11.5,null],"volume":[1000,null]}]}
}],"error":null}}`

func newChartServer(t *testing.T, failing map[string]bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		if failing[ticker] {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		fmt.Fprintf(w, chartJSON, ticker)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func drain(t *testing.T, r model.RowReader) ([]model.Row, error) {
	t.Helper()
	var rows []model.Row
	for {
		row, err := r.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func TestYahooReader_RowsCarryMeta(t *testing.T) {
	srv := newChartServer(t, nil)
	y := NewYahooReader([]string{"AAPL", "MSFT"}, "1m", "1d", "")
	y.BaseURL = srv.URL

	rows, err := drain(t, y)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	first := rows[0]
	ticker, _ := first.Text(model.FieldSecurity)
	tz, _ := first.Text(model.FieldTimeZone)
	off, _ := first.Int(model.FieldGMTOffset)
	c, err := first.Float(model.FieldClose)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", ticker)
	assert.Equal(t, "EDT", tz)
	assert.Equal(t, int64(-14400), off)
	assert.Equal(t, 11.5, c)

	_, err = rows[1].Float(model.FieldClose)
	assert.True(t, errors.Is(err, model.ErrFieldNull), "null bars surface as null fields")

	ticker, _ = rows[2].Text(model.FieldSecurity)
	assert.Equal(t, "MSFT", ticker)
}

func TestYahooReader_SkipsFailedTicker(t *testing.T) {
	srv := newChartServer(t, map[string]bool{"BAD": true})
	y := NewYahooReader([]string{"BAD", "TSLA"}, "1m", "1d", "")
	y.BaseURL = srv.URL

	rows, err := drain(t, y)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestYahooReader_AllTickersFailed(t *testing.T) {
	srv := newChartServer(t, map[string]bool{"BAD": true})
	y := NewYahooReader([]string{"BAD"}, "1m", "1d", "")
	y.BaseURL = srv.URL

	_, err := drain(t, y)
	assert.Error(t, err)
}

func TestYahooReader_DefaultTickers(t *testing.T) {
	y := NewYahooReader(nil, "1d", "1mo", "http://proxy.local:3128")
	assert.Equal(t, DefaultTickers, y.Tickers)
}
