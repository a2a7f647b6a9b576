package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"MarketSeries/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// DefaultTickers is the instrument list used when none is configured.
var DefaultTickers = []string{"AAPL", "GOOGL", "TSLA", "NVDA", "AMZN", "META", "PYPL"}

// YahooReader yields one row per chart bar for each ticker, fetching tickers
// one after another as rows are pulled.
type YahooReader struct {
	BaseURL  string
	Client   *http.Client
	Tickers  []string
	Interval string // e.g. "1m", "1d"
	Range    string // e.g. "1d", "1mo"

	next    int
	pending []model.Row
	failed  int
}

// NewYahooReader creates a reader with optional proxy support.
func NewYahooReader(tickers []string, interval, rng, proxyURL string) *YahooReader {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if len(tickers) == 0 {
		tickers = DefaultTickers
	}
	return &YahooReader{
		BaseURL:  yahooBaseURL,
		Client:   &http.Client{Timeout: 30 * time.Second, Transport: transport},
		Tickers:  tickers,
		Interval: interval,
		Range:    rng,
	}
}

func (y *YahooReader) Name() string { return "yahoo" }

func (y *YahooReader) Close() error { return nil }

func (y *YahooReader) Next(ctx context.Context) (model.Row, error) {
	for len(y.pending) == 0 {
		if y.next >= len(y.Tickers) {
			if y.failed > 0 && y.failed == len(y.Tickers) {
				return nil, fmt.Errorf("yahoo: all %d tickers failed", y.failed)
			}
			return nil, io.EOF
		}
		ticker := y.Tickers[y.next]
		y.next++
		rows, err := y.fetchChart(ctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			y.failed++
			log.Printf("[WARN] yahoo %s: %v", ticker, err)
			continue
		}
		y.pending = rows
	}
	row := y.pending[0]
	y.pending = y.pending[1:]
	return row, nil
}

// yahooChart is the response structure from the chart API. Quote values are
// pointers because the API reports missing bars as null.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency       string `json:"currency"`
				Symbol         string `json:"symbol"`
				ExchangeName   string `json:"exchangeName"`
				InstrumentType string `json:"instrumentType"`
				GMTOffset      int64  `json:"gmtoffset"`
				Timezone       string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *YahooReader) fetchChart(ctx context.Context, ticker string) ([]model.Row, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		y.BaseURL, url.PathEscape(ticker), url.QueryEscape(y.Interval), url.QueryEscape(y.Range))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data returned")
	}

	result := chart.Chart.Result[0]
	meta := result.Meta
	if meta.Symbol == "" {
		meta.Symbol = ticker
	}
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n || len(quote.Volume) != n {
		return nil, fmt.Errorf("quote arrays differ in length from %d timestamps", n)
	}

	rows := make([]model.Row, 0, n)
	for i, ts := range result.Timestamp {
		rows = append(rows, MapRow{
			model.FieldAsAt:           ts,
			model.FieldSecurity:       meta.Symbol,
			model.FieldCurrency:       meta.Currency,
			model.FieldInstrumentType: meta.InstrumentType,
			model.FieldExchangeName:   meta.ExchangeName,
			model.FieldTimeZone:       meta.Timezone,
			model.FieldGMTOffset:      meta.GMTOffset,
			model.FieldLow:            deref(quote.Low[i]),
			model.FieldHigh:           deref(quote.High[i]),
			model.FieldOpen:           deref(quote.Open[i]),
			model.FieldClose:          deref(quote.Close[i]),
			model.FieldVolume:         deref(quote.Volume[i]),
		})
	}
	return rows, nil
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
