package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for ingestion runs.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	Rows          *prometheus.CounterVec // labels: result=ingested|skipped
	Skipped       *prometheus.CounterVec // labels: reason
	SeriesCreated prometheus.Counter
	Runs          *prometheus.CounterVec // labels: status
	RunDuration   prometheus.Histogram
	Series        prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		Rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Rows pulled from the row source, by result",
		}, []string{"result"}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_rows_skipped_total",
			Help: "Rows dropped, by reason",
		}, []string{"reason"}),
		SeriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_series_created_total",
			Help: "Series created on first sighting of a ticker",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Ingestion runs, by final status",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Wall time of an ingestion run",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		Series: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ingest_series",
			Help: "Series held by the most recent run",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Rows, m.Skipped, m.SeriesCreated, m.Runs, m.RunDuration, m.Series)
	return m
}

func (m *Metrics) RowIngested() {
	if m == nil {
		return
	}
	m.Rows.WithLabelValues("ingested").Inc()
}

func (m *Metrics) RowSkipped(reason string) {
	if m == nil {
		return
	}
	m.Rows.WithLabelValues("skipped").Inc()
	m.Skipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) SeriesAdded() {
	if m == nil {
		return
	}
	m.SeriesCreated.Inc()
}

// RunFinished records the outcome of one run.
func (m *Metrics) RunFinished(status string, d time.Duration, series int) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(status).Inc()
	m.RunDuration.Observe(d.Seconds())
	m.Series.Set(float64(series))
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[ERROR] metrics server: %v", err)
	}
}
