package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.RowIngested()
	m.RowIngested()
	m.RowSkipped("field_conversion")
	m.SeriesAdded()
	m.RunFinished("completed", 2*time.Second, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Rows.WithLabelValues("ingested")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rows.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Skipped.WithLabelValues("field_conversion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeriesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("completed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Series))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RowIngested()
	m.RowSkipped("malformed_row")
	m.SeriesAdded()
	m.RunFinished("aborted", time.Second, 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RowIngested()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ingest_rows_total{result="ingested"} 1`)
}
