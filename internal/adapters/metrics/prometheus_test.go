package metrics_test

import (
	"context"
	"csv-drop/internal/adapters/metrics"
	"csv-drop/internal/core/domain"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(reg)

	// Act
	recorder.UploadFinished(domain.OutcomeOf(nil))
	recorder.UploadFinished(domain.OutcomeOf(context.Canceled))
	recorder.UploadFinished(domain.OutcomeOf(domain.ErrRemoteRejected))
	recorder.UploadFinished(domain.OutcomeOf(domain.ErrRemoteRejected))
	recorder.CompensationRan(domain.CompensationAbortSession, false)

	// Assert
	count, err := testutil.GatherAndCount(reg, "csvdrop_uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	expected := `
# HELP csvdrop_compensations_total Cleanup steps run after a failed or cancelled upload
# TYPE csvdrop_compensations_total counter
csvdrop_compensations_total{result="error",step="abort_session"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "csvdrop_compensations_total"))
}

func TestHTTPMetrics_Observe(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)

	// Act
	httpMetrics.Observe("POST", "/api/v1/upload/{fileId}", 200, 120*time.Millisecond)
	httpMetrics.Observe("POST", "/api/v1/upload/{fileId}", 200, 80*time.Millisecond)
	httpMetrics.Observe("GET", "/api/v1/files/{id}", 409, time.Millisecond)

	// Assert
	expected := `
# HELP csvdrop_http_requests_total HTTP requests served, by route and status
# TYPE csvdrop_http_requests_total counter
csvdrop_http_requests_total{method="GET",path="/api/v1/files/{id}",status="409"} 1
csvdrop_http_requests_total{method="POST",path="/api/v1/upload/{fileId}",status="200"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "csvdrop_http_requests_total"))
	count, err := testutil.GatherAndCount(reg, "csvdrop_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
