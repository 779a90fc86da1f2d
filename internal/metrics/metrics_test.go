package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("host", 200, 150*time.Millisecond)
	m.ObserveRequest("host", 200, 50*time.Millisecond)
	m.ObserveRequest("search", 403, 10*time.Millisecond)
	m.ObserveRequest("search", 0, time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.apiRequestsTotal.WithLabelValues("host", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.apiRequestsTotal.WithLabelValues("search", "403")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.apiRequestsTotal.WithLabelValues("search", "0")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.apiRequestDuration))
}

func TestRecordCommandAndResults(t *testing.T) {
	m := NewMetrics()

	m.RecordCommand("search", nil)
	m.RecordCommand("search", errors.New("boom"))
	m.RecordResults("search", 5)
	m.RecordResults("search", 3)
	m.RecordAPIError("search", "status_403")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.commandsTotal.WithLabelValues("search", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.commandsTotal.WithLabelValues("search", "error")))
	assert.Equal(t, float64(8), testutil.ToFloat64(m.resultsReturned.WithLabelValues("search")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.apiRequestErrors.WithLabelValues("search", "status_403")))
}

func TestRecordDatabaseOperation(t *testing.T) {
	m := NewMetrics()

	m.RecordDatabaseOperation("record", time.Millisecond, nil)
	m.RecordDatabaseOperation("record", time.Millisecond, errors.New("locked"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.dbOperationsTotal.WithLabelValues("record", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.dbOperationsTotal.WithLabelValues("record", "error")))
}

func TestInstancesDoNotShareRegistry(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordCommand("host", nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(a.commandsTotal.WithLabelValues("host", "success")))
	assert.Equal(t, 0, testutil.CollectAndCount(b.commandsTotal))
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotPath = r.URL.Path
		gotBody = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewMetrics()
	m.RecordCommand("aggregate", nil)

	require.NoError(t, m.Push(context.Background(), server.URL, "censys_cli"))
	assert.Equal(t, "/metrics/job/censys_cli", gotPath)
	assert.True(t, strings.Contains(gotBody, "censys_cli_commands_total"), "pushed body should carry recorded metrics")
}

func TestPush_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewMetrics().Push(context.Background(), server.URL, "censys_cli")
	assert.Error(t, err)
}
