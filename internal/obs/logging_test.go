package obs_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tour-inventory/internal/obs"
)

func TestRequestLoggerRecordsChannel(t *testing.T) {
	var buf bytes.Buffer
	handler := obs.RequestLogger{Logger: zerolog.New(&buf)}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
	req.Header.Set(obs.ChannelHeader, "b2b")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	require.Contains(t, line, `"channel":"b2b"`)
	require.Contains(t, line, `"status":201`)
	require.Contains(t, line, `"route":"/api/v1/quotes"`)
	require.Contains(t, line, `"message":"http_request"`)
}

func TestRequestLoggerPrefersContextChannel(t *testing.T) {
	var buf bytes.Buffer
	handler := obs.SalesChannelMiddleware(obs.RequestLogger{Logger: zerolog.New(&buf)}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pools/profit", nil)
	req.Header.Set(obs.ChannelHeader, "  web  ")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Contains(t, buf.String(), `"channel":"web"`)
}

func TestParseBucketsCSV(t *testing.T) {
	require.Equal(t, []float64{5, 50}, obs.ParseBucketsCSV(" 5, abc, -1, 50 "))
	require.Nil(t, obs.ParseBucketsCSV(""))
	require.Equal(t, "none", obs.ChannelLabel("  "))
	require.Equal(t, "b2c", obs.ChannelLabel("b2c"))
}

func TestDomainMetricsRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("tours", reg)
	obs.MustRegisterDomainMetrics("tours", reg)

	require.NotNil(t, obs.QuotesTotal)
	before := testutil.ToFloat64(obs.QuotesTotal.WithLabelValues("web", "ok"))
	obs.QuotesTotal.WithLabelValues("web", "ok").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(obs.QuotesTotal.WithLabelValues("web", "ok")))
}
