package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSettlementCountsByOutcome(t *testing.T) {
	m := New()
	m.RecordSettlement("success")
	m.RecordSettlement("success")
	m.RecordSettlement("conflict")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.settlements.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settlements.WithLabelValues("conflict")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordSettlement("success")
	m.RecordDeposit("success")
	m.RecordHTTPRequest("GET", "/contracts", "200", time.Millisecond)
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesLedgerMetrics(t *testing.T) {
	m := New()
	m.RecordDeposit("limit_exceeded")
	m.RecordHTTPRequest("POST", "/jobs/:id/pay", "412", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `ledger_deposits_total{outcome="limit_exceeded"} 1`))
	assert.True(t, strings.Contains(body, `ledger_http_requests_total{method="POST",path="/jobs/:id/pay",status="412"} 1`))
}
