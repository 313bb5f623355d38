package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()

	a.OrdersCreated.Inc()
	a.PaymentsRecorded.WithLabelValues("cash").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.OrdersCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.OrdersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.PaymentsRecorded.WithLabelValues("cash")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.StockTransactions.WithLabelValues("in").Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `stock_transactions_total{type="in"} 3`)
	assert.Contains(t, string(body), "go_goroutines")
}
