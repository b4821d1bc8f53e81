package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_CountsByLabel(t *testing.T) {
	c := NewCollector(nil)

	c.ObserveTransfer("NEFT", "SUCCESS", 10*time.Millisecond)
	c.ObserveTransfer("NEFT", "SUCCESS", 5*time.Millisecond)
	c.ObserveTransfer("RTGS", "INVALID_AMOUNT_FOR_METHOD", time.Millisecond)
	c.Compensation(true)
	c.Compensation(false)
	c.ManualReview()
	c.Expired(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.transfers.WithLabelValues("NEFT", "SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transfers.WithLabelValues("RTGS", "INVALID_AMOUNT_FOR_METHOD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.compensations.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.manualReviews))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.expired))
}

func TestCollector_Reconciled(t *testing.T) {
	c := NewCollector(nil)

	c.Reconciled(12, nil)
	c.Reconciled(12, map[string]int{"balance_consistency": 2, "double_entry": 1})

	assert.Equal(t, 12.0, testutil.ToFloat64(c.driftAccounts))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.driftFailures.WithLabelValues("balance_consistency")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.driftFailures.WithLabelValues("double_entry")))
	assert.Greater(t, testutil.ToFloat64(c.lastReconcile), 0.0)
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(nil)
	c.ManualReview()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ledger_manual_review_total 1")
}
