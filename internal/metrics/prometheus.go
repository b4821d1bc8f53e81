// Package metrics exposes ledger counters and latencies to Prometheus.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry         *prometheus.Registry
	transfers        *prometheus.CounterVec
	transferDuration *prometheus.HistogramVec
	compensations    *prometheus.CounterVec
	manualReviews    prometheus.Counter
	reversals        *prometheus.CounterVec
	expired          prometheus.Counter
	driftFailures    *prometheus.CounterVec
	driftAccounts    prometheus.Gauge
	lastReconcile    prometheus.Gauge
	logger           *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transfers_total",
			Help: "Transfer requests by result code",
		}, []string{"method", "code"}),
		transferDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_transfer_duration_seconds",
			Help:    "Time taken to process a transfer request",
			Buckets: prometheus.DefBuckets,
		}, []string{"code"}),
		compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_compensations_total",
			Help: "Compensating credits issued after a failed credit leg",
		}, []string{"outcome"}),
		manualReviews: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_manual_review_total",
			Help: "Transfers left needing manual review after compensation failed",
		}),
		reversals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_reversals_total",
			Help: "Reversal requests by outcome",
		}, []string{"outcome"}),
		expired: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_pending_expired_total",
			Help: "Pending transactions failed by the expiry sweep",
		}),
		driftFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_reconciliation_failures_total",
			Help: "Failed reconciliation checks by validation type",
		}, []string{"type"}),
		driftAccounts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_reconciliation_accounts",
			Help: "Accounts checked by the latest reconciliation run",
		}),
		lastReconcile: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_reconciliation_last_run_timestamp_seconds",
			Help: "Unix time the latest reconciliation run finished",
		}),
		logger: logger,
	}
}

func (c *Collector) ObserveTransfer(method, code string, d time.Duration) {
	c.transfers.WithLabelValues(method, code).Inc()
	c.transferDuration.WithLabelValues(code).Observe(d.Seconds())
}

func (c *Collector) Compensation(ok bool) {
	outcome := "succeeded"
	if !ok {
		outcome = "failed"
	}
	c.compensations.WithLabelValues(outcome).Inc()
}

func (c *Collector) ManualReview() {
	c.manualReviews.Inc()
}

func (c *Collector) Reversal(ok bool) {
	outcome := "succeeded"
	if !ok {
		outcome = "rejected"
	}
	c.reversals.WithLabelValues(outcome).Inc()
}

func (c *Collector) Expired(n int) {
	c.expired.Add(float64(n))
}

// Reconciled records one reconciliation run.
func (c *Collector) Reconciled(accounts int, failures map[string]int) {
	c.driftAccounts.Set(float64(accounts))
	for typ, n := range failures {
		c.driftFailures.WithLabelValues(typ).Add(float64(n))
	}
	c.lastReconcile.SetToCurrentTime()
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// NewServer returns an unstarted HTTP server exposing /metrics.
func (c *Collector) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
