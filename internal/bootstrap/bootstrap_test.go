package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/retail-ledger/internal/config"
	"github.com/example/retail-ledger/internal/ledger"
	"github.com/example/retail-ledger/pkg/audit"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:     "test",
		DatabaseURL:     "sqlite://" + filepath.Join(t.TempDir(), "ledger.db"),
		AuditSink:       filepath.Join(t.TempDir(), "audit.jsonl"),
		NodeID:          9,
		Timezone:        "UTC",
		LimitAggregate:  "debit-side",
		LockBackend:     config.LockMemory,
		PendingExpiry:   time.Hour,
		ExpirySweepTick: 10 * time.Millisecond,
		MaxBodyBytes:    1 << 16,
	}
}

func openPair(t *testing.T, svc *ledger.Service) (string, string) {
	t.Helper()
	ctx := context.Background()
	a, _, err := svc.OpenAccount(ctx, ledger.OpenAccountRequest{OwnerID: "C1", Type: "SAVINGS", InitialDeposit: decimal.NewFromInt(10_000)})
	require.NoError(t, err)
	b, _, err := svc.OpenAccount(ctx, ledger.OpenAccountRequest{OwnerID: "C2", Type: "SAVINGS", InitialDeposit: decimal.NewFromInt(2_000)})
	require.NoError(t, err)
	return a.Number, b.Number
}

func TestNewWiresSQLiteAndAuditFile(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	app, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, app.Ready(ctx))

	a, b := openPair(t, app.Service)
	res, err := app.Service.Transfer(ctx, ledger.TransferRequest{From: a, To: b, Amount: decimal.NewFromInt(100), Method: "NEFT"})
	require.NoError(t, err)
	require.True(t, res.OK(), res.Reason)
	assert.True(t, ledger.Valid(app.Validator.ComprehensiveValidation(ctx, a)))

	router, err := app.Router()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, app.Close())

	f, err := os.Open(cfg.AuditSink)
	require.NoError(t, err)
	defer f.Close()
	segs, err := audit.ReadSegments(f)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.True(t, audit.VerifySegment(segs[0]))
	assert.NotEmpty(t, segs[0].Entries)
}

func TestNewWithRedisLocksAndRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.LockBackend = config.LockRedis
	cfg.RedisAddr = mr.Addr()
	cfg.RateLimitCapacity = 5
	cfg.RateLimitRefillRate = 1
	cfg.AdminAllowCIDRs = "10.0.0.0/8"
	ctx := context.Background()

	app, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	require.NoError(t, app.Ready(ctx))

	a, b := openPair(t, app.Service)
	res, err := app.Service.Transfer(ctx, ledger.TransferRequest{From: a, To: b, Amount: decimal.NewFromInt(100), Method: "IMPS"})
	require.NoError(t, err)
	assert.True(t, res.OK(), res.Reason)

	mr.SetError("LOADING")
	assert.Error(t, app.Ready(ctx))
}

func TestNewRejectsBadAllowlist(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminAllowCIDRs = "not-an-ip"
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestSweepPendingExpiresStaleRows(t *testing.T) {
	cfg := testConfig(t)
	cfg.PendingExpiry = time.Nanosecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	a, b := openPair(t, app.Service)
	res, err := app.Service.SubmitPending(ctx, ledger.TransferRequest{From: a, To: b, Amount: decimal.NewFromInt(10), Method: "NEFT"})
	require.NoError(t, err)
	require.True(t, res.OK(), res.Reason)

	done := make(chan error, 1)
	go func() { done <- app.SweepPending(ctx) }()

	require.Eventually(t, func() bool {
		row, err := app.Service.Transaction(context.Background(), res.TransactionIDs[0])
		return err == nil && row.Status == ledger.StatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestReconcileOnceCountsDrift(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	app, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	a, b := openPair(t, app.Service)
	res, err := app.Service.Transfer(ctx, ledger.TransferRequest{From: a, To: b, Amount: decimal.NewFromInt(250), Method: "NEFT"})
	require.NoError(t, err)
	require.True(t, res.OK(), res.Reason)

	rec, err := app.ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Accounts)
	assert.Empty(t, rec.Failures)

	// a balance change with no journal row behind it
	_, err = app.Store.Credit(ctx, a, decimal.NewFromInt(1))
	require.NoError(t, err)
	rec, err = app.ReconcileOnce(ctx)
	require.NoError(t, err)
	require.Len(t, rec.Failures, 1)
	assert.Equal(t, a, rec.Failures[0].AccountID)

	scrape := httptest.NewRecorder()
	app.Metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	assert.Contains(t, body, `ledger_reconciliation_failures_total{type="balance_consistency"} 1`)
	assert.Contains(t, body, "ledger_reconciliation_accounts 2")
}

func TestReconcileDisabledWithZeroInterval(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReconcileTick = 0
	app, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.NoError(t, app.Reconcile(context.Background()))
}

func TestGRPCServerRegistersReflection(t *testing.T) {
	app, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	info := app.GRPCServer().GetServiceInfo()
	assert.Contains(t, info, "ledger.v1.Ledger")
	assert.Contains(t, info, "grpc.reflection.v1alpha.ServerReflection")
}
