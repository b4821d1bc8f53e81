// Package bootstrap assembles the ledger and its surfaces from configuration.
package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/example/retail-ledger/internal/api"
	"github.com/example/retail-ledger/internal/config"
	"github.com/example/retail-ledger/internal/ids"
	"github.com/example/retail-ledger/internal/ledger"
	"github.com/example/retail-ledger/internal/lock"
	"github.com/example/retail-ledger/internal/metrics"
	"github.com/example/retail-ledger/internal/rpc"
	"github.com/example/retail-ledger/internal/security"
	"github.com/example/retail-ledger/pkg/audit"
)

const (
	auditRetain     = 1024
	shutdownTimeout = 10 * time.Second
)

// App owns every long-lived dependency of a ledger process.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *ledger.SQLStore
	Service   *ledger.Service
	Validator *ledger.Validator
	Audit     *audit.ChainLogger
	Metrics   *metrics.Collector

	redis       redis.UniversalClient
	rateLimiter *security.RedisTokenBucket
	admin       []netip.Prefix
	tls         *tls.Config
	closers     []func() error
}

// New opens storage, applies migrations and wires the ledger service. A failed
// New releases whatever it had acquired.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}
	if err := app.wire(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	if err := a.openStore(ctx); err != nil {
		return err
	}
	if err := a.Store.Migrate(ctx); err != nil {
		return err
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.redis = client
		a.closers = append(a.closers, client.Close)
	}

	sink, err := openAuditSink(cfg.AuditSink)
	if err != nil {
		return err
	}
	if c, ok := sink.(io.Closer); ok && sink != os.Stdout {
		a.closers = append(a.closers, c.Close)
	}
	a.Audit = audit.NewChainLogger(sink, auditRetain)
	a.Metrics = metrics.NewCollector(logger)

	mode, err := ledger.ParseAggregateMode(cfg.LimitAggregate)
	if err != nil {
		return err
	}
	alloc, err := ids.New(cfg.NodeID)
	if err != nil {
		return err
	}

	var locker ledger.Locker = lock.NewKeyed()
	if cfg.LockBackend == config.LockRedis {
		locker = lock.NewRedis(a.redis, lock.DefaultOptions(), logger)
	}

	a.Service, err = ledger.NewSQLService(a.Store, ledger.NewLimitPolicy(a.Store, cfg.Location(), mode), alloc, ledger.Dependencies{
		Locker:  locker,
		Audit:   a.Audit,
		Metrics: a.Metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	a.Validator = ledger.NewValidator(a.Store, a.Store)

	if cfg.RateLimitCapacity > 0 {
		a.rateLimiter = security.NewRedisTokenBucket(a.redis, "ledger_api", cfg.RateLimitCapacity, cfg.RateLimitRefillRate)
	}
	if a.admin, err = security.ParseCIDRAllowlist(cfg.AdminAllowCIDRs); err != nil {
		return fmt.Errorf("ADMIN_ALLOW_CIDRS: %w", err)
	}
	tlsFiles := security.TLSConfig{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile, CAFile: cfg.TLSCAFile}
	if tlsFiles.Enabled() {
		if a.tls, err = security.LoadServerTLSConfig(tlsFiles); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) openStore(ctx context.Context) error {
	url := a.Config.DatabaseURL
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		store, pool, err := ledger.OpenPostgres(ctx, url)
		if err != nil {
			return err
		}
		a.Store = store
		a.closers = append(a.closers, func() error { pool.Close(); return nil }, store.Close)
		return nil
	}
	store, err := ledger.OpenSQLite(strings.TrimPrefix(url, "sqlite://"))
	if err != nil {
		return err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)
	return nil
}

// openAuditSink maps AUDIT_SINK to a writer: empty or "stdout" streams to
// stdout, anything else is a file appended to.
func openAuditSink(sink string) (io.Writer, error) {
	if sink == "" || sink == "stdout" {
		return os.Stdout, nil
	}
	f, err := os.OpenFile(sink, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit sink: %w", err)
	}
	return f, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Ready pings the database and, when configured, Redis.
func (a *App) Ready(ctx context.Context) error {
	if err := a.Store.DB().PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (a *App) Router() (http.Handler, error) {
	return api.NewRouter(api.Dependencies{
		Logger:         a.Logger,
		Ledger:         a.Service,
		Auditor:        a.Audit,
		RateLimiter:    a.rateLimiter,
		AdminAllowlist: a.admin,
		MaxBodyBytes:   a.Config.MaxBodyBytes,
		Ready:          a.Ready,
	})
}

func (a *App) GRPCServer() *grpc.Server {
	return rpc.NewServer(a.Service, rpc.Options{Logger: a.Logger, Auditor: a.Audit, TLS: a.tls, Reflection: true})
}

// ServeHTTP runs the REST gateway until ctx is cancelled.
func (a *App) ServeHTTP(ctx context.Context) error {
	router, err := a.Router()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              a.Config.APIAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		TLSConfig:         a.tls,
	}
	a.Logger.Info("ledger api listening", "addr", srv.Addr, "tls", a.tls != nil)
	return serveUntilDone(ctx, srv, func() error {
		if a.tls != nil {
			return srv.ListenAndServeTLS("", "")
		}
		return srv.ListenAndServe()
	})
}

// ServeMetrics exposes /metrics until ctx is cancelled.
func (a *App) ServeMetrics(ctx context.Context) error {
	srv := a.Metrics.NewServer(a.Config.MetricsAddr)
	a.Logger.Info("metrics listening", "addr", srv.Addr)
	return serveUntilDone(ctx, srv, srv.ListenAndServe)
}

// ServeGRPC runs the gRPC service until ctx is cancelled.
func (a *App) ServeGRPC(ctx context.Context) error {
	lis, err := net.Listen("tcp", a.Config.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	srv := a.GRPCServer()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			srv.GracefulStop()
		case <-done:
		}
	}()
	defer close(done)

	a.Logger.Info("ledger grpc listening", "addr", lis.Addr().String(), "tls", a.tls != nil)
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// SweepPending fails stale PENDING rows every interval until ctx is cancelled.
func (a *App) SweepPending(ctx context.Context) error {
	ticker := time.NewTicker(a.Config.ExpirySweepTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := a.Service.ExpirePending(ctx, a.Config.PendingExpiry)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.Logger.Error("pending_sweep_failed", "error", err)
				continue
			}
			if n > 0 {
				a.Logger.Info("pending_sweep", "expired", n)
			}
		}
	}
}

// Reconcile re-validates every account and journal reference each interval
// until ctx is cancelled. A zero interval disables it.
func (a *App) Reconcile(ctx context.Context) error {
	if a.Config.ReconcileTick <= 0 {
		return nil
	}
	ticker := time.NewTicker(a.Config.ReconcileTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := a.ReconcileOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.Logger.Error("reconciliation_failed", "error", err)
			}
		}
	}
}

// ReconcileOnce runs a single reconciliation pass and records its outcome.
func (a *App) ReconcileOnce(ctx context.Context) (*ledger.Reconciliation, error) {
	numbers, err := a.Store.Numbers(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := a.Validator.ValidateLedger(ctx, numbers)
	if err != nil {
		return nil, err
	}
	failures := rec.FailuresByType()
	a.Metrics.Reconciled(rec.Accounts, failures)
	if len(rec.Failures) > 0 {
		for _, f := range rec.Failures {
			a.Logger.Warn("reconciliation_drift", "type", f.ValidationType, "account", f.AccountID, "transaction", f.TransactionID, "message", f.Message)
		}
	} else {
		a.Logger.Info("reconciliation", "accounts", rec.Accounts, "references", rec.References)
	}
	return rec, nil
}

func serveUntilDone(ctx context.Context, srv *http.Server, start func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
