package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/example/retail-ledger/internal/bootstrap"
	"github.com/example/retail-ledger/internal/config"
)

// The ledger daemon serves gRPC and runs the pending-transfer expiry sweep.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start ledger", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.ServeGRPC(ctx) })
	g.Go(func() error { return app.ServeMetrics(ctx) })
	g.Go(func() error { return app.SweepPending(ctx) })
	g.Go(func() error { return app.Reconcile(ctx) })

	logger.Info("ledger service started", "env", cfg.Environment, "node_id", cfg.NodeID)
	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		app.Close()
		os.Exit(1)
	}
	logger.Info("ledger service stopped")
}
