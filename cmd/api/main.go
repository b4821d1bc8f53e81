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
	g.Go(func() error { return app.ServeHTTP(ctx) })
	g.Go(func() error { return app.ServeMetrics(ctx) })

	logger.Info("ledger api gateway started", "env", cfg.Environment)
	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		app.Close()
		os.Exit(1)
	}
	logger.Info("ledger api gateway stopped")
}
