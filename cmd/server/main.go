// Command truetrace-server serves the supply chain provenance API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"truetrace/internal/platform/config"
	"truetrace/internal/platform/httpserver"
	"truetrace/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.FromConfig(cfg.Log, "truetrace"))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server shutdown complete")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	app, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close(log)

	srv, err := httpserver.New(httpserver.Config{
		ListenAddr:               cfg.Server.Addr,
		MetricsAddr:              cfg.Server.MetricsAddr,
		AdminToken:               cfg.Server.AdminToken,
		Log:                      log,
		DrainDuration:            cfg.Server.DrainDuration,
		GracefulShutdownDuration: cfg.Server.ShutdownTimeout,
		ReadTimeout:              cfg.Server.ReadTimeout,
		WriteTimeout:             cfg.Server.WriteTimeout,
	}, app.router, app.checks)
	if err != nil {
		return err
	}

	served := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(served)
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		// requests still draining may sign through the wallet
		<-served
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return stopPairings(shutdownCtx, app.wallet, app.auth)
	})
	return g.Wait()
}

type closer interface {
	Close() error
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// stopPairings closes the wallet, which fails every pending pairing, then
// waits for the background pairing waits of connect-wallet to return.
func stopPairings(ctx context.Context, w closer, waits shutdowner) error {
	if err := w.Close(); err != nil {
		slog.WarnContext(ctx, "wallet close failed", "error", err)
	}
	if err := waits.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
