// Package server runs the brewhouse process: it opens the store, cache and
// image disk, serves HTTP (and gRPC when GRPC_PORT is set) and shuts
// everything down on SIGINT or SIGTERM.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/brewhouse/config"
	"github.com/shashiranjanraj/brewhouse/internal/kernel"
	"github.com/shashiranjanraj/brewhouse/pkg/cache"
	"github.com/shashiranjanraj/brewhouse/pkg/database"
	grpcserver "github.com/shashiranjanraj/brewhouse/pkg/grpc"
	"github.com/shashiranjanraj/brewhouse/pkg/logger"
	"github.com/shashiranjanraj/brewhouse/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

// Start runs until ctx is cancelled or a termination signal arrives.
func Start(ctx context.Context, cfg config.Config) error {
	closeLog, err := logger.Setup(cfg)
	if err != nil {
		logger.Warn("log sink disabled", "error", err)
	}
	defer closeLog()

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	rc, err := cache.Connect(ctx, cfg)
	if err != nil {
		logger.Warn("recipe cache disabled", "error", err)
	}
	defer rc.Close()

	disk, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}

	k, err := kernel.NewHTTPKernel(kernel.Deps{Config: cfg, DB: db, Cache: rc, Disk: disk})
	if err != nil {
		return err
	}
	defer k.Shutdown()

	if cfg.GRPCPort != "" {
		gs, err := grpcserver.Start(cfg.GRPCPort, func(ctx context.Context) error {
			return database.Ping(ctx, db)
		})
		if err != nil {
			return err
		}
		defer grpcserver.Stop(gs)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("brewhouse listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
