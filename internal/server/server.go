// Package server boots the Ostaa API: configuration, MongoDB, the
// optional Redis cache, file storage, and the HTTP listener with
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cpbyrne/ostaa/config"
	"github.com/cpbyrne/ostaa/internal/kernel"
	"github.com/cpbyrne/ostaa/pkg/cache"
	"github.com/cpbyrne/ostaa/pkg/database"
	"github.com/cpbyrne/ostaa/pkg/logger"
	"github.com/cpbyrne/ostaa/pkg/storage"
)

// Start runs the API server and blocks until SIGINT/SIGTERM or a fatal
// listener error.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if err := database.Connect(); err != nil {
		return err
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, item cache disabled", "error", err)
	}

	storage.Connect()
	registerListeners()

	// Optionally fan log records out to a capped Mongo collection in
	// addition to stderr.
	var logSink *logger.MongoHandler
	if config.LogMongoEnabled() {
		logSink = logger.NewMongoHandler(logger.L.Handler(), database.Collection(config.LogMongoCollection()))
		logger.SetHandler(logSink)
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           kernel.NewHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ostaa listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if logSink != nil {
		logSink.Close()
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Error("mongo disconnect", "error", err)
	}
	return nil
}
