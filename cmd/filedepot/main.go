// Command filedepot serves the object-storage contract over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filedepot/filedepot/internal/config"
	"github.com/filedepot/filedepot/internal/errs"
	"github.com/filedepot/filedepot/internal/filestore"
	"github.com/filedepot/filedepot/internal/filestore/disk"
	"github.com/filedepot/filedepot/internal/filestore/minio"
	"github.com/filedepot/filedepot/internal/logger"
	"github.com/filedepot/filedepot/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	boot := logger.New(logger.DefaultConfig())

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatalf("configuration failed: %v", err)
	}

	log := logger.New(cfg.Logger())
	logger.SetGlobal(log)

	// Backend construction may reach out to a remote store; bound it.
	initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := newStore(initCtx, cfg, log)
	initCancel()
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: server.New(store, server.Options{
			Provider:       cfg.Storage.Provider,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}, log).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.With().Str("addr", cfg.Addr()).Str("provider", cfg.Storage.Provider).Logger().Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

// newStore selects and constructs the storage backend from cfg.
func newStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (filestore.Store, error) {
	fc := cfg.Filestore()

	switch fc.Provider {
	case filestore.ProviderDisk:
		return disk.New(fc, log)
	case filestore.ProviderMinIO:
		return minio.New(ctx, fc, log)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown storage provider %q", fc.Provider))
	}
}
