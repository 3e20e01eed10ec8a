package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/library-register/cmd/api/database"
	recordhttp "github.com/library-register/cmd/api/http"
	"github.com/library-register/cmd/api/inmemory"
	"github.com/library-register/cmd/api/notifications"
	"github.com/library-register/cmd/api/record"
)

func main() {
	err := run()
	if err != nil {
		slog.Error("library register stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var sinks []notifications.Notifier
	if cfg.NotificationsEnabled {
		sinks = append(sinks, notifications.NewNtfy(true, cfg.NotificationsTimeout, cfg.NotificationsURL, &http.Client{}))
	}
	banner := notifications.NewBanner(cfg.NoticeTTL, sinks...)
	defer banner.Close()

	serverCfg := recordhttp.ServerConfig{
		Port:           cfg.Port,
		RequestTimeout: cfg.RequestTimeout,
		SearchDebounce: cfg.SearchDebounce,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
	}
	recordService := record.NewService(repo, cfg.RestoreConcurrency)
	recordHandler, err := recordhttp.NewRecordHandler(recordService, banner, serverCfg)
	if err != nil {
		return fmt.Errorf("creating record handler: %w", err)
	}

	//create and init http server:
	server := recordhttp.NewServer(serverCfg, recordHandler)

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "starting server", "addr", server.Addr, "store", cfg.StoreDriver)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("unexpected http server error: %w", err)
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown error: %w", err)
	}
	slog.Info("graceful shutdown complete")
	return nil
}

/* Opens the configured store and brings its schema up to date. */
func openStore(ctx context.Context, cfg Config) (record.Repository, func(), error) {
	if cfg.StoreDriver == storeMemory {
		store, err := inmemory.NewInMemoryStore()
		if err != nil {
			return nil, nil, fmt.Errorf("creating in-memory store: %w", err)
		}
		return store, func() {}, nil
	}

	store, err := database.Open(ctx, database.Config{Driver: cfg.StoreDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting with db: %w", err)
	}

	if err := database.MigrationUp(store); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("migrating: %w", err)
	}

	closeStore := func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing db", "err", err)
		}
	}
	return store, closeStore, nil
}
