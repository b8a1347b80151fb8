// Package main starts the replay engine HTTP daemon: board replays,
// recording verification, seed scanning with a SQLite run archive, and
// the leaderboard, served on localhost.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MJE43/replay2048-go/internal/api"
	"github.com/MJE43/replay2048-go/internal/config"
	"github.com/MJE43/replay2048-go/internal/scores"
	"github.com/MJE43/replay2048-go/internal/store"
	"github.com/MJE43/replay2048-go/internal/version"
)

func main() {
	logger := log.New(os.Stdout, "[REPLAYD] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config_error err=%v", err)
	}

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		logger.Fatalf("db_open_error path=%s err=%v", cfg.DBPath, err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatalf("db_migrate_error path=%s err=%v", cfg.DBPath, err)
	}

	scoreStore := scores.NewStore(cfg.ScoresPath)
	if err := scoreStore.Load(); err != nil {
		// Serve with an empty board rather than refusing to start.
		logger.Printf("scores_load_failed path=%s err=%v", cfg.ScoresPath, err)
	}

	server := api.NewServer(db, scoreStore)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf(
			"server_starting addr=%s engine_version=%s db=%s scores=%s",
			cfg.Addr, version.Engine, cfg.DBPath, cfg.ScoresPath,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Fatalf("server_failed err=%v", err)
	case <-ctx.Done():
	}

	logger.Printf("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown_error err=%v", err)
	}
	logger.Printf("server_stopped")
}
