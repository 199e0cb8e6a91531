// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/innitec-lgtm/SupportCenter-v1/cliparse"
	"github.com/innitec-lgtm/SupportCenter-v1/db"
	"github.com/innitec-lgtm/SupportCenter-v1/handlers"
	"github.com/innitec-lgtm/SupportCenter-v1/realtime"
	"github.com/innitec-lgtm/SupportCenter-v1/router"
	"github.com/innitec-lgtm/SupportCenter-v1/store"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	// Remote store, if configured
	remote, dbConn, err := openRemote(cfg)
	if err != nil {
		slog.Error("remote store setup failed", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	if dbConn != nil {
		defer dbConn.Close()
	}

	files, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		if remote == nil {
			slog.Error("local data directory unavailable", "dir", cfg.DataDir, "error", err)
			os.Exit(1)
		}
		slog.Warn("local data directory unavailable, using remote store only", "dir", cfg.DataDir, "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub()
	go hub.Run(ctx)

	st, err := store.New(store.NewBackend(remote, files, cfg.RemoteTimeout), hub)
	if err != nil {
		slog.Error("store setup failed", "error", err)
		os.Exit(1)
	}

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(st, hub, cfg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening",
		"port", cfg.Port,
		"version", handlers.AppVersion,
		"backend", cfg.Backend,
		"data_dir", cfg.DataDir,
		"env", cfg.Env,
	)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// setupLogging installs a JSON handler in production and a text handler
// with debug output in development
func setupLogging(cfg cliparse.Config) {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}

// openRemote connects the configured remote store. Both results are nil
// when the service runs on local files only.
func openRemote(cfg cliparse.Config) (store.Remote, *sql.DB, error) {
	switch cfg.Backend {
	case cliparse.BackendSQL:
		conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sqlStore, err := store.NewSQLStore(conn)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		slog.Info("Database schema ready", "type", cfg.DatabaseType)
		return sqlStore, conn, nil

	case cliparse.BackendREST:
		client := &http.Client{Timeout: cfg.RemoteTimeout}
		slog.Info("Using KV REST store", "url", cfg.KVRestURL)
		return store.NewRESTStore(cfg.KVRestURL, cfg.KVRestToken, client), nil, nil
	}

	slog.Warn("no remote store configured, data is kept in local files only", "dir", cfg.DataDir)
	return nil, nil, nil
}
