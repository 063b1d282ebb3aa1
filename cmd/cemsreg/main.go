// cemsreg is the CEMS registration portal server: industry registration,
// the stack/instrument wizard, and the administrative listing, backed by a
// single SQLite database.
package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cemsreg/config"
	"cemsreg/dbopen"
	"cemsreg/observability"
	"cemsreg/registry"
	"cemsreg/shield"
	"cemsreg/web"
)

func main() {
	configPath := flag.String("config", os.Getenv("CEMSREG_CONFIG"), "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Derive a fixed-length JWT key from the configured secret.
	secretHash := sha256.Sum256([]byte(cfg.SessionSecret))
	jwtSecret := secretHash[:]

	db, err := dbopen.Open(cfg.DBPath,
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(registry.Schema),
		dbopen.WithSchema(observability.EventSchema),
	)
	if err != nil {
		slog.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := registry.NewStore(db)

	if cfg.Admin.InitialPassword != "" {
		created, err := store.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.InitialPassword)
		if err != nil {
			slog.Error("seed admin", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("admin account seeded", "email", cfg.Admin.Email)
		}
	}

	events := observability.NewEventLogger(db)
	defer events.Close()

	srv, err := web.NewServer(store, events, web.Config{
		Secret:     jwtSecret,
		SessionTTL: cfg.SessionTTL,
		Limits: shield.Limits{
			MaxBodyBytes: cfg.MaxBodyBytes,
			MaxRequests:  cfg.RateLimit.MaxRequests,
			Window:       cfg.RateLimit.Window,
		},
		Done: ctx.Done(),
	}, logger)
	if err != nil {
		slog.Error("build server", "error", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", cfg.Addr, "db", cfg.DBPath)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
