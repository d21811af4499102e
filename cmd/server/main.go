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

	"universe-sim/internal/middleware"
	"universe-sim/internal/run"
	"universe-sim/internal/server"
	"universe-sim/internal/shared/config"
	"universe-sim/internal/shared/database"
	"universe-sim/internal/shared/logger"
	"universe-sim/internal/shared/redis"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init()

	if err := runServer(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func runServer() error {
	cfg := config.GlobalConfig
	log := slog.With("component", "main")

	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	var store run.Store
	if db != nil {
		if err := db.RunMigrations(ctx, os.DirFS(cfg.Database.MigrationsPath)); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		store = run.NewRepository(db.DB, slog.Default())
	} else {
		store = run.NewMemoryStore(slog.Default())
	}

	rdb, err := redis.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error("Failed to close Redis", "error", err)
		}
	}()

	var cache *run.Cache
	if rdb != nil {
		cache = run.NewCache(rdb.Client, cfg.Redis.CacheTTL, slog.Default())
	}

	runService := run.NewService(store, cache, run.OptionsFromConfig(cfg.Simulation), slog.Default())
	log.Info("Services initialized", "database", db.Status(ctx), "redis", rdb.Status(ctx))

	routes := server.NewRoutes(
		db, rdb,
		runService,
		run.DefaultRequest(cfg.Simulation),
		middleware.NewAuthenticator(cfg.Auth.JWTSecret),
		middleware.NewRateLimiter(ctx, cfg.RateLimit),
		slog.Default(),
	)
	cors := middleware.NewCORS(cfg.Frontend)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      cors.Middleware(routes.Setup()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			"port", cfg.Server.Port,
			"url", cfg.Server.URL,
			"environment", cfg.Server.Environment,
		)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
