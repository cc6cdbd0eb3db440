package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/planhub/internal/auth"
	"github.com/geocoder89/planhub/internal/config"
	"github.com/geocoder89/planhub/internal/db"
	"github.com/geocoder89/planhub/internal/draft"
	httpx "github.com/geocoder89/planhub/internal/http"
	"github.com/geocoder89/planhub/internal/http/middlewares"
	"github.com/geocoder89/planhub/internal/observability"
	"github.com/geocoder89/planhub/internal/repo/memory"
	"github.com/geocoder89/planhub/internal/repo/postgres"
	"github.com/geocoder89/planhub/internal/wizard"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional, real deployments use the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	shutdownTracer, err := observability.InitTracer(context.Background(), "planhub-api", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracing disabled", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	deps := httpx.Deps{
		Log:      log,
		Cfg:      cfg,
		Prom:     prom,
		Registry: registry,
	}

	// persistence: postgres everywhere, in-memory fallback on a bare dev box

	var planner wizard.Planner

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		if cfg.Env != "dev" {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}

		log.Warn("db unavailable, using in-memory planner", "err", err)

		planner = memory.NewPlanner()
		deps.Locations = memory.NewLocationsRepo()

		users := memory.NewUsersRepo()
		deps.Users = users
		deps.AuthUsers = users
	} else {
		defer pool.Close()

		if err := db.EnsureAdminUser(context.Background(), pool, cfg); err != nil {
			log.Error("admin seed failed", "err", err)
			os.Exit(1)
		}

		planner = postgres.NewEventsRepo(pool, prom)

		deps.Pool = pool
		deps.Locations = postgres.NewLocationsRepo(pool, prom)

		users := postgres.NewUsersRepo(pool)
		deps.Users = users
		deps.AuthUsers = users
	}

	// draft storage: redis survives restarts, memory is per-process

	var stores wizard.StoreFactory

	switch cfg.DraftBackend {
	case "redis":
		rdb := draft.NewRedisClient(draft.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		stores = func(sessionID string) draft.Store {
			return draft.NewRedisStore(rdb, sessionID, cfg.SessionTTL)
		}

		deps.PingDraft = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return rdb.Ping(ctx).Err()
		}
	default:
		stores = func(string) draft.Store {
			return draft.NewMemoryStore()
		}
	}

	aggCfg := wizard.DefaultAggregatorConfig()
	aggCfg.ContingencyFactor = cfg.ContingencyFactor

	deps.Sessions = wizard.NewSessionManager(cfg.SessionTTL, stores, planner, aggCfg)

	jwtManager := auth.NewManager(cfg.JWTSecret, 1*time.Hour)
	deps.JWT = jwtManager
	deps.Auth = middlewares.NewAuthMiddleware(jwtManager)

	router := httpx.NewRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "drafts", cfg.DraftBackend)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
