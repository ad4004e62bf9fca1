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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fxdash/dashboard/internal/config"
	"github.com/fxdash/dashboard/internal/dashboard"
	"github.com/fxdash/dashboard/internal/metrics"
	"github.com/fxdash/dashboard/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		pg := store.NewPostgresStore(pool, cfg.DocumentName)
		if err := pg.Migrate(context.Background()); err != nil {
			slog.Error("database migration failed", "err", err)
			os.Exit(1)
		}
		st = pg
		slog.Info("connected to PostgreSQL", "document", cfg.DocumentName)
	} else {
		st = store.NewFileStore(cfg.DataFile, store.WithBackupOnSave(cfg.BackupOnSave))
		slog.Info("using file store", "path", cfg.DataFile, "backup_on_save", cfg.BackupOnSave)
	}

	// Wrap with Redis read-through cache if configured.
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		st = store.NewCachedStore(st, rdb, cfg.DocumentName, cfg.CacheTTL)
		slog.Info("Redis cache enabled", "ttl", cfg.CacheTTL.String())
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- WebSocket hub ---
	wsHub := dashboard.NewWSHub()
	go wsHub.Run()
	defer wsHub.Stop()

	// --- Dashboard service ---
	svc := dashboard.NewService(st, wsHub, dashboard.Options{
		AdminPassword: cfg.AdminPassword,
		SynthTrades:   cfg.SynthTrades,
		SynthSeed:     cfg.SynthSeed,
	})

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	err = svc.Load(loadCtx)
	cancelLoad()
	if err != nil {
		slog.Error("initial load failed", "err", err)
		os.Exit(1)
	}
	slog.Info("dataset loaded", "accounts", len(svc.Snapshot().Accounts))

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for frontend cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+dashboard.AdminPasswordHeader)
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"dashboard"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	// Document endpoints used by the static dashboard.
	r.Get("/data/accounts.json", svc.GetDataset)
	r.Post("/save-data", svc.SaveDataset)

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for dataset change notifications.
		r.Get("/ws", wsHub.HandleWS)

		// Account views.
		r.Get("/accounts", svc.ListAccounts)
		r.Get("/accounts/{index}", svc.GetAccount)
		r.Get("/accounts/{index}/metrics", svc.GetMetrics)
		r.Get("/accounts/{index}/series", svc.GetSeries)
		r.Get("/accounts/{index}/stats", svc.GetStats)
		r.Get("/accounts/{index}/analytics", svc.GetAnalytics)

		// Admin.
		r.Post("/admin/login", svc.AdminLogin)
		r.Post("/admin/commands", svc.ApplyCommand)
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("dashboard listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down dashboard...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("dashboard stopped")
}
