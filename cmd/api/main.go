package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baharkarakas/maverick-bank/internal/api"
	"github.com/baharkarakas/maverick-bank/internal/auth"
	"github.com/baharkarakas/maverick-bank/internal/config"
	"github.com/baharkarakas/maverick-bank/internal/db"
	"github.com/baharkarakas/maverick-bank/internal/logger"
	"github.com/baharkarakas/maverick-bank/internal/metrics"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
	"github.com/baharkarakas/maverick-bank/internal/repository/memory"
	"github.com/baharkarakas/maverick-bank/internal/repository/postgres"
	"github.com/baharkarakas/maverick-bank/internal/services"
	"github.com/baharkarakas/maverick-bank/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("exit", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	wp := worker.NewPool(cfg.WorkerCount)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	users := services.NewUserService(store, tm, log)
	if err := users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:       cfg,
		Tokens:    tm,
		Users:     users,
		Customers: services.NewCustomerService(store, log),
		Processor: services.NewTransactionProcessor(store,
			services.WithLogger(log),
			services.WithAuditPool(wp),
		),
		Query:   services.NewTransactionQueryService(store.Repos().Transactions, services.WithStrictEmpty(cfg.StrictEmptyLedger)),
		Lookups: services.NewLookupService(store.Repos().Lookups),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "port", cfg.HTTPPort, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Store, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store, data is lost on exit")
		return memory.New(), func() {}, nil
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return postgres.NewStore(pool, cfg.TxMaxRetries), pool.Close, nil
}
