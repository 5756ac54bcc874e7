package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vipul43/yatco-sync/internal/config"
	"github.com/vipul43/yatco-sync/internal/database"
	"github.com/vipul43/yatco-sync/internal/httpapi"
	"github.com/vipul43/yatco-sync/internal/lock"
	"github.com/vipul43/yatco-sync/internal/logger"
	"github.com/vipul43/yatco-sync/internal/normalizer"
	"github.com/vipul43/yatco-sync/internal/repository"
	"github.com/vipul43/yatco-sync/internal/secrets"
	"github.com/vipul43/yatco-sync/internal/service"
	"github.com/vipul43/yatco-sync/internal/store"
	"github.com/vipul43/yatco-sync/internal/watcher"
	"github.com/vipul43/yatco-sync/internal/yatco"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "set-token" {
		if err := setToken(os.Args[2:]); err != nil {
			log.Fatalf("Failed to store token: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("Application error", zap.Error(err))
	}
}

// setToken stores the API token in the OS keychain: set-token <token> [account]
func setToken(args []string) error {
	if len(args) < 1 || args[0] == "" {
		return errors.New("usage: yatco-sync set-token <token> [account]")
	}
	account := "default"
	if len(args) > 1 {
		account = args[1]
	}
	if err := secrets.SetToken(account, args[0]); err != nil {
		return err
	}
	fmt.Printf("Token stored in keychain for account %q\n", account)
	return nil
}

func run(cfg *config.Config, zl *zap.Logger) error {
	var (
		db      *database.DB
		kv      store.Store
		vessels service.VesselRepository
		lookup  service.VesselLookup
		runs    service.SyncRunRecorder
		history httpapi.RunHistory
		lister  httpapi.VesselLister
	)

	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		zl.Info("Database connected successfully")

		zl.Info("Running database migrations...")
		if err := database.RunMigrations(db); err != nil {
			return err
		}
		zl.Info("Migrations completed successfully")

		vesselRepo := repository.NewVesselRepository(db.Gorm)
		runRepo := repository.NewSyncRunRepository(db.SQL)
		vessels, lookup, lister = vesselRepo, vesselRepo, vesselRepo
		runs, history = runRepo, runRepo
	}

	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		kvRepo := repository.NewKVRepository(db.Gorm)
		if n, err := kvRepo.PurgeExpired(context.Background()); err != nil {
			zl.Warn("Failed to purge expired cache entries", zap.Error(err))
		} else if n > 0 {
			zl.Info("Purged expired cache entries", zap.Int64("count", n))
		}
		kv = kvRepo
	case config.StoreBackendSQLite:
		s, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer s.Close()
		kv = s
	default:
		kv = store.NewMemoryStore()
	}
	zl.Info("Cache store ready", zap.String("backend", cfg.StoreBackend))

	client := yatco.NewClient(cfg.YatcoBaseURL, cfg.YatcoToken, cfg.RequestTimeout)
	client.SetRateLimit(cfg.RateLimit, cfg.RateBurst)

	opts := service.DefaultSyncOptions()
	opts.BatchSize = cfg.BatchSize
	opts.MaxVessels = cfg.MaxVessels
	opts.CacheTTL = cfg.CacheTTL
	opts.IDListTTL = cfg.IDListTTL
	opts.VesselTTL = cfg.VesselTTL
	opts.StaleAfter = cfg.StaleAfter

	runLock := lock.New(cfg.LockFile)
	zl.Info("Sync lock configured", zap.String("path", runLock.Path()))

	stats := service.NewStatsTracker(kv)
	runner := service.NewSyncRunner(
		client,
		normalizer.New(cfg.ListingBaseURL),
		vessels,
		runs,
		kv,
		stats,
		runLock,
		opts,
		zl,
	)
	checker := service.NewStatusChecker(client, lookup, kv, cfg.IDListTTL)

	w, err := watcher.New(runner, cfg.SyncSchedule, cfg.SyncMode, zl)
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(runner, w, stats, checker, history, lister)
	app := httpapi.NewServer(handler, zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := w.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		zl.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		return app.Listen(cfg.HTTPAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		return app.ShutdownWithTimeout(time.Duration(cfg.ShutdownTimeout) * time.Second)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- g.Wait()
	}()

	select {
	case <-ctx.Done():
		zl.Info("Shutdown signal received")

		// a run in progress saves its checkpoint before returning
		select {
		case <-time.After(time.Duration(cfg.ShutdownTimeout) * time.Second):
			zl.Warn("Shutdown timeout exceeded")
		case err := <-errChan:
			if err != nil {
				zl.Error("Shutdown error", zap.Error(err))
			}
		}

		zl.Info("Application stopped")
		return nil

	case err := <-errChan:
		return err
	}
}
