package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/repository"
	"github.com/mamadbah2/feedlot/internal/repository/mongodb"
	"github.com/mamadbah2/feedlot/internal/repository/postgres"
	"github.com/mamadbah2/feedlot/internal/repository/sheets"
	"github.com/mamadbah2/feedlot/internal/scheduler"
	"github.com/mamadbah2/feedlot/internal/server/handlers"
	"github.com/mamadbah2/feedlot/internal/server/router"
	"github.com/mamadbah2/feedlot/internal/service/accounting"
	"github.com/mamadbah2/feedlot/internal/service/digest"
	whatsappclient "github.com/mamadbah2/feedlot/pkg/clients/whatsapp"
	"github.com/mamadbah2/feedlot/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	location, err := cfg.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := openStore(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init record store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close record store", zap.Error(err))
		}
	}()

	accountingSvc := accounting.NewService(store, location, baseLogger.Named("svc.accounting"))

	// Left nil when WhatsApp is not configured so handlers and the scheduler skip delivery.
	var digestSender *digest.Service
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		digestSender = digest.NewService(accountingSvc, whatsClient, cfg.WhatsApp.Recipient, cfg.Projection.Params(), baseLogger.Named("svc.digest"))
		baseLogger.Info("whatsapp digest delivery enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, digest delivery disabled")
	}

	var handlerDigest handlers.DigestSender
	var schedDigest scheduler.DigestSender
	if digestSender != nil {
		handlerDigest = digestSender
		schedDigest = digestSender
	}

	accountingHandler := handlers.NewAccountingHandler(accountingSvc, handlerDigest, baseLogger.Named("handlers.accounting"))
	engine := router.New(accountingHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(ctx, cfg.Scheduler, cfg.Farms.IDs, location, accountingSvc, schedDigest, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch cfg.Store.Backend {
	case config.BackendMongoDB:
		repo, err := mongodb.NewMongoDBRepository(initCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, log.Named("repo.mongodb"))
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureIndexes(initCtx); err != nil {
			_ = repo.Close(context.Background())
			return nil, err
		}
		return repo, nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(initCtx, cfg.Postgres.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(initCtx, pool, cfg.Postgres.SchemaPath); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewStore(pool, log.Named("repo.postgres")), nil

	case config.BackendSheets:
		// The client keeps ctx for token refresh, so it must outlive initCtx.
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, log.Named("repo.sheets"))
		if err != nil {
			return nil, err
		}
		return sheets.NewStore(sheetsRepo, log.Named("repo.sheets")), nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}
