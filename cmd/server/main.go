package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/learnquest/gamification-system/internal/api"
	"github.com/learnquest/gamification-system/internal/core/service"
	"github.com/learnquest/gamification-system/internal/infrastructure/config"
	"github.com/learnquest/gamification-system/internal/infrastructure/db/postgres"
	redisdb "github.com/learnquest/gamification-system/internal/infrastructure/db/redis"
	"github.com/learnquest/gamification-system/internal/infrastructure/queue"
	"github.com/learnquest/gamification-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{Service: "gamification-ledger"})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "gamification-ledger",
		Pretty:  cfg.Env == "development",
	})

	db, err := postgres.Connect(ctx, postgres.Config{
		URL:     cfg.Postgres.URL,
		Timeout: cfg.Postgres.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer db.Close()

	if cfg.SeedDemoData {
		if err := postgres.Seed(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("seeding demo data failed")
		}
		log.Info().Msg("demo data seeded")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	accounts := postgres.NewAccountRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	entitlements := postgres.NewEntitlementRepository(db)

	ledger := service.NewLedgerService(accounts, catalogRepo, entitlements, logger.Component("ledger"))
	catalog := service.NewCatalogService(catalogRepo, logger.Component("catalog"))
	ranking := service.NewRankingService(accounts, logger.Component("ranking"))
	auth := service.NewAuthService(accounts, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))

	dedup := redisdb.NewDedupChecker(rdb)
	dispatcher := queue.NewDispatcher(cfg.SettlementWorkers, ledger, dedup, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Deps{
		DB:         db,
		Redis:      rdb,
		JWTSecret:  cfg.JWTSecret,
		Auth:       auth,
		Catalog:    catalog,
		Ledger:     ledger,
		Ranking:    ranking,
		Dispatcher: dispatcher,
		Seed: func(ctx context.Context) error {
			return postgres.Seed(ctx, db)
		},
		Logger: logger.Component("api"),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
