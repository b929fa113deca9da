package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TechX-demo/easy-pay-cart/internal/config"
	"github.com/TechX-demo/easy-pay-cart/internal/db"
	"github.com/TechX-demo/easy-pay-cart/internal/httpserver"
	"github.com/TechX-demo/easy-pay-cart/internal/logging"
	"github.com/TechX-demo/easy-pay-cart/internal/payment"
	productrepo "github.com/TechX-demo/easy-pay-cart/internal/repository/product"
	"github.com/TechX-demo/easy-pay-cart/internal/repository/settings"
	"github.com/TechX-demo/easy-pay-cart/internal/seed"
	checkoutsvc "github.com/TechX-demo/easy-pay-cart/internal/service/checkout"
	productsvc "github.com/TechX-demo/easy-pay-cart/internal/service/product"
	sessionsvc "github.com/TechX-demo/easy-pay-cart/internal/service/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		boot := logging.New("api", "info", os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New("api", cfg.LogLevel, os.Stdout)

	ctx := context.Background()

	var (
		dbpool      *pgxpool.Pool
		catalogRepo productrepo.Repository
	)
	if cfg.DBConnString != "" {
		dbpool, err = db.Connect(ctx, cfg.DBConnString, cfg.PoolSettings())
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to db")
		}
		defer dbpool.Close()
		catalogRepo = productrepo.NewPostgres(dbpool, &logger)
	} else {
		logger.Info().Msg("DB_DSN not set, serving the demo catalog from memory")
		catalogRepo = productrepo.NewMemory(seed.Products())
	}

	catalog := productsvc.New(catalogRepo, &logger)
	if _, err := catalog.Reload(ctx); err != nil {
		logger.Fatal().Err(err).Msg("load catalog")
	}

	var (
		settingsRepo settings.Repository
		readyChecks  []httpserver.ReadinessCheck
	)
	switch cfg.SettingsBackend {
	case "postgres":
		settingsRepo = settings.NewPostgres(dbpool)
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		settingsRepo = settings.NewRedis(rdb, "storefront:settings")
		readyChecks = append(readyChecks, httpserver.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	default:
		settingsRepo = settings.NewMemory()
	}

	registry, err := payment.NewRegistry(settingsRepo, cfg.PaymentMethod, payment.DefaultBreakerSettings(), &logger,
		payment.WithDelay(cfg.PaymentDelay()))
	if err != nil {
		logger.Fatal().Err(err).Msg("init payment registry")
	}

	sessions := sessionsvc.NewManager(catalog, cfg.SessionTTL(), &logger)
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	go sessions.Run(bgCtx, time.Minute)
	if dbpool != nil && cfg.CatalogReload() > 0 {
		go catalog.Run(bgCtx, cfg.CatalogReload())
	}

	srv, err := httpserver.New(cfg.HTTPAddr, &logger, dbpool, httpserver.Deps{
		Catalog:     catalog,
		Sessions:    sessions,
		Checkout:    checkoutsvc.NewService(registry, &logger),
		Payments:    registry,
		CORSOrigins: cfg.AllowedOrigins(),
		ReadyChecks: readyChecks,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("settings", cfg.SettingsBackend).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}
