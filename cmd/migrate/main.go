package main

import (
	"context"
	"os"

	"github.com/TechX-demo/easy-pay-cart/internal/config"
	"github.com/TechX-demo/easy-pay-cart/internal/db"
	"github.com/TechX-demo/easy-pay-cart/internal/logging"
	"github.com/TechX-demo/easy-pay-cart/internal/migrate"
)

func main() {
	logger := logging.New("migrate", os.Getenv("LOG_LEVEL"), os.Stdout)
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if cfg.DBConnString == "" {
		logger.Fatal().Msg("DB_DSN is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.PoolSettings())
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	logger.Info().Msg("migrations applied")
}
