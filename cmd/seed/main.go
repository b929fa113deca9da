package main

import (
	"context"
	"os"

	"github.com/TechX-demo/easy-pay-cart/internal/config"
	"github.com/TechX-demo/easy-pay-cart/internal/db"
	"github.com/TechX-demo/easy-pay-cart/internal/logging"
	productrepo "github.com/TechX-demo/easy-pay-cart/internal/repository/product"
	"github.com/TechX-demo/easy-pay-cart/internal/seed"
)

func main() {
	logger := logging.New("seed", os.Getenv("LOG_LEVEL"), os.Stdout)
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

	if err := seed.Apply(ctx, productrepo.NewPostgres(pool, &logger)); err != nil {
		logger.Fatal().Err(err).Msg("seed apply")
	}

	logger.Info().Int("products", len(seed.Products())).Msg("seed applied")
}
