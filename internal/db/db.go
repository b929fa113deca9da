package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolSettings sizes the connection pool. Zero values keep the defaults.
type PoolSettings struct {
	MaxConns        int32
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
}

// DefaultPoolSettings suits the catalog and settings load: short reads with
// the catalog served from memory between reloads.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxConns:        8,
		MaxConnIdleTime: 5 * time.Minute,
		MaxConnLifetime: 30 * time.Minute,
	}
}

func (s PoolSettings) apply(cfg *pgxpool.Config) {
	def := DefaultPoolSettings()
	if s.MaxConns <= 0 {
		s.MaxConns = def.MaxConns
	}
	if s.MaxConnIdleTime <= 0 {
		s.MaxConnIdleTime = def.MaxConnIdleTime
	}
	if s.MaxConnLifetime <= 0 {
		s.MaxConnLifetime = def.MaxConnLifetime
	}
	cfg.MaxConns = s.MaxConns
	if cfg.MinConns > cfg.MaxConns {
		cfg.MinConns = cfg.MaxConns
	}
	cfg.MaxConnIdleTime = s.MaxConnIdleTime
	cfg.MaxConnLifetime = s.MaxConnLifetime
}

// PoolConfig parses dsn and applies s.
func PoolConfig(dsn string, s PoolSettings) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	s.apply(cfg)
	return cfg, nil
}

// Connect opens a pgx connection pool and verifies connectivity with a ping.
func Connect(ctx context.Context, dsn string, s PoolSettings) (*pgxpool.Pool, error) {
	cfg, err := PoolConfig(dsn, s)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}
