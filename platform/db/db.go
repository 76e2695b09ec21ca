// Package db owns the Postgres pool, migrations and driver error mapping.
package db

import (
	"context"
	"fmt"

	"ngo_erp_backend/platform/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig parses the connection URL and applies the configured pool sizing.
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	if n := cfg.GetDBMaxConns(); n > 0 {
		poolConfig.MaxConns = n
	}
	if n := cfg.GetDBMinConns(); n > 0 {
		poolConfig.MinConns = n
	}
	if d := cfg.GetDBMaxConnLifetime(); d > 0 {
		poolConfig.MaxConnLifetime = d
	}
	if d := cfg.GetDBMaxConnIdleTime(); d > 0 {
		poolConfig.MaxConnIdleTime = d
	}
	if d := cfg.GetDBHealthCheckPeriod(); d > 0 {
		poolConfig.HealthCheckPeriod = d
	}
	return poolConfig, nil
}

// NewPool opens the pool and pings it once so startup fails fast.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
