package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rit3sh-x/mongoschema/core/config"
	"github.com/rit3sh-x/mongoschema/core/constants"
)

// Connect opens a pool for the document store and pings it once.
func Connect(ctx context.Context, cfg config.Database, logger *zap.SugaredLogger) (*pgxpool.Pool, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("environment variable %q not set", cfg.URIEnv)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URI: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	var ping int
	if err := pool.QueryRow(ctx, constants.TEST_QUERY).Scan(&ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Debugw("connected to database", "host", poolConfig.ConnConfig.Host, "database", poolConfig.ConnConfig.Database)
	return pool, nil
}
