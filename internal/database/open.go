package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// Opener produces a database handle for cfg. The caller owns the handle.
type Opener func(ctx context.Context, cfg ConnectionConfig) (*sql.DB, error)

// Open builds a single-connection *sql.DB backed by pgx. No network I/O happens until first use.
func Open(_ context.Context, cfg ConnectionConfig) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, NewError(KindConnection, "parse connection string", err)
	}
	if cfg.ConnectTimeout > 0 {
		connConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	db := stdlib.OpenDB(*connConfig)

	maxConns := cfg.MaxConns
	if maxConns < 1 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	if cfg.IdleTimeout > 0 {
		db.SetConnMaxIdleTime(cfg.IdleTimeout)
	}
	if cfg.MaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	return db, nil
}

// Ping runs the liveness query used to wake a suspended instance.
func Ping(ctx context.Context, db *sql.DB) error {
	var one int
	if err := db.QueryRowContext(ctx, `SELECT 1 AS test`).Scan(&one); err != nil {
		return err
	}
	if one != 1 {
		return fmt.Errorf("%w: %d", ErrLivenessCheck, one)
	}
	return nil
}

// Close releases db and logs, rather than returns, any failure.
func Close(ctx context.Context, db *sql.DB, what string) {
	if db == nil {
		return
	}
	logger := zerolog.Ctx(ctx)
	if err := db.Close(); err != nil {
		logger.Warn().
			Err(NewError(KindClose, "close "+what, err)).
			Msg("failed to close database connection")
		return
	}
	logger.Debug().Str("connection", what).Msg("database connection closed")
}
