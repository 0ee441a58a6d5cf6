package db

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver for goose
	"github.com/pressly/goose/v3"
)

func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, func(), error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.BuildDSN())
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to parse database config")
	}
	poolCfg.MaxConns = 20
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to open database")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, errs.Wrap(err, "failed to ping database")
	}

	return pool, pool.Close, nil
}

// Migrate applies every pending embedded migration. goose drives
// database/sql, so a short-lived *sql.DB is opened through the pgx stdlib driver.
func Migrate(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.BuildDSN())
	if err != nil {
		return errs.Wrap(err, "failed to open migration connection")
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		_ = sqlDB.Close()
		return errs.Wrap(err, "failed to create migration provider")
	}
	defer func() {
		if closeErr := provider.Close(); closeErr != nil {
			logger.Warn("failed to close migration connection", "error", closeErr.Error())
		}
	}()

	results, err := provider.Up(ctx)
	if err != nil {
		return errs.Wrap(err, "failed to apply migrations")
	}
	for _, r := range results {
		logger.Info("migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration_ms", r.Duration.Milliseconds())
	}
	return nil
}
