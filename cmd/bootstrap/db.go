package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

const dbStartupTimeout = 30 * time.Second

func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbStartupTimeout)
	defer cancel()

	if cfg.DB.MigrateOnStart {
		if err := db.Migrate(ctx, cfg.DB, logger); err != nil {
			return nil, err
		}
	}

	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
