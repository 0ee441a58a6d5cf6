package outbox

import (
	"context"
	"errors"
	"log/slog"

	"trailer-rental/internal/infra/repository"
	"trailer-rental/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresTransactor struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresTransactor(pool *pgxpool.Pool, logger *slog.Logger) *PostgresTransactor {
	return &PostgresTransactor{pool: pool, logger: logger}
}

func (t *PostgresTransactor) InTx(ctx context.Context, fn func(ctx context.Context, store JobStore) error) error {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errs.Wrap(err, "begin outbox transaction")
	}
	if err := fn(ctx, repository.NewNotificationRepository(tx, t.logger)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			t.logger.WarnContext(ctx, "outbox rollback failed", slog.String("error", rbErr.Error()))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Wrap(err, "commit outbox transaction")
	}
	return nil
}
