package repository

import (
	"context"
	"log/slog"
	"time"

	"trailer-rental/internal/domain/pin"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/infra/repository/converter"
	"trailer-rental/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	insertPinSQL = `
INSERT INTO pins (
	id, reservation_id, lock_id, code, valid_from, valid_until, is_active,
	deactivated_at, revoked_at, revocation_attempts, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	deactivateActivePinsSQL = `
UPDATE pins SET is_active = FALSE, deactivated_at = $2
WHERE reservation_id = $1 AND is_active
RETURNING ` + converter.PinColumns

	findActivePinSQL = `SELECT ` + converter.PinColumns + ` FROM pins WHERE reservation_id = $1 AND is_active`

	// single statement so concurrent sweeps never flip the same row twice
	expireDuePinsSQL = `
UPDATE pins SET is_active = FALSE, deactivated_at = $1
WHERE is_active AND valid_until <= $1
RETURNING ` + converter.PinColumns

	findPendingRevocationSQL = `
SELECT ` + converter.PinColumns + ` FROM pins
WHERE NOT is_active AND revoked_at IS NULL
ORDER BY deactivated_at
LIMIT $1`

	updatePinRevocationSQL = `UPDATE pins SET revoked_at = $2, revocation_attempts = $3 WHERE id = $1`
)

type PinRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewPinRepository(dbtx db.DBTX, logger *slog.Logger) *PinRepository {
	return &PinRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *PinRepository) Create(ctx context.Context, p *pin.Pin) error {
	_, err := r.db.Exec(ctx, insertPinSQL,
		p.ID(), p.ReservationID(), p.LockID(), p.Code(),
		pgconv.TimeToPgtype(p.ValidFrom()), pgconv.TimeToPgtype(p.ValidUntil()), p.IsActive(),
		pgconv.TimePtrToPgtype(p.DeactivatedAt()), pgconv.TimePtrToPgtype(p.RevokedAt()),
		p.RevocationAttempts(), pgconv.TimeToPgtype(p.CreatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.ClassifyPgErr(err), "failed to create pin", err)
	}
	return nil
}

func (r *PinRepository) DeactivateActive(ctx context.Context, reservationID uuid.UUID, now time.Time) ([]*pin.Pin, error) {
	return r.collect(ctx, "failed to deactivate pins", deactivateActivePinsSQL, reservationID, pgconv.TimeToPgtype(now))
}

func (r *PinRepository) FindActiveByReservation(ctx context.Context, reservationID uuid.UUID) (*pin.Pin, error) {
	row, err := converter.ScanPin(r.db.QueryRow(ctx, findActivePinSQL, reservationID))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "active pin not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to load active pin", err)
	}
	return converter.PinFromRow(row), nil
}

func (r *PinRepository) ExpireDue(ctx context.Context, now time.Time) ([]*pin.Pin, error) {
	return r.collect(ctx, "failed to expire pins", expireDuePinsSQL, pgconv.TimeToPgtype(now))
}

func (r *PinRepository) FindPendingRevocation(ctx context.Context, limit int) ([]*pin.Pin, error) {
	return r.collect(ctx, "failed to list pins pending revocation", findPendingRevocationSQL, limit)
}

func (r *PinRepository) UpdateRevocation(ctx context.Context, p *pin.Pin) error {
	tag, err := r.db.Exec(ctx, updatePinRevocationSQL, p.ID(), pgconv.TimePtrToPgtype(p.RevokedAt()), p.RevocationAttempts())
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update pin revocation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "pin not found", nil)
	}
	return nil
}

func (r *PinRepository) collect(ctx context.Context, msg, sql string, args ...any) ([]*pin.Pin, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, msg, err)
	}
	pins, err := converter.CollectPins(rows)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, msg, err)
	}
	return pins, nil
}
