package repository

import (
	"context"
	"log/slog"
	"time"

	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/infra/repository/converter"
	"trailer-rental/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	insertReservationSQL = `
INSERT INTO reservations (
	id, user_id, trailer_id,
	status, start_at, end_at, actual_end_at, total_price, tax_id, pin_code, pin_expiry,
	authorization_id, capture_id, invoice_id, check_in_at, check_out_at, cancel_reason,
	hold_released_at, last_extended_on, return_photos, updated_at,
	created_at, version
) VALUES (
	$1, $2, $3,
	$4, $5, $6, $7, $8, $9, $10, $11,
	$12, $13, $14, $15, $16, $17,
	$18, $19, $20, $21,
	$22, 0
)`

	updateReservationSQL = `
UPDATE reservations SET
	status = $3, start_at = $4, end_at = $5, actual_end_at = $6, total_price = $7,
	tax_id = $8, pin_code = $9, pin_expiry = $10, authorization_id = $11, capture_id = $12,
	invoice_id = $13, check_in_at = $14, check_out_at = $15, cancel_reason = $16,
	hold_released_at = $17, last_extended_on = $18, return_photos = $19, updated_at = $20,
	version = version + 1
WHERE id = $1 AND version = $2`

	selectReservationSQL = `SELECT ` + converter.ReservationColumns + ` FROM reservations`

	// closed-interval overlap: start <= existingEnd AND end >= existingStart
	findOverlappingSQL = selectReservationSQL + `
WHERE trailer_id = $1
  AND status IN ('confirmed', 'active')
  AND start_at <= $3
  AND end_at >= $2
  AND id <> $4
ORDER BY start_at`

	findActiveEndingBeforeSQL = `
SELECT id FROM reservations
WHERE status = 'active' AND end_at <= $1
ORDER BY end_at`

	findPendingHoldReleaseSQL = `
SELECT id FROM reservations
WHERE status = 'cancelled' AND authorization_id IS NOT NULL AND hold_released_at IS NULL
ORDER BY updated_at
LIMIT $1`
)

type ReservationRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewReservationRepository(dbtx db.DBTX, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	args := append([]any{res.ID(), res.UserID(), res.TrailerID()}, converter.ReservationArgs(res)...)
	args = append(args, pgconv.TimeToPgtype(res.CreatedAt()))

	if _, err := r.db.Exec(ctx, insertReservationSQL, args...); err != nil {
		return infra.WrapRepoErr(r.logger, infra.ClassifyPgErr(err), "failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	args := append([]any{res.ID(), res.Version()}, converter.ReservationArgs(res)...)

	tag, err := r.db.Exec(ctx, updateReservationSQL, args...)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.ClassifyPgErr(err), "failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindConflict, "reservation was modified concurrently", nil)
	}

	res.AdvanceVersion()
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return r.findOne(ctx, "reservation not found", selectReservationSQL+` WHERE id = $1`, id)
}

func (r *ReservationRepository) FindByAuthorizationID(ctx context.Context, authorizationID string) (*reservation.Reservation, error) {
	return r.findOne(ctx, "reservation not found for authorization", selectReservationSQL+` WHERE authorization_id = $1`, authorizationID)
}

func (r *ReservationRepository) FindOverlapping(
	ctx context.Context,
	trailerID uuid.UUID,
	period reservation.Period,
	excludeID uuid.UUID,
) ([]*reservation.Reservation, error) {
	rows, err := r.db.Query(ctx, findOverlappingSQL, trailerID, period.Start(), period.End(), excludeID)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to query overlapping reservations", err)
	}
	defer rows.Close()

	var result []*reservation.Reservation
	for rows.Next() {
		row, err := converter.ScanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan reservation", err)
		}
		res, err := converter.ReservationFromRow(row)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "invalid reservation row", err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to iterate reservations", err)
	}
	return result, nil
}

func (r *ReservationRepository) FindActiveEndingBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	return r.findIDs(ctx, "failed to find reservations due for extension", findActiveEndingBeforeSQL, cutoff)
}

func (r *ReservationRepository) FindPendingHoldRelease(ctx context.Context, limit int) ([]uuid.UUID, error) {
	return r.findIDs(ctx, "failed to find reservations with pending hold release", findPendingHoldReleaseSQL, limit)
}

func (r *ReservationRepository) findOne(ctx context.Context, notFoundMsg, sql string, args ...any) (*reservation.Reservation, error) {
	row, err := converter.ScanReservation(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, notFoundMsg, err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to load reservation", err)
	}
	res, err := converter.ReservationFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "invalid reservation row", err)
	}
	return res, nil
}

func (r *ReservationRepository) findIDs(ctx context.Context, msg, sql string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, msg, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, msg, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, msg, err)
	}
	return ids, nil
}
