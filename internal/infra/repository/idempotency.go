package repository

import (
	"context"
	"log/slog"
	"time"

	"trailer-rental/internal/infra"
	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/pkg/pgconv"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	tryInsertIdempotencyKeySQL = `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)
ON CONFLICT (key, user_id) DO NOTHING`

	getIdempotencyKeySQL = `
SELECT key, user_id, status, request_hash, result_reservation_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2`

	completeIdempotencyKeySQL = `
UPDATE idempotency_keys SET status = 'completed', result_reservation_id = $3
WHERE key = $1 AND user_id = $2`

	// an expired key is handed to the first request that presents it again
	claimExpiredIdempotencyKeySQL = `
UPDATE idempotency_keys
SET status = 'processing', request_hash = $3, result_reservation_id = NULL, expires_at = $5, created_at = $4
WHERE key = $1 AND user_id = $2 AND expires_at <= $4`

	releaseIdempotencyKeySQL = `
DELETE FROM idempotency_keys WHERE key = $1 AND user_id = $2 AND status = 'processing'`
)

type IdempotencyRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewIdempotencyRepository(dbtx db.DBTX, logger *slog.Logger) *IdempotencyRepository {
	return &IdempotencyRepository{
		db:     dbtx,
		logger: logger,
	}
}

// TryInsert reports whether this call created the key.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, tryInsertIdempotencyKeySQL, key, userID, endpoint, requestHash, pgconv.TimeToPgtype(expiresAt))
	if err != nil {
		return false, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		rec       shared.IdempotencyRecord
		resultID  pgtype.UUID
		expiresAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, getIdempotencyKeySQL, key, userID).
		Scan(&rec.Key, &rec.UserID, &rec.Status, &rec.RequestHash, &resultID, &expiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "idempotency key not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to get idempotency key", err)
	}
	rec.ResultReservationID = pgconv.UUIDPtrFromPgtype(resultID)
	rec.ExpiresAt = pgconv.TimeFromPgtype(expiresAt)
	return &rec, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, key, userID, reservationID uuid.UUID) error {
	_, err := r.db.Exec(ctx, completeIdempotencyKeySQL, key, userID, pgconv.UUIDToPgtype(reservationID))
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update idempotency key status", err)
	}
	return nil
}

func (r *IdempotencyRepository) ClaimExpired(ctx context.Context, key, userID uuid.UUID, requestHash string, now, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, claimExpiredIdempotencyKeySQL, key, userID, requestHash, pgconv.TimeToPgtype(now), pgconv.TimeToPgtype(expiresAt))
	if err != nil {
		return false, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to claim expired idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Release drops a key that never produced a reservation so the client can
// retry with it.
func (r *IdempotencyRepository) Release(ctx context.Context, key, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, releaseIdempotencyKeySQL, key, userID)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to release idempotency key", err)
	}
	return nil
}
