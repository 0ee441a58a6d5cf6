package converter

import (
	"trailer-rental/internal/domain/pin"
	"trailer-rental/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const PinColumns = `id, reservation_id, lock_id, code, valid_from, valid_until, is_active,
	deactivated_at, revoked_at, revocation_attempts, created_at`

type PinRow struct {
	ID                 uuid.UUID
	ReservationID      uuid.UUID
	LockID             string
	Code               string
	ValidFrom          pgtype.Timestamptz
	ValidUntil         pgtype.Timestamptz
	IsActive           bool
	DeactivatedAt      pgtype.Timestamptz
	RevokedAt          pgtype.Timestamptz
	RevocationAttempts int32
	CreatedAt          pgtype.Timestamptz
}

func ScanPin(row pgx.Row) (PinRow, error) {
	var p PinRow
	err := row.Scan(
		&p.ID, &p.ReservationID, &p.LockID, &p.Code, &p.ValidFrom, &p.ValidUntil, &p.IsActive,
		&p.DeactivatedAt, &p.RevokedAt, &p.RevocationAttempts, &p.CreatedAt,
	)
	return p, err
}

func PinFromRow(r PinRow) *pin.Pin {
	return pin.ReconstructPin(
		r.ID, r.ReservationID,
		r.LockID, r.Code,
		pgconv.TimeFromPgtype(r.ValidFrom), pgconv.TimeFromPgtype(r.ValidUntil),
		r.IsActive,
		pgconv.TimePtrFromPgtype(r.DeactivatedAt), pgconv.TimePtrFromPgtype(r.RevokedAt),
		int(r.RevocationAttempts),
		pgconv.TimeFromPgtype(r.CreatedAt),
	)
}

// CollectPins drains rows produced by a SELECT or RETURNING of PinColumns.
func CollectPins(rows pgx.Rows) ([]*pin.Pin, error) {
	defer rows.Close()

	var pins []*pin.Pin
	for rows.Next() {
		row, err := ScanPin(rows)
		if err != nil {
			return nil, err
		}
		pins = append(pins, PinFromRow(row))
	}
	return pins, rows.Err()
}
