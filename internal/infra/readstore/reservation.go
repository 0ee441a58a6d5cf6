package readstore

import (
	"context"
	"log/slog"

	"trailer-rental/internal/infra"
	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/pkg/pgconv"
	"trailer-rental/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	getReservationViewSQL = `
SELECT r.id, r.user_id, r.trailer_id, t.name, r.status, r.start_at, r.end_at, r.actual_end_at,
       r.total_price, r.tax_id, r.pin_code, r.pin_expiry, r.check_in_at, r.check_out_at,
       r.cancel_reason, r.invoice_id, r.return_photos, r.created_at, r.updated_at
FROM reservations r
JOIN trailers t ON t.id = r.trailer_id
WHERE r.id = $1`

	// $2 status filter (NULL for all), ($3, $4) keyset position, $5 limit
	listReservationsByUserSQL = `
SELECT r.id, r.trailer_id, t.name, r.status, r.start_at, r.end_at, r.total_price, r.created_at
FROM reservations r
JOIN trailers t ON t.id = r.trailer_id
WHERE r.user_id = $1
  AND ($2::text IS NULL OR r.status = $2)
  AND ($4::uuid IS NULL OR (r.created_at, r.id) < ($3::timestamptz, $4::uuid))
ORDER BY r.created_at DESC, r.id DESC
LIMIT $5`
)

type ReservationReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewReservationReadStore(dbtx db.DBTX, logger *slog.Logger) *ReservationReadStore {
	return &ReservationReadStore{
		db:     dbtx,
		logger: logger,
	}
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	var (
		v                                       queries.ReservationView
		actualEnd, pinExpiry, checkIn, checkOut pgtype.Timestamptz
		taxID, pinCode, cancelReason, invoiceID pgtype.Text
		startAt, endAt, createdAt, updatedAt    pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, getReservationViewSQL, id).Scan(
		&v.ID, &v.UserID, &v.TrailerID, &v.TrailerName, &v.Status, &startAt, &endAt, &actualEnd,
		&v.TotalPrice, &taxID, &pinCode, &pinExpiry, &checkIn, &checkOut,
		&cancelReason, &invoiceID, &v.ReturnPhotos, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "reservation not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find reservation by ID", err)
	}

	v.StartAt = pgconv.TimeFromPgtype(startAt)
	v.EndAt = pgconv.TimeFromPgtype(endAt)
	v.ActualEndAt = pgconv.TimePtrFromPgtype(actualEnd)
	v.TaxID = pgconv.StringPtrFromPgtype(taxID)
	v.PinCode = pgconv.StringPtrFromPgtype(pinCode)
	v.PinExpiry = pgconv.TimePtrFromPgtype(pinExpiry)
	v.CheckInAt = pgconv.TimePtrFromPgtype(checkIn)
	v.CheckOutAt = pgconv.TimePtrFromPgtype(checkOut)
	v.CancelReason = pgconv.StringPtrFromPgtype(cancelReason)
	v.InvoiceID = pgconv.StringPtrFromPgtype(invoiceID)
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	v.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	if v.ReturnPhotos == nil {
		v.ReturnPhotos = []string{}
	}
	return &v, nil
}

func (r *ReservationReadStore) FindByUser(ctx context.Context, userID uuid.UUID, status *string, page queries.KeysetPage) ([]*queries.ReservationListItem, error) {
	afterAt, afterID := keysetArgs(page)
	rows, err := r.db.Query(ctx, listReservationsByUserSQL,
		userID, pgconv.StringPtrToPgtype(status), afterAt, afterID, page.Limit)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list reservations", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.ReservationListItem, error) {
		var (
			it                        queries.ReservationListItem
			startAt, endAt, createdAt pgtype.Timestamptz
		)
		if err := row.Scan(&it.ID, &it.TrailerID, &it.TrailerName, &it.Status, &startAt, &endAt, &it.TotalPrice, &createdAt); err != nil {
			return nil, err
		}
		it.StartAt = pgconv.TimeFromPgtype(startAt)
		it.EndAt = pgconv.TimeFromPgtype(endAt)
		it.CreatedAt = pgconv.TimeFromPgtype(createdAt)
		return &it, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan reservations", err)
	}
	return items, nil
}

// keysetArgs maps the first page to NULLs so one statement serves both cases.
func keysetArgs(page queries.KeysetPage) (pgtype.Timestamptz, pgtype.UUID) {
	if page.IsFirst() {
		return pgtype.Timestamptz{}, pgtype.UUID{}
	}
	return pgconv.TimeToPgtype(page.AfterCreatedAt), pgconv.UUIDToPgtype(page.AfterID)
}
