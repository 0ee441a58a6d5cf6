package converter

import (
	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ReservationColumns matches the scan order of ScanReservation.
const ReservationColumns = `id, user_id, trailer_id, status, start_at, end_at, actual_end_at,
	total_price, tax_id, pin_code, pin_expiry, authorization_id, capture_id, invoice_id,
	check_in_at, check_out_at, cancel_reason, hold_released_at, last_extended_on,
	return_photos, version, created_at, updated_at`

type ReservationRow struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	TrailerID       uuid.UUID
	Status          string
	StartAt         pgtype.Timestamptz
	EndAt           pgtype.Timestamptz
	ActualEndAt     pgtype.Timestamptz
	TotalPrice      int64
	TaxID           pgtype.Text
	PinCode         pgtype.Text
	PinExpiry       pgtype.Timestamptz
	AuthorizationID pgtype.Text
	CaptureID       pgtype.Text
	InvoiceID       pgtype.Text
	CheckInAt       pgtype.Timestamptz
	CheckOutAt      pgtype.Timestamptz
	CancelReason    pgtype.Text
	HoldReleasedAt  pgtype.Timestamptz
	LastExtendedOn  pgtype.Date
	ReturnPhotos    []string
	Version         int64
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

func ScanReservation(row pgx.Row) (ReservationRow, error) {
	var r ReservationRow
	err := row.Scan(
		&r.ID, &r.UserID, &r.TrailerID, &r.Status, &r.StartAt, &r.EndAt, &r.ActualEndAt,
		&r.TotalPrice, &r.TaxID, &r.PinCode, &r.PinExpiry, &r.AuthorizationID, &r.CaptureID, &r.InvoiceID,
		&r.CheckInAt, &r.CheckOutAt, &r.CancelReason, &r.HoldReleasedAt, &r.LastExtendedOn,
		&r.ReturnPhotos, &r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func ReservationFromRow(r ReservationRow) (*reservation.Reservation, error) {
	status, err := reservation.NewStatus(r.Status)
	if err != nil {
		return nil, err
	}
	period, err := reservation.NewPeriod(r.StartAt.Time, r.EndAt.Time)
	if err != nil {
		return nil, err
	}

	var taxID *user.TaxID
	if r.TaxID.Valid {
		id, err := user.NewTaxID(r.TaxID.String)
		if err != nil {
			return nil, err
		}
		taxID = &id
	}

	return reservation.ReconstructReservation(reservation.Snapshot{
		ID:              r.ID,
		UserID:          r.UserID,
		TrailerID:       r.TrailerID,
		Status:          status,
		Period:          period,
		ActualEnd:       pgconv.TimePtrFromPgtype(r.ActualEndAt),
		TotalPrice:      reservation.NewMoney(r.TotalPrice),
		TaxID:           taxID,
		PinCode:         pgconv.StringFromPgtype(r.PinCode),
		PinExpiry:       pgconv.TimePtrFromPgtype(r.PinExpiry),
		AuthorizationID: pgconv.StringFromPgtype(r.AuthorizationID),
		CaptureID:       pgconv.StringFromPgtype(r.CaptureID),
		InvoiceID:       pgconv.StringFromPgtype(r.InvoiceID),
		CheckInAt:       pgconv.TimePtrFromPgtype(r.CheckInAt),
		CheckOutAt:      pgconv.TimePtrFromPgtype(r.CheckOutAt),
		CancelReason:    reservation.CancelReason(pgconv.StringFromPgtype(r.CancelReason)),
		HoldReleasedAt:  pgconv.TimePtrFromPgtype(r.HoldReleasedAt),
		LastExtendedOn:  pgconv.DatePtrFromPgtype(r.LastExtendedOn),
		ReturnPhotos:    r.ReturnPhotos,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt.Time,
		UpdatedAt:       r.UpdatedAt.Time,
	}), nil
}

// ReservationArgs returns the mutable columns in the order used by the
// repository's INSERT and UPDATE statements.
func ReservationArgs(res *reservation.Reservation) []any {
	var taxID pgtype.Text
	if t := res.TaxID(); t != nil {
		taxID = pgconv.StringToPgtype(t.String())
	}
	photos := res.ReturnPhotos()
	if photos == nil {
		photos = []string{}
	}

	return []any{
		res.Status().String(),
		pgconv.TimeToPgtype(res.Period().Start()),
		pgconv.TimeToPgtype(res.Period().End()),
		pgconv.TimePtrToPgtype(res.ActualEnd()),
		res.TotalPrice().Amount(),
		taxID,
		pgconv.StringToPgtype(res.PinCode()),
		pgconv.TimePtrToPgtype(res.PinExpiry()),
		pgconv.StringToPgtype(res.AuthorizationID()),
		pgconv.StringToPgtype(res.CaptureID()),
		pgconv.StringToPgtype(res.InvoiceID()),
		pgconv.TimePtrToPgtype(res.CheckInAt()),
		pgconv.TimePtrToPgtype(res.CheckOutAt()),
		pgconv.StringToPgtype(res.CancelReason().String()),
		pgconv.TimePtrToPgtype(res.HoldReleasedAt()),
		pgconv.DatePtrToPgtype(res.LastExtendedOn()),
		photos,
		pgconv.TimeToPgtype(res.UpdatedAt()),
	}
}
