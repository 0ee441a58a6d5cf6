package converter

import (
	"trailer-rental/internal/domain/trailer"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const TrailerColumns = `id, name, kind, manufacturer, license_plate, lat, lng, address,
	price_one_day, price_two_days, price_extra_day, lock_id, status, time_zone,
	created_at, updated_at`

type TrailerRow struct {
	ID            uuid.UUID
	Name          string
	Kind          string
	Manufacturer  string
	LicensePlate  string
	Lat           float64
	Lng           float64
	Address       string
	PriceOneDay   int64
	PriceTwoDays  int64
	PriceExtraDay int64
	LockID        string
	Status        string
	TimeZone      string
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

func ScanTrailer(row pgx.Row) (TrailerRow, error) {
	var t TrailerRow
	err := row.Scan(
		&t.ID, &t.Name, &t.Kind, &t.Manufacturer, &t.LicensePlate, &t.Lat, &t.Lng, &t.Address,
		&t.PriceOneDay, &t.PriceTwoDays, &t.PriceExtraDay, &t.LockID, &t.Status, &t.TimeZone,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func TrailerFromRow(r TrailerRow) (*trailer.Trailer, error) {
	status, err := trailer.NewStatus(r.Status)
	if err != nil {
		return nil, err
	}
	pricing, err := trailer.NewPricing(r.PriceOneDay, r.PriceTwoDays, r.PriceExtraDay)
	if err != nil {
		return nil, err
	}
	location, err := trailer.NewLocation(r.Lat, r.Lng, r.Address)
	if err != nil {
		return nil, err
	}
	tz, err := trailer.NewTimeZone(r.TimeZone)
	if err != nil {
		return nil, err
	}

	return trailer.ReconstructTrailer(r.ID, trailer.Details{
		Name:         r.Name,
		Kind:         r.Kind,
		Manufacturer: r.Manufacturer,
		LicensePlate: r.LicensePlate,
		Location:     location,
		Pricing:      pricing,
		LockID:       r.LockID,
		TimeZone:     tz,
	}, status, r.CreatedAt.Time, r.UpdatedAt.Time), nil
}
