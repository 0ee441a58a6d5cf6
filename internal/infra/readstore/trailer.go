package readstore

import (
	"context"
	"log/slog"
	"time"

	"trailer-rental/internal/infra"
	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/pkg/pgconv"
	"trailer-rental/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	trailerViewColumns = `id, name, kind, manufacturer, license_plate, lat, lng, address,
	price_one_day, price_two_days, price_extra_day, status, created_at`

	getTrailerViewSQL = `SELECT ` + trailerViewColumns + ` FROM trailers WHERE id = $1`

	listTrailersSQL = `
SELECT ` + trailerViewColumns + `
FROM trailers
WHERE ($1::text IS NULL OR status = $1)
  AND ($3::uuid IS NULL OR (created_at, id) < ($2::timestamptz, $3::uuid))
ORDER BY created_at DESC, id DESC
LIMIT $4`

	// closed-interval overlap against confirmed and active reservations
	findBlockingReservationsSQL = `
SELECT id, status, start_at, end_at
FROM reservations
WHERE trailer_id = $1
  AND status IN ('confirmed', 'active')
  AND start_at <= $3
  AND end_at >= $2
ORDER BY start_at`
)

type TrailerReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewTrailerReadStore(dbtx db.DBTX, logger *slog.Logger) *TrailerReadStore {
	return &TrailerReadStore{
		db:     dbtx,
		logger: logger,
	}
}

func (r *TrailerReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.TrailerView, error) {
	v, err := scanTrailerView(r.db.QueryRow(ctx, getTrailerViewSQL, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "trailer not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find trailer by ID", err)
	}
	return v, nil
}

func (r *TrailerReadStore) List(ctx context.Context, status *string, page queries.KeysetPage) ([]*queries.TrailerView, error) {
	afterAt, afterID := keysetArgs(page)
	rows, err := r.db.Query(ctx, listTrailersSQL, pgconv.StringPtrToPgtype(status), afterAt, afterID, page.Limit)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list trailers", err)
	}

	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.TrailerView, error) {
		return scanTrailerView(row)
	})
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan trailers", err)
	}
	return views, nil
}

func (r *TrailerReadStore) FindBlocking(ctx context.Context, trailerID uuid.UUID, start, end time.Time) ([]queries.ConflictingReservation, error) {
	rows, err := r.db.Query(ctx, findBlockingReservationsSQL, trailerID, pgconv.TimeToPgtype(start), pgconv.TimeToPgtype(end))
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to query blocking reservations", err)
	}

	conflicts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (queries.ConflictingReservation, error) {
		var (
			c              queries.ConflictingReservation
			startAt, endAt pgtype.Timestamptz
		)
		if err := row.Scan(&c.ID, &c.Status, &startAt, &endAt); err != nil {
			return c, err
		}
		c.StartAt = pgconv.TimeFromPgtype(startAt)
		c.EndAt = pgconv.TimeFromPgtype(endAt)
		return c, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan blocking reservations", err)
	}
	return conflicts, nil
}

func scanTrailerView(row pgx.Row) (*queries.TrailerView, error) {
	var (
		v         queries.TrailerView
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(
		&v.ID, &v.Name, &v.Kind, &v.Manufacturer, &v.LicensePlate, &v.Lat, &v.Lng, &v.Address,
		&v.PriceOneDay, &v.PriceTwoDays, &v.PriceExtraDay, &v.Status, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	return &v, nil
}
