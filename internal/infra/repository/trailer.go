package repository

import (
	"context"
	"log/slog"
	"time"

	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/infra/repository/converter"
	"trailer-rental/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	insertTrailerSQL = `
INSERT INTO trailers (
	id, name, kind, manufacturer, license_plate, lat, lng, address,
	price_one_day, price_two_days, price_extra_day, lock_id, status, time_zone,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`

	selectTrailerSQL = `SELECT ` + converter.TrailerColumns + ` FROM trailers WHERE id = $1`

	updateTrailerStatusSQL = `UPDATE trailers SET status = $2, updated_at = $3 WHERE id = $1`
)

type TrailerRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewTrailerRepository(dbtx db.DBTX, logger *slog.Logger) *TrailerRepository {
	return &TrailerRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *TrailerRepository) Create(ctx context.Context, t *trailer.Trailer) error {
	loc := t.Location()
	p := t.Pricing()
	_, err := r.db.Exec(ctx, insertTrailerSQL,
		t.ID(), t.Name(), t.Kind(), t.Manufacturer(), t.LicensePlate(), loc.Lat(), loc.Lng(), loc.Address(),
		p.OneDay(), p.TwoDays(), p.AdditionalDays(), t.LockID(), t.Status().String(), t.TimeZone().String(),
		pgconv.TimeToPgtype(t.CreatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.ClassifyPgErr(err), "failed to create trailer", err)
	}
	return nil
}

func (r *TrailerRepository) FindByID(ctx context.Context, id uuid.UUID) (*trailer.Trailer, error) {
	return r.findOne(ctx, selectTrailerSQL, id)
}

func (r *TrailerRepository) LockByID(ctx context.Context, id uuid.UUID) (*trailer.Trailer, error) {
	return r.findOne(ctx, selectTrailerSQL+` FOR UPDATE`, id)
}

func (r *TrailerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status trailer.Status, now time.Time) error {
	tag, err := r.db.Exec(ctx, updateTrailerStatusSQL, id, status.String(), pgconv.TimeToPgtype(now))
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.ClassifyPgErr(err), "failed to update trailer status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "trailer not found", nil)
	}
	return nil
}

func (r *TrailerRepository) findOne(ctx context.Context, sql string, id uuid.UUID) (*trailer.Trailer, error) {
	row, err := converter.ScanTrailer(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "trailer not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to load trailer", err)
	}
	t, err := converter.TrailerFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "invalid trailer row", err)
	}
	return t, nil
}
