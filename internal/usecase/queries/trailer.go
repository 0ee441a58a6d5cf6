package queries

import (
	"context"
	"time"

	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrTrailerNotFound      = errs.Mark(errs.New("trailer not found"), errs.ErrNotFound)
	ErrInvalidTrailerFilter = errs.Mark(errs.New("invalid trailer status filter"), errs.ErrValidation)
	ErrInvalidPeriod        = errs.Mark(errs.New("start must be before end"), errs.ErrValidation)
)

type TrailerListFilter struct {
	Status *string
}

type TrailerQueries interface {
	List(ctx context.Context, filter TrailerListFilter, cursor *Cursor, limit int) ([]*TrailerView, *Cursor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*TrailerView, error)
	// Availability answers whether [start, end] is free of confirmed or
	// active reservations. Pending reservations never block.
	Availability(ctx context.Context, trailerID uuid.UUID, start, end time.Time) (*AvailabilityView, error)
}

type TrailerReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TrailerView, error)
	List(ctx context.Context, status *string, page KeysetPage) ([]*TrailerView, error)
	FindBlocking(ctx context.Context, trailerID uuid.UUID, start, end time.Time) ([]ConflictingReservation, error)
}

type trailerQueriesImpl struct {
	store TrailerReadStore
}

func NewTrailerQueries(store TrailerReadStore) TrailerQueries {
	return &trailerQueriesImpl{store: store}
}

func (q *trailerQueriesImpl) List(ctx context.Context, filter TrailerListFilter, cursor *Cursor, limit int) ([]*TrailerView, *Cursor, error) {
	if filter.Status != nil {
		if _, err := trailer.NewStatus(*filter.Status); err != nil {
			return nil, nil, ErrInvalidTrailerFilter
		}
	}

	page, limit, err := pageFromCursor(cursor, limit)
	if err != nil {
		return nil, nil, err
	}
	rows, err := q.store.List(ctx, filter.Status, page)
	if err != nil {
		return nil, nil, err
	}

	items, next := trimPage(rows, limit, func(t *TrailerView) (time.Time, uuid.UUID) {
		return t.CreatedAt, t.ID
	})
	return items, next, nil
}

func (q *trailerQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*TrailerView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrTrailerNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *trailerQueriesImpl) Availability(ctx context.Context, trailerID uuid.UUID, start, end time.Time) (*AvailabilityView, error) {
	period, err := reservation.NewPeriod(start, end)
	if err != nil {
		return nil, ErrInvalidPeriod
	}

	tr, err := q.GetByID(ctx, trailerID)
	if err != nil {
		return nil, err
	}

	conflicts, err := q.store.FindBlocking(ctx, trailerID, period.Start(), period.End())
	if err != nil {
		return nil, err
	}
	if conflicts == nil {
		conflicts = []ConflictingReservation{}
	}

	return &AvailabilityView{
		TrailerID:               trailerID,
		TrailerStatus:           tr.Status,
		StartAt:                 period.Start(),
		EndAt:                   period.End(),
		Available:               len(conflicts) == 0,
		ConflictingReservations: conflicts,
	}, nil
}
