package queries

import (
	"context"
	"time"

	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound = errs.Mark(errs.New("reservation not found"), errs.ErrNotFound)
	ErrReservationAccess   = errs.Mark(errs.New("reservation belongs to another user"), errs.ErrForbidden)
	ErrInvalidStatusFilter = errs.Mark(errs.New("invalid reservation status filter"), errs.ErrValidation)
)

type ReservationListFilter struct {
	Status *string
}

type ReservationQueries interface {
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*ReservationView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ReservationListFilter, cursor *Cursor, limit int) ([]*ReservationListItem, *Cursor, error)
}

type ReservationReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	FindByUser(ctx context.Context, userID uuid.UUID, status *string, page KeysetPage) ([]*ReservationListItem, error)
}

type reservationQueriesImpl struct {
	store ReservationReadStore
}

func NewReservationQueries(store ReservationReadStore) ReservationQueries {
	return &reservationQueriesImpl{store: store}
}

// GetByID returns the reservation to its owner or to an admin. The PIN is
// only shown to the owner.
func (q *reservationQueriesImpl) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*ReservationView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if view.UserID != actor.UserID {
		if !actor.IsAdmin() {
			return nil, ErrReservationAccess
		}
		view.PinCode = nil
	}
	return view, nil
}

func (q *reservationQueriesImpl) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter ReservationListFilter,
	cursor *Cursor,
	limit int,
) ([]*ReservationListItem, *Cursor, error) {
	if filter.Status != nil {
		if _, err := reservation.NewStatus(*filter.Status); err != nil {
			return nil, nil, ErrInvalidStatusFilter
		}
	}

	page, limit, err := pageFromCursor(cursor, limit)
	if err != nil {
		return nil, nil, err
	}

	rows, err := q.store.FindByUser(ctx, userID, filter.Status, page)
	if err != nil {
		return nil, nil, err
	}

	items, next := trimPage(rows, limit, func(it *ReservationListItem) (time.Time, uuid.UUID) {
		return it.CreatedAt, it.ID
	})
	return items, next, nil
}
