package queries

import (
	"context"

	"trailer-rental/internal/infra"
	"trailer-rental/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound = errs.Mark(errs.New("profile not found"), errs.ErrNotFound)
	ErrUserInactive    = errs.Mark(errs.New("user inactive"), errs.ErrForbidden)
)

type ProfileQueries interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error)
}

type ProfileReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProfileView, error)
}

type profileQueriesImpl struct {
	store ProfileReadStore
}

func NewProfileQueries(store ProfileReadStore) ProfileQueries {
	return &profileQueriesImpl{store: store}
}

func (q *profileQueriesImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	profile, err := q.store.FindByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if !profile.IsActive {
		return nil, ErrUserInactive
	}
	return profile, nil
}
