package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockReservationStore struct {
	mock.Mock
}

func (m *mockReservationStore) FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	args := m.Called(ctx, id)
	view, _ := args.Get(0).(*ReservationView)
	return view, args.Error(1)
}

func (m *mockReservationStore) FindByUser(ctx context.Context, userID uuid.UUID, status *string, page KeysetPage) ([]*ReservationListItem, error) {
	args := m.Called(ctx, userID, status, page)
	rows, _ := args.Get(0).([]*ReservationListItem)
	return rows, args.Error(1)
}

type mockTrailerStore struct {
	mock.Mock
}

func (m *mockTrailerStore) FindByID(ctx context.Context, id uuid.UUID) (*TrailerView, error) {
	args := m.Called(ctx, id)
	view, _ := args.Get(0).(*TrailerView)
	return view, args.Error(1)
}

func (m *mockTrailerStore) List(ctx context.Context, status *string, page KeysetPage) ([]*TrailerView, error) {
	args := m.Called(ctx, status, page)
	rows, _ := args.Get(0).([]*TrailerView)
	return rows, args.Error(1)
}

func (m *mockTrailerStore) FindBlocking(ctx context.Context, trailerID uuid.UUID, start, end time.Time) ([]ConflictingReservation, error) {
	args := m.Called(ctx, trailerID, start, end)
	rows, _ := args.Get(0).([]ConflictingReservation)
	return rows, args.Error(1)
}
