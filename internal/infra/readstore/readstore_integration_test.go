//go:build integration

package readstore_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/infra/readstore"
	"trailer-rental/internal/infra/repository"
	"trailer-rental/internal/testutil/pgtest"
	"trailer-rental/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStores(t *testing.T) {
	pool, _ := pgtest.NewDatabase(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	name, _ := user.NewName("Karel", "Novy")
	email, _ := user.NewEmail("karel@example.cz")
	phone, _ := user.NewPhone("603555444")
	address, _ := user.NewAddress("Dlouha 3", "Olomouc", "77900")
	u := user.NewUser(uuid.New(), name, email, phone, address, nil, user.RoleRenter)
	require.NoError(t, repository.NewUserRepository(pool, logger).Upsert(ctx, u))

	pricing, _ := trailer.NewPricing(400, 700, 300)
	location, _ := trailer.NewLocation(49.59, 17.25, "Olomouc")
	tr, err := trailer.NewTrailer(trailer.Details{Name: "Vezeko", Location: location, Pricing: pricing, LockID: "lock-9"})
	require.NoError(t, err)
	require.NoError(t, repository.NewTrailerRepository(pool, logger).Create(ctx, tr))

	reservations := repository.NewReservationRepository(pool, logger)
	var created []*reservation.Reservation
	for i := range 3 {
		start := now.AddDate(0, 0, 1+i*3)
		period, _ := reservation.NewPeriod(start, start.AddDate(0, 0, 2))
		res, err := reservation.NewReservation(u.ID(), tr, period, nil, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, reservations.Create(ctx, res))
		created = append(created, res)
	}
	require.NoError(t, created[0].Confirm("pi_rs", now))
	require.NoError(t, reservations.Update(ctx, created[0]))

	t.Run("reservation view", func(t *testing.T) {
		store := readstore.NewReservationReadStore(pool, logger)
		view, err := store.FindByID(ctx, created[0].ID())
		require.NoError(t, err)
		assert.Equal(t, "Vezeko", view.TrailerName)
		assert.Equal(t, "confirmed", view.Status)
		assert.Equal(t, int64(700), view.TotalPrice)
		assert.Empty(t, view.ReturnPhotos)

		_, err = store.FindByID(ctx, uuid.New())
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("reservation keyset pages", func(t *testing.T) {
		q := queries.NewReservationQueries(readstore.NewReservationReadStore(pool, logger))
		first, next, err := q.ListByUser(ctx, u.ID(), queries.ReservationListFilter{}, nil, 2)
		require.NoError(t, err)
		require.Len(t, first, 2)
		require.NotNil(t, next)
		assert.Equal(t, created[2].ID(), first[0].ID)

		second, next, err := q.ListByUser(ctx, u.ID(), queries.ReservationListFilter{}, next, 2)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Nil(t, next)
		assert.Equal(t, created[0].ID(), second[0].ID)

		status := "confirmed"
		filtered, _, err := q.ListByUser(ctx, u.ID(), queries.ReservationListFilter{Status: &status}, nil, 10)
		require.NoError(t, err)
		assert.Len(t, filtered, 1)
	})

	t.Run("availability", func(t *testing.T) {
		q := queries.NewTrailerQueries(readstore.NewTrailerReadStore(pool, logger))
		booked := created[0].Period()

		view, err := q.Availability(ctx, tr.ID(), booked.End(), booked.End().Add(24*time.Hour))
		require.NoError(t, err)
		assert.False(t, view.Available)
		require.Len(t, view.ConflictingReservations, 1)
		assert.Equal(t, created[0].ID(), view.ConflictingReservations[0].ID)

		// the other two are pending and never block
		view, err = q.Availability(ctx, tr.ID(), created[1].Period().Start(), created[2].Period().End())
		require.NoError(t, err)
		assert.True(t, view.Available)
	})

	t.Run("trailer list and profile", func(t *testing.T) {
		trailers, next, err := queries.NewTrailerQueries(readstore.NewTrailerReadStore(pool, logger)).
			List(ctx, queries.TrailerListFilter{}, nil, 10)
		require.NoError(t, err)
		assert.Nil(t, next)
		require.Len(t, trailers, 1)
		assert.Equal(t, int64(300), trailers[0].PriceExtraDay)

		profile, err := readstore.NewProfileReadStore(pool, logger).FindByID(ctx, u.ID())
		require.NoError(t, err)
		assert.Equal(t, "+420603555444", profile.Phone)
		assert.False(t, profile.HasPaymentCustomer)
	})
}
