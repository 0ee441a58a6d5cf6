//go:build unit

package commands

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"trailer-rental/internal/domain/payment"
	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReservationCommandsTestSuite struct {
	suite.Suite
	f        *fixture
	commands ReservationCommands
	ctx      context.Context
	tr       *trailer.Trailer
	renter   *user.User
}

func (s *ReservationCommandsTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.commands = s.f.reservationCommands()
	s.ctx = context.Background()
	s.tr = s.f.seedTrailer(s.T())
	s.renter = s.f.seedRenter(s.T(), "cus_1")
}

func TestReservationCommandsTestSuite(t *testing.T) {
	suite.Run(t, new(ReservationCommandsTestSuite))
}

func (s *ReservationCommandsTestSuite) input() CreateReservationInput {
	return CreateReservationInput{TrailerID: s.tr.ID(), StartAt: at(2, 8), EndAt: at(4, 8)}
}

func (s *ReservationCommandsTestSuite) onlyReservation() *reservation.Reservation {
	s.Require().Len(s.f.uow.st.reservations, 1)
	for id := range s.f.uow.st.reservations {
		return s.f.uow.reservation(id)
	}
	return nil
}

func (s *ReservationCommandsTestSuite) expectAuthorize(handle string) *gomock.Call {
	return s.f.processor.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		Return(&payment.Authorization{Handle: handle, ClientSecret: handle + "_secret"}, nil)
}

func (s *ReservationCommandsTestSuite) TestCreate_Success() {
	key := uuid.New()
	s.f.processor.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req payment.AuthorizationRequest) (*payment.Authorization, error) {
			s.Equal(int64(1300), req.Amount)
			s.Equal("czk", req.Currency)
			s.Equal("cus_1", req.CustomerRef)
			s.Equal(s.renter.ID().String(), req.Metadata[payment.MetadataUserID])
			return &payment.Authorization{Handle: "pi_1", ClientSecret: "pi_1_secret"}, nil
		})

	result, err := s.commands.Create(s.ctx, s.renter.ID(), key, s.input())

	s.Require().NoError(err)
	s.Equal(reservation.StatusPendingPayment, result.Status)
	s.Equal(int64(900), result.TotalPrice)
	s.Equal(int64(1300), result.HoldAmount)
	s.Equal("pi_1_secret", result.ClientSecret)
	s.False(result.IsReplayed)

	stored := s.f.uow.reservation(result.ReservationID)
	s.Require().NotNil(stored)
	s.Equal("pi_1", stored.AuthorizationID())
	s.Equal(reservation.StatusPendingPayment, stored.Status())

	rec, ok := s.f.uow.idempotencyRecord(key, s.renter.ID())
	s.Require().True(ok)
	s.Equal(shared.IdempotencyCompleted, rec.Status)
	s.Equal(result.ReservationID, *rec.ResultReservationID)
}

func (s *ReservationCommandsTestSuite) TestCreate_ReplayReturnsSameReservation() {
	key := uuid.New()
	s.expectAuthorize("pi_1").Times(1)

	first, err := s.commands.Create(s.ctx, s.renter.ID(), key, s.input())
	s.Require().NoError(err)

	replay, err := s.commands.Create(s.ctx, s.renter.ID(), key, s.input())
	s.Require().NoError(err)
	s.True(replay.IsReplayed)
	s.Equal(first.ReservationID, replay.ReservationID)
	s.Equal(first.TotalPrice, replay.TotalPrice)
	s.Equal(first.HoldAmount, replay.HoldAmount)
	s.Empty(replay.ClientSecret)
	s.Len(s.f.uow.st.reservations, 1)
}

func (s *ReservationCommandsTestSuite) TestCreate_KeyReusedWithDifferentBody() {
	key := uuid.New()
	s.expectAuthorize("pi_1")

	_, err := s.commands.Create(s.ctx, s.renter.ID(), key, s.input())
	s.Require().NoError(err)

	other := s.input()
	other.EndAt = at(5, 8)
	_, err = s.commands.Create(s.ctx, s.renter.ID(), key, other)

	s.ErrorIs(err, ErrIdempotencyKeyReused)
	s.True(errs.Is(err, errs.ErrConflict))
}

func (s *ReservationCommandsTestSuite) TestCreate_KeyStillProcessing() {
	key := uuid.New()
	s.f.uow.st.idempotency[idemKey{key, s.renter.ID()}] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      s.renter.ID(),
		Status:      shared.IdempotencyProcessing,
		RequestHash: (&reservationCommands{}).calculateRequestHash(s.input()),
		ExpiresAt:   baseTime.Add(time.Hour),
	}

	_, err := s.commands.Create(s.ctx, s.renter.ID(), key, s.input())

	s.ErrorIs(err, ErrIdempotencyInProgress)
	s.Empty(s.f.uow.st.reservations)
}

func (s *ReservationCommandsTestSuite) TestCreate_ExpiredKeyIsReclaimed() {
	key := uuid.New()
	s.f.uow.st.idempotency[idemKey{key, s.renter.ID()}] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      s.renter.ID(),
		Status:      shared.IdempotencyCompleted,
		RequestHash: "stale",
		ExpiresAt:   baseTime.Add(-time.Minute),
	}
	s.expectAuthorize("pi_2")

	result, err := s.commands.Create(s.ctx, s.renter.ID(), key, s.input())

	s.Require().NoError(err)
	s.False(result.IsReplayed)
	rec, _ := s.f.uow.idempotencyRecord(key, s.renter.ID())
	s.Equal(shared.IdempotencyCompleted, rec.Status)
	s.Equal(result.ReservationID, *rec.ResultReservationID)
}

func (s *ReservationCommandsTestSuite) TestCreate_UnavailableReleasesKey() {
	other := s.f.seedRenter(s.T(), "cus_2")
	s.f.seedReservation(s.T(), other, s.tr, at(3, 8), at(6, 8), reservation.StatusConfirmed, "pi_other")
	key := uuid.New()

	_, err := s.commands.Create(s.ctx, s.renter.ID(), key, s.input())

	s.ErrorIs(err, ErrTrailerUnavailable)
	s.True(errs.Is(err, errs.ErrConflict))
	_, ok := s.f.uow.idempotencyRecord(key, s.renter.ID())
	s.False(ok, "a failed attempt must not pin the key")
}

func (s *ReservationCommandsTestSuite) TestCreate_TouchingBoundaryIsUnavailable() {
	other := s.f.seedRenter(s.T(), "cus_2")
	s.f.seedReservation(s.T(), other, s.tr, at(4, 8), at(5, 8), reservation.StatusConfirmed, "pi_other")

	_, err := s.commands.Create(s.ctx, s.renter.ID(), uuid.New(), s.input())

	s.ErrorIs(err, ErrTrailerUnavailable)
}

func (s *ReservationCommandsTestSuite) TestCreate_PendingReservationsDoNotBlock() {
	other := s.f.seedRenter(s.T(), "cus_2")
	s.f.seedReservation(s.T(), other, s.tr, at(2, 8), at(4, 8), reservation.StatusPendingPayment, "pi_other")
	s.expectAuthorize("pi_1")

	result, err := s.commands.Create(s.ctx, s.renter.ID(), uuid.New(), s.input())

	s.Require().NoError(err)
	s.Equal(reservation.StatusPendingPayment, result.Status)
}

func (s *ReservationCommandsTestSuite) TestCreate_AuthorizationDeclined() {
	key := uuid.New()
	s.f.processor.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		Return(nil, errs.NewPaymentError(errs.PaymentDeclined, errors.New("card_declined")))

	_, err := s.commands.Create(s.ctx, s.renter.ID(), key, s.input())

	s.Require().Error(err)
	reason, ok := errs.PaymentReason(err)
	s.True(ok)
	s.Equal(errs.PaymentDeclined, reason)

	stored := s.onlyReservation()
	s.Equal(reservation.StatusCancelled, stored.Status())
	s.Equal(reservation.CancelAuthorizationFailed, stored.CancelReason())
	rec, _ := s.f.uow.idempotencyRecord(key, s.renter.ID())
	s.Equal(shared.IdempotencyCompleted, rec.Status)
}

func (s *ReservationCommandsTestSuite) TestCreate_AuthorizationTimeout() {
	s.f.processor.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ payment.AuthorizationRequest) (*payment.Authorization, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	_, err := s.commands.Create(s.ctx, s.renter.ID(), uuid.New(), s.input())

	reason, ok := errs.PaymentReason(err)
	s.Require().True(ok)
	s.Equal(errs.PaymentTimeout, reason)
	s.Equal(reservation.StatusCancelled, s.onlyReservation().Status())
}

func (s *ReservationCommandsTestSuite) TestCreate_ProcessorFailureBecomesPaymentError() {
	s.f.processor.EXPECT().Authorize(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := s.commands.Create(s.ctx, s.renter.ID(), uuid.New(), s.input())

	reason, ok := errs.PaymentReason(err)
	s.Require().True(ok)
	s.Equal(errs.PaymentProcessorError, reason)
	s.True(errs.Is(err, errs.ErrPayment))
}

func (s *ReservationCommandsTestSuite) TestCreate_CancelledWhileAuthorizing() {
	s.f.processor.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ payment.AuthorizationRequest) (*payment.Authorization, error) {
			res := s.onlyReservation()
			s.Require().NoError(res.Cancel(reservation.CancelByOperator, baseTime))
			s.f.uow.putReservation(res)
			return &payment.Authorization{Handle: "pi_1", ClientSecret: "secret"}, nil
		})
	s.f.processor.EXPECT().VoidAuthorization(gomock.Any(), "pi_1").Return(nil)

	_, err := s.commands.Create(s.ctx, s.renter.ID(), uuid.New(), s.input())

	s.ErrorIs(err, ErrCancelledDuringAuth)
	s.Empty(s.onlyReservation().AuthorizationID())
}

func (s *ReservationCommandsTestSuite) TestCreate_WebhookConfirmsBeforeHandleIsAttached() {
	key := uuid.New()
	s.expectAuthorize("pi_1")
	raced := false
	s.f.uow.beforeUpdate = func(st *memState, id uuid.UUID) {
		if raced {
			return
		}
		raced = true
		confirmed := reservation.ReconstructReservation(st.reservations[id])
		s.Require().NoError(confirmed.Confirm("pi_1", baseTime))
		snap := snapshotOf(confirmed)
		snap.Version++
		st.reservations[id] = snap
	}

	result, err := s.commands.Create(s.ctx, s.renter.ID(), key, s.input())

	s.Require().NoError(err)
	s.True(raced)
	s.Equal(reservation.StatusConfirmed, result.Status)
	stored := s.onlyReservation()
	s.Equal("pi_1", stored.AuthorizationID())
	rec, ok := s.f.uow.idempotencyRecord(key, s.renter.ID())
	s.Require().True(ok)
	s.Equal(shared.IdempotencyCompleted, rec.Status)
	s.Require().NotNil(rec.ResultReservationID)
	s.Equal(stored.ID(), *rec.ResultReservationID)

	replay, err := s.commands.Create(s.ctx, s.renter.ID(), key, s.input())
	s.Require().NoError(err)
	s.True(replay.IsReplayed)
	s.Equal(result.ReservationID, replay.ReservationID)
}

func (s *ReservationCommandsTestSuite) TestCreate_RejectsInvalidInput() {
	badTaxID := "12345678"
	tests := []struct {
		name      string
		mutate    func(in *CreateReservationInput)
		wantErr   error
		wantClass error
	}{
		{
			name:      "end before start",
			mutate:    func(in *CreateReservationInput) { in.EndAt = in.StartAt.Add(-time.Hour) },
			wantErr:   reservation.ErrInvalidPeriod,
			wantClass: errs.ErrValidation,
		},
		{
			name:      "period already over",
			mutate:    func(in *CreateReservationInput) { in.StartAt, in.EndAt = at(1, 1), at(1, 2) },
			wantErr:   reservation.ErrPeriodInPast,
			wantClass: errs.ErrValidation,
		},
		{
			name:      "invalid company tax id",
			mutate:    func(in *CreateReservationInput) { in.CompanyTaxID = &badTaxID },
			wantErr:   user.ErrInvalidTaxID,
			wantClass: errs.ErrValidation,
		},
		{
			name:      "unknown trailer",
			mutate:    func(in *CreateReservationInput) { in.TrailerID = uuid.New() },
			wantErr:   ErrTrailerNotFound,
			wantClass: errs.ErrNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := s.input()
			tt.mutate(&in)

			_, err := s.commands.Create(s.ctx, s.renter.ID(), uuid.New(), in)

			s.ErrorIs(err, tt.wantErr)
			s.True(errs.Is(err, tt.wantClass))
		})
	}
	s.Empty(s.f.uow.st.reservations)
}

func (s *ReservationCommandsTestSuite) TestCreate_RequiresProfileWithPaymentCustomer() {
	noCustomer := s.f.seedRenter(s.T(), "")

	_, err := s.commands.Create(s.ctx, noCustomer.ID(), uuid.New(), s.input())
	s.ErrorIs(err, ErrProfileRequired)

	_, err = s.commands.Create(s.ctx, uuid.New(), uuid.New(), s.input())
	s.ErrorIs(err, ErrProfileRequired)
}

func (s *ReservationCommandsTestSuite) TestCreate_TrailerUnderMaintenance() {
	s.f.uow.st.trailers[s.tr.ID()] = trailer.ReconstructTrailer(s.tr.ID(), detailsOf(s.tr), trailer.StatusMaintenance, baseTime, baseTime)

	_, err := s.commands.Create(s.ctx, s.renter.ID(), uuid.New(), s.input())

	s.ErrorIs(err, reservation.ErrTrailerUnderMaintenance)
	s.True(errs.Is(err, errs.ErrConflict))
}

func (s *ReservationCommandsTestSuite) TestCancel_ConfirmedReleasesHoldAndRevokesPin() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusConfirmed, "pi_1")
	s.f.seedPin(s.T(), res, "4821", at(5, 0))
	s.f.lock.EXPECT().RevokeAccess(gomock.Any(), "lock-1", "4821").Return(nil)
	s.f.processor.EXPECT().VoidAuthorization(gomock.Any(), "pi_1").Return(nil)

	err := s.commands.Cancel(s.ctx, s.renter.ID(), res.ID())

	s.Require().NoError(err)
	stored := s.f.uow.reservation(res.ID())
	s.Equal(reservation.StatusCancelled, stored.Status())
	s.Equal(reservation.CancelByUser, stored.CancelReason())
	s.NotNil(stored.HoldReleasedAt())
	s.Nil(s.f.uow.activePin(res.ID()))
	pins := s.f.uow.pinsOf(res.ID())
	s.Require().Len(pins, 1)
	s.NotNil(pins[0].RevokedAt())
	s.Equal(trailer.StatusAvailable, s.f.uow.trailer(s.tr.ID()).Status())
}

func (s *ReservationCommandsTestSuite) blockingIDs(start, end time.Time) []uuid.UUID {
	period, err := reservation.NewPeriod(start, end)
	s.Require().NoError(err)
	var ids []uuid.UUID
	err = s.f.uow.WithDB(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		found, err := tx.Reservations().FindOverlapping(ctx, s.tr.ID(), period, uuid.Nil)
		for _, r := range found {
			ids = append(ids, r.ID())
		}
		return err
	})
	s.Require().NoError(err)
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	return ids
}

func (s *ReservationCommandsTestSuite) TestCreateThenCancel_LeavesAvailabilityUnchanged() {
	other := s.f.seedRenter(s.T(), "cus_2")
	s.f.seedReservation(s.T(), other, s.tr, at(6, 8), at(8, 8), reservation.StatusConfirmed, "pi_other")
	before := s.blockingIDs(at(1, 0), at(10, 0))
	s.Require().Len(before, 1)

	s.expectAuthorize("pi_1")
	created, err := s.commands.Create(s.ctx, s.renter.ID(), uuid.New(), s.input())
	s.Require().NoError(err)

	s.f.lock.EXPECT().GrantAccess(gomock.Any(), "lock-1", gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.Require().NoError(s.f.paymentCommands().Reconcile(s.ctx, payment.AuthorizationSucceeded{
		ID: "evt_1", AuthorizationID: "pi_1", ReservationID: created.ReservationID,
	}))
	s.Require().Equal(reservation.StatusConfirmed, s.f.uow.reservation(created.ReservationID).Status())
	s.Len(s.blockingIDs(at(1, 0), at(10, 0)), 2)

	s.f.lock.EXPECT().RevokeAccess(gomock.Any(), "lock-1", gomock.Any()).Return(nil)
	s.f.processor.EXPECT().VoidAuthorization(gomock.Any(), "pi_1").Return(nil)
	s.Require().NoError(s.commands.Cancel(s.ctx, s.renter.ID(), created.ReservationID))

	if diff := cmp.Diff(before, s.blockingIDs(at(1, 0), at(10, 0))); diff != "" {
		s.Failf("blocking reservations changed", "(-before +after):\n%s", diff)
	}

	s.Run("the freed slot can be booked again", func() {
		s.expectAuthorize("pi_2")
		again, err := s.commands.Create(s.ctx, s.renter.ID(), uuid.New(), s.input())
		s.Require().NoError(err)
		s.NotEqual(created.ReservationID, again.ReservationID)
	})
}

func (s *ReservationCommandsTestSuite) TestCancel_HoldReleaseFailureIsLeftForSweep() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusPendingPayment, "pi_1")
	s.f.processor.EXPECT().VoidAuthorization(gomock.Any(), "pi_1").Return(errors.New("processor unavailable"))

	err := s.commands.Cancel(s.ctx, s.renter.ID(), res.ID())

	s.Require().NoError(err)
	stored := s.f.uow.reservation(res.ID())
	s.Equal(reservation.StatusCancelled, stored.Status())
	s.True(stored.NeedsHoldRelease())
}

func (s *ReservationCommandsTestSuite) TestCancel_Rejections() {
	active := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusActive, "pi_1")
	cancelled := s.f.seedReservation(s.T(), s.renter, s.tr, at(10, 8), at(11, 8), reservation.StatusCancelled, "")

	tests := []struct {
		name      string
		userID    uuid.UUID
		id        uuid.UUID
		wantErr   error
		wantClass error
	}{
		{name: "active rental", userID: s.renter.ID(), id: active.ID(), wantErr: reservation.ErrCancellationNotPermitted, wantClass: errs.ErrConflict},
		{name: "already cancelled", userID: s.renter.ID(), id: cancelled.ID(), wantErr: reservation.ErrInvalidTransition, wantClass: errs.ErrConflict},
		{name: "someone else's reservation", userID: uuid.New(), id: active.ID(), wantErr: reservation.ErrNotOwnedByUser, wantClass: errs.ErrForbidden},
		{name: "unknown reservation", userID: s.renter.ID(), id: uuid.New(), wantErr: ErrReservationNotFound, wantClass: errs.ErrNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.commands.Cancel(s.ctx, tt.userID, tt.id)

			s.ErrorIs(err, tt.wantErr)
			s.True(errs.Is(err, tt.wantClass))
		})
	}
	s.Equal(reservation.StatusActive, s.f.uow.reservation(active.ID()).Status())
}

func (s *ReservationCommandsTestSuite) TestCancelByOperator_Active() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusActive, "pi_1")
	s.f.seedPin(s.T(), res, "4821", at(5, 0))
	s.f.uow.st.trailers[s.tr.ID()] = trailer.ReconstructTrailer(s.tr.ID(), detailsOf(s.tr), trailer.StatusReserved, baseTime, baseTime)
	s.f.lock.EXPECT().RevokeAccess(gomock.Any(), "lock-1", "4821").Return(nil)
	s.f.processor.EXPECT().VoidAuthorization(gomock.Any(), "pi_1").Return(nil)

	err := s.commands.CancelByOperator(s.ctx, res.ID())

	s.Require().NoError(err)
	stored := s.f.uow.reservation(res.ID())
	s.Equal(reservation.CancelByOperator, stored.CancelReason())
	s.Equal(trailer.StatusAvailable, s.f.uow.trailer(s.tr.ID()).Status())
}

func (s *ReservationCommandsTestSuite) TestCheckIn() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusConfirmed, "pi_1")

	s.Run("before the window opens", func() {
		s.f.clock.Set(at(2, 7))
		err := s.commands.CheckIn(s.ctx, s.renter.ID(), res.ID())

		s.ErrorIs(err, reservation.ErrOutsideCheckInWindow)
		s.True(errs.Is(err, errs.ErrConflict))
	})

	s.Run("inside the window", func() {
		s.f.clock.Set(at(2, 9))
		s.Require().NoError(s.commands.CheckIn(s.ctx, s.renter.ID(), res.ID()))

		stored := s.f.uow.reservation(res.ID())
		s.Equal(reservation.StatusActive, stored.Status())
		s.Require().NotNil(stored.CheckInAt())
		s.True(stored.CheckInAt().Equal(at(2, 9)))
	})

	s.Run("twice", func() {
		err := s.commands.CheckIn(s.ctx, s.renter.ID(), res.ID())
		s.ErrorIs(err, reservation.ErrInvalidTransition)
	})
}

func (s *ReservationCommandsTestSuite) TestCheckOut_CapturesAndCompletes() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusActive, "pi_1")
	s.f.seedPin(s.T(), res, "4821", at(5, 0))
	s.f.clock.Set(at(4, 7))

	gomock.InOrder(
		s.f.photos.EXPECT().PutReturnPhoto(gomock.Any(), res.ID(), "image/jpeg", int64(3), gomock.Any()).
			Return("returns/1.jpg", nil),
		s.f.processor.EXPECT().Capture(gomock.Any(), "pi_1", int64(900), "czk").
			Return(&payment.CaptureResult{CaptureID: "pi_1", CustomerRef: "cus_1", Amount: 900}, nil),
		s.f.processor.EXPECT().CreateInvoice(gomock.Any(), payment.InvoiceRequest{
			CustomerRef:     "cus_1",
			AuthorizationID: "pi_1",
			ReservationID:   res.ID(),
			Currency:        "czk",
		}).Return("in_1", nil),
		s.f.lock.EXPECT().RevokeAccess(gomock.Any(), "lock-1", "4821").Return(nil),
	)

	result, err := s.commands.CheckOut(s.ctx, s.renter.ID(), res.ID(), []ReturnPhoto{
		{ContentType: "image/jpeg", Size: 3, Body: bytes.NewReader([]byte{1, 2, 3})},
	})

	s.Require().NoError(err)
	s.Equal("pi_1", result.CaptureID)
	s.Equal("in_1", result.InvoiceID)
	s.Equal(int64(900), result.TotalPrice)
	s.Equal(int64(900), result.CapturedAmount)
	s.Zero(result.InvoicedAmount)
	s.Equal([]string{"returns/1.jpg"}, result.ReturnPhotos)

	stored := s.f.uow.reservation(res.ID())
	s.Equal(reservation.StatusCompleted, stored.Status())
	s.Equal("in_1", stored.InvoiceID())
	s.Require().NotNil(stored.ActualEnd())
	s.True(stored.ActualEnd().Equal(at(4, 7)))
	s.Nil(s.f.uow.activePin(res.ID()))
}

func (s *ReservationCommandsTestSuite) TestCheckOut_InvoiceFailureStillCompletes() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusActive, "pi_1")
	s.f.processor.EXPECT().Capture(gomock.Any(), "pi_1", int64(900), "czk").
		Return(&payment.CaptureResult{CaptureID: "pi_1", CustomerRef: "cus_1", Amount: 900}, nil)
	s.f.processor.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return("", errors.New("invoice api down"))

	result, err := s.commands.CheckOut(s.ctx, s.renter.ID(), res.ID(), nil)

	s.Require().NoError(err)
	s.Empty(result.InvoiceID)
	s.Zero(result.InvoicedAmount)
	s.Equal(reservation.StatusCompleted, s.f.uow.reservation(res.ID()).Status())
}

func (s *ReservationCommandsTestSuite) TestCheckOut_ExtendedPastHoldInvoicesRemainder() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusActive, "pi_1")
	hold := reservation.HoldAmount(s.tr.Pricing(), res.TotalPrice(), s.f.cfg.Rental.HoldBufferDays).Amount()
	s.Require().Equal(int64(1300), hold)

	s.f.lock.EXPECT().GrantAccess(gomock.Any(), "lock-1", gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	s.f.lock.EXPECT().RevokeAccess(gomock.Any(), "lock-1", gomock.Any()).Return(nil).Times(2)
	sweep := s.f.sweepCommands()
	for _, now := range []time.Time{at(4, 7), at(5, 7)} {
		s.f.clock.Set(now)
		report, err := sweep.AutoExtend(s.ctx)
		s.Require().NoError(err)
		s.Require().Equal(1, report.Extended)
	}
	s.Require().Equal(int64(1700), s.f.uow.reservation(res.ID()).TotalPrice().Amount())

	gomock.InOrder(
		s.f.processor.EXPECT().Capture(gomock.Any(), "pi_1", int64(1700), "czk").
			Return(&payment.CaptureResult{CaptureID: "pi_1", CustomerRef: "cus_1", Amount: hold}, nil),
		s.f.processor.EXPECT().CreateInvoice(gomock.Any(), payment.InvoiceRequest{
			CustomerRef:     "cus_1",
			AuthorizationID: "pi_1",
			ReservationID:   res.ID(),
			Currency:        "czk",
			Outstanding:     400,
		}).Return("in_1", nil),
	)
	s.f.clock.Set(at(6, 6))

	result, err := s.commands.CheckOut(s.ctx, s.renter.ID(), res.ID(), nil)

	s.Require().NoError(err)
	s.Equal(int64(1700), result.TotalPrice)
	s.Equal(hold, result.CapturedAmount)
	s.Equal(int64(400), result.InvoicedAmount)
	s.Equal(result.TotalPrice, result.CapturedAmount+result.InvoicedAmount)
	s.Equal("in_1", s.f.uow.reservation(res.ID()).InvoiceID())
}

func (s *ReservationCommandsTestSuite) TestCheckOut_CaptureAboveRequestedIsRejected() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusActive, "pi_1")
	s.f.processor.EXPECT().Capture(gomock.Any(), "pi_1", int64(900), "czk").
		Return(&payment.CaptureResult{CaptureID: "pi_1", CustomerRef: "cus_1", Amount: 1300}, nil)

	_, err := s.commands.CheckOut(s.ctx, s.renter.ID(), res.ID(), nil)

	reason, ok := errs.PaymentReason(err)
	s.Require().True(ok)
	s.Equal(errs.PaymentProcessorError, reason)
	s.Equal(reservation.StatusActive, s.f.uow.reservation(res.ID()).Status())
}

func (s *ReservationCommandsTestSuite) TestCheckOut_CaptureRejected() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusActive, "pi_1")
	s.f.processor.EXPECT().Capture(gomock.Any(), "pi_1", int64(900), "czk").
		Return(nil, errs.NewPaymentError(errs.PaymentInvalidState, errors.New("requires_payment_method")))

	_, err := s.commands.CheckOut(s.ctx, s.renter.ID(), res.ID(), nil)

	reason, ok := errs.PaymentReason(err)
	s.Require().True(ok)
	s.Equal(errs.PaymentInvalidState, reason)
	s.Equal(reservation.StatusActive, s.f.uow.reservation(res.ID()).Status())
}

func (s *ReservationCommandsTestSuite) TestCheckOut_PhotoUploadFailureStopsBeforeCapture() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusActive, "pi_1")
	s.f.photos.EXPECT().PutReturnPhoto(gomock.Any(), res.ID(), "image/png", int64(1), gomock.Any()).
		Return("", errors.New("bucket missing"))

	_, err := s.commands.CheckOut(s.ctx, s.renter.ID(), res.ID(), []ReturnPhoto{
		{ContentType: "image/png", Size: 1, Body: bytes.NewReader([]byte{1})},
	})

	s.True(errs.Is(err, ErrPhotoUpload))
	s.True(errs.Is(err, errs.ErrExternalService))
}

func (s *ReservationCommandsTestSuite) TestCheckOut_NotActive() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusConfirmed, "pi_1")

	_, err := s.commands.CheckOut(s.ctx, s.renter.ID(), res.ID(), nil)

	s.ErrorIs(err, reservation.ErrInvalidTransition)
	s.True(errs.Is(err, errs.ErrConflict))
}

func (s *ReservationCommandsTestSuite) TestAddReturnPhoto() {
	res := s.f.seedReservation(s.T(), s.renter, s.tr, at(2, 8), at(4, 8), reservation.StatusActive, "pi_1")
	s.f.photos.EXPECT().PutReturnPhoto(gomock.Any(), res.ID(), "image/jpeg", int64(2), gomock.Any()).
		Return("returns/2.jpg", nil)

	key, err := s.commands.AddReturnPhoto(s.ctx, s.renter.ID(), res.ID(), ReturnPhoto{
		ContentType: "image/jpeg", Size: 2, Body: bytes.NewReader([]byte{1, 2}),
	})

	s.Require().NoError(err)
	s.Equal("returns/2.jpg", key)
	s.Equal([]string{"returns/2.jpg"}, s.f.uow.reservation(res.ID()).ReturnPhotos())
}

func TestCalculateRequestHash_IgnoresZone(t *testing.T) {
	c := &reservationCommands{}
	prague, err := time.LoadLocation("Europe/Prague")
	require.NoError(t, err)
	trailerID := uuid.New()

	utc := CreateReservationInput{TrailerID: trailerID, StartAt: at(2, 8), EndAt: at(4, 8)}
	local := CreateReservationInput{TrailerID: trailerID, StartAt: at(2, 8).In(prague), EndAt: at(4, 8).In(prague)}

	assert.Equal(t, c.calculateRequestHash(utc), c.calculateRequestHash(local))
	utc.EndAt = at(5, 8)
	assert.NotEqual(t, c.calculateRequestHash(utc), c.calculateRequestHash(local))
}
