package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"trailer-rental/internal/domain/payment"
	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/pkg/clock"
	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	createReservationEndpoint = "POST /api/reservations"
	attachAttempts            = 3
)

type CreateReservationInput struct {
	TrailerID    uuid.UUID `json:"trailerId"`
	StartAt      time.Time `json:"startAt"`
	EndAt        time.Time `json:"endAt"`
	CompanyTaxID *string   `json:"companyTaxId,omitempty"`
}

type CreateReservationResult struct {
	ReservationID uuid.UUID
	Status        reservation.Status
	TotalPrice    int64
	HoldAmount    int64
	// ClientSecret lets the app confirm the card hold. Replays do not carry
	// it because the processor only returns it once.
	ClientSecret string
	IsReplayed   bool
}

// ReturnPhoto is one image uploaded at check-out.
type ReturnPhoto struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

type CheckOutResult struct {
	CaptureID  string
	InvoiceID  string
	TotalPrice int64
	// CapturedAmount came off the hold; InvoicedAmount is the remainder
	// charged on the invoice.
	CapturedAmount int64
	InvoicedAmount int64
	ReturnPhotos   []string
}

type ReservationCommands interface {
	Create(ctx context.Context, userID, idempotencyKey uuid.UUID, in CreateReservationInput) (*CreateReservationResult, error)
	Cancel(ctx context.Context, userID, reservationID uuid.UUID) error
	CancelByOperator(ctx context.Context, reservationID uuid.UUID) error
	CheckIn(ctx context.Context, userID, reservationID uuid.UUID) error
	CheckOut(ctx context.Context, userID, reservationID uuid.UUID, photos []ReturnPhoto) (*CheckOutResult, error)
	AddReturnPhoto(ctx context.Context, userID, reservationID uuid.UUID, photo ReturnPhoto) (string, error)
}

type reservationCommands struct {
	uow      shared.UnitOfWork
	payments *PaymentCoordinator
	pins     *PinManager
	photos   PhotoStorage
	clock    clock.Clock
	rental   config.RentalConfig
	logger   *slog.Logger
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	payments *PaymentCoordinator,
	pins *PinManager,
	photos PhotoStorage,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) ReservationCommands {
	return &reservationCommands{
		uow:      uow,
		payments: payments,
		pins:     pins,
		photos:   photos,
		clock:    clk,
		rental:   cfg.Rental,
		logger:   logger,
	}
}

// Create books a trailer: the reservation is stored as pending_payment, the
// card hold is requested, and the handle attached. Availability here is
// advisory; the binding check happens at confirmation.
func (c *reservationCommands) Create(
	ctx context.Context,
	userID, idempotencyKey uuid.UUID,
	in CreateReservationInput,
) (*CreateReservationResult, error) {
	requestHash := c.calculateRequestHash(in)

	replay, err := c.handleIdempotency(ctx, idempotencyKey, userID, requestHash)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	res, authReq, err := c.createPending(ctx, userID, in)
	if err != nil {
		c.releaseKey(ctx, idempotencyKey, userID)
		return nil, err
	}

	auth, authErr := c.payments.Authorize(ctx, authReq)
	if authErr != nil {
		if err := c.cancelAfterFailedAuthorization(ctx, res.ID(), idempotencyKey, userID); err != nil {
			return nil, errs.Wrap(err, "cancel reservation after failed authorization")
		}
		return nil, authErr
	}

	res, cancelled, err := c.attachAuthorization(ctx, res.ID(), idempotencyKey, userID, auth.Handle)
	if err != nil {
		return nil, errs.Wrap(err, "attach authorization")
	}
	if cancelled {
		c.payments.ReleaseHold(ctx, uuid.Nil, auth.Handle)
		return nil, ErrCancelledDuringAuth
	}

	return &CreateReservationResult{
		ReservationID: res.ID(),
		Status:        res.Status(),
		TotalPrice:    res.TotalPrice().Amount(),
		HoldAmount:    authReq.Amount,
		ClientSecret:  auth.ClientSecret,
	}, nil
}

// attachAuthorization records the hold handle on the pending reservation and
// completes the idempotency key. A payment webhook may confirm or cancel the
// reservation in between; a version conflict re-reads and tries again, and a
// reservation already carrying the handle is taken as is.
func (c *reservationCommands) attachAuthorization(
	ctx context.Context,
	reservationID, idempotencyKey, userID uuid.UUID,
	handle string,
) (*reservation.Reservation, bool, error) {
	var (
		res       *reservation.Reservation
		cancelled bool
		err       error
	)
	for attempt := 1; ; attempt++ {
		err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			cancelled = false
			current, err := tx.Reservations().FindByID(ctx, reservationID)
			if err != nil {
				return err
			}
			switch {
			case current.AuthorizationID() == handle:
			case current.Status() == reservation.StatusCancelled:
				cancelled = true
			default:
				if err := current.AttachAuthorization(handle, c.clock.Now()); err != nil {
					return domainErr(err)
				}
				if err := tx.Reservations().Update(ctx, current); err != nil {
					return err
				}
			}
			res = current
			return tx.Idempotency().UpdateStatusCompleted(ctx, idempotencyKey, userID, current.ID())
		})
		if err == nil || !infra.IsKind(err, infra.KindConflict) || attempt == attachAttempts {
			break
		}
		c.logger.DebugContext(ctx, "reservation changed while attaching authorization",
			slog.String("reservation_id", reservationID.String()),
			slog.Int("attempt", attempt))
	}
	return res, cancelled, err
}

func (c *reservationCommands) handleIdempotency(
	ctx context.Context,
	idempotencyKey, userID uuid.UUID,
	requestHash string,
) (*CreateReservationResult, error) {
	now := c.clock.Now()
	expiresAt := now.Add(c.rental.IdempotencyTTL)

	var replayID *uuid.UUID
	err := c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		inserted, err := tx.Idempotency().TryInsert(ctx, idempotencyKey, userID, createReservationEndpoint, requestHash, expiresAt)
		if err != nil || inserted {
			return err
		}

		existing, err := tx.Idempotency().Get(ctx, idempotencyKey, userID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				// released between insert and read
				return ErrIdempotencyInProgress
			}
			return err
		}

		if !existing.ExpiresAt.After(now) {
			claimed, err := tx.Idempotency().ClaimExpired(ctx, idempotencyKey, userID, requestHash, now, expiresAt)
			if err != nil {
				return err
			}
			if !claimed {
				return ErrIdempotencyInProgress
			}
			return nil
		}

		if existing.RequestHash != requestHash {
			return ErrIdempotencyKeyReused
		}
		switch existing.Status {
		case shared.IdempotencyCompleted:
			if existing.ResultReservationID == nil {
				return errs.New("completed idempotency key has no reservation")
			}
			replayID = existing.ResultReservationID
			return nil
		case shared.IdempotencyProcessing:
			return ErrIdempotencyInProgress
		default:
			return errs.Newf("unknown idempotency key status %q", existing.Status)
		}
	})
	if err != nil {
		return nil, err
	}
	if replayID == nil {
		return nil, nil
	}

	var res *reservation.Reservation
	var tr *trailer.Trailer
	err = c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		if res, err = tx.Reservations().FindByID(ctx, *replayID); err != nil {
			return notFound(err, ErrReservationNotFound)
		}
		if tr, err = tx.Trailers().FindByID(ctx, res.TrailerID()); err != nil {
			return notFound(err, ErrTrailerNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CreateReservationResult{
		ReservationID: res.ID(),
		Status:        res.Status(),
		TotalPrice:    res.TotalPrice().Amount(),
		HoldAmount:    reservation.HoldAmount(tr.Pricing(), res.TotalPrice(), c.rental.HoldBufferDays).Amount(),
		IsReplayed:    true,
	}, nil
}

func (c *reservationCommands) createPending(
	ctx context.Context,
	userID uuid.UUID,
	in CreateReservationInput,
) (*reservation.Reservation, payment.AuthorizationRequest, error) {
	period, err := reservation.NewPeriod(in.StartAt, in.EndAt)
	if err != nil {
		return nil, payment.AuthorizationRequest{}, domainErr(err)
	}
	taxID, err := user.NewOptionalTaxID(in.CompanyTaxID)
	if err != nil {
		return nil, payment.AuthorizationRequest{}, domainErr(err)
	}

	var (
		res     *reservation.Reservation
		authReq payment.AuthorizationRequest
	)
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		renter, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return notFound(err, ErrProfileRequired)
		}
		if !renter.IsActive() {
			return ErrUserInactive
		}
		if !renter.HasPaymentCustomer() {
			return ErrProfileRequired
		}

		tr, err := tx.Trailers().FindByID(ctx, in.TrailerID)
		if err != nil {
			return notFound(err, ErrTrailerNotFound)
		}

		res, err = reservation.NewReservation(userID, tr, period, taxID, c.clock.Now())
		if err != nil {
			return domainErr(err)
		}

		conflicts, err := tx.Reservations().FindOverlapping(ctx, tr.ID(), period, uuid.Nil)
		if err != nil {
			return errs.Wrap(err, "check availability")
		}
		if len(conflicts) > 0 {
			return ErrTrailerUnavailable
		}

		if authReq, err = c.payments.AuthorizationRequest(res, tr, renter); err != nil {
			return err
		}
		return tx.Reservations().Create(ctx, res)
	})
	if err != nil {
		return nil, payment.AuthorizationRequest{}, err
	}
	return res, authReq, nil
}

func (c *reservationCommands) cancelAfterFailedAuthorization(ctx context.Context, reservationID, idempotencyKey, userID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status() == reservation.StatusPendingPayment {
			if err := res.Cancel(reservation.CancelAuthorizationFailed, c.clock.Now()); err != nil {
				return domainErr(err)
			}
			if err := tx.Reservations().Update(ctx, res); err != nil {
				return err
			}
		}
		return tx.Idempotency().UpdateStatusCompleted(ctx, idempotencyKey, userID, reservationID)
	})
}

func (c *reservationCommands) releaseKey(ctx context.Context, idempotencyKey, userID uuid.UUID) {
	err := c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().Release(ctx, idempotencyKey, userID)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to release idempotency key",
			slog.String("idempotency_key", idempotencyKey.String()),
			slog.String("error", err.Error()))
	}
}

// Cancel is the renter's cancellation. Only reservations that have not been
// picked up can be cancelled from the app.
func (c *reservationCommands) Cancel(ctx context.Context, userID, reservationID uuid.UUID) error {
	return c.cancel(ctx, reservationID, func(res *reservation.Reservation, now time.Time) error {
		return res.CancelByRenter(userID, now)
	})
}

// CancelByOperator cancels any non-terminal reservation, including one that
// is already active.
func (c *reservationCommands) CancelByOperator(ctx context.Context, reservationID uuid.UUID) error {
	return c.cancel(ctx, reservationID, func(res *reservation.Reservation, now time.Time) error {
		return res.Cancel(reservation.CancelByOperator, now)
	})
}

func (c *reservationCommands) cancel(
	ctx context.Context,
	reservationID uuid.UUID,
	transition func(*reservation.Reservation, time.Time) error,
) error {
	var (
		release string
		change  PinChange
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		release, change = "", PinChange{}
		res, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return notFound(err, ErrReservationNotFound)
		}
		wasBlocking := res.Status().BlocksAvailability()
		now := c.clock.Now()
		if err := transition(res, now); err != nil {
			return domainErr(err)
		}
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return err
		}
		if change, err = c.pins.Deactivate(ctx, tx, res.ID(), now); err != nil {
			return err
		}
		if wasBlocking {
			if err := refreshTrailerStatus(ctx, tx, res.TrailerID(), false, now); err != nil {
				return err
			}
		}
		if res.NeedsHoldRelease() {
			release = res.AuthorizationID()
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.pins.Apply(ctx, change)
	if release != "" {
		c.payments.ReleaseHold(ctx, reservationID, release)
	}
	return nil
}

func (c *reservationCommands) CheckIn(ctx context.Context, userID, reservationID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.loadOwned(ctx, tx, userID, reservationID)
		if err != nil {
			return err
		}
		if err := res.CheckIn(c.clock.Now(), c.rental.CheckInGrace); err != nil {
			return domainErr(err)
		}
		return tx.Reservations().Update(ctx, res)
	})
}

// CheckOut stores the return photos, settles the current total, and
// completes the rental.
func (c *reservationCommands) CheckOut(
	ctx context.Context,
	userID, reservationID uuid.UUID,
	photos []ReturnPhoto,
) (*CheckOutResult, error) {
	var res *reservation.Reservation
	err := c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		res, err = c.loadOwned(ctx, tx, userID, reservationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Status() != reservation.StatusActive {
		return nil, domainErr(reservation.ErrInvalidTransition)
	}
	if res.CaptureID() != "" {
		return nil, domainErr(reservation.ErrPaymentAlreadySettled)
	}

	keys := make([]string, 0, len(photos))
	for _, p := range photos {
		key, err := c.storePhoto(ctx, reservationID, p)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	settlement, err := c.payments.Capture(ctx, res)
	if err != nil {
		return nil, err
	}

	var change PinChange
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		change = PinChange{}
		current, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		now := c.clock.Now()
		for _, key := range keys {
			if err := current.AddReturnPhoto(key, now); err != nil {
				return domainErr(err)
			}
		}
		if err := current.Complete(settlement.CaptureID, settlement.InvoiceID, now); err != nil {
			return domainErr(err)
		}
		if err := tx.Reservations().Update(ctx, current); err != nil {
			return err
		}
		if change, err = c.pins.Deactivate(ctx, tx, current.ID(), now); err != nil {
			return err
		}
		res = current
		return refreshTrailerStatus(ctx, tx, current.TrailerID(), false, now)
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "captured payment but failed to complete reservation",
			slog.String("reservation_id", reservationID.String()),
			slog.String("capture_id", settlement.CaptureID),
			slog.String("error", err.Error()))
		return nil, errs.Wrap(err, "complete reservation")
	}

	c.pins.Apply(ctx, change)
	result := &CheckOutResult{
		CaptureID:      settlement.CaptureID,
		InvoiceID:      settlement.InvoiceID,
		TotalPrice:     res.TotalPrice().Amount(),
		CapturedAmount: settlement.Captured,
		ReturnPhotos:   res.ReturnPhotos(),
	}
	if settlement.InvoiceID != "" {
		result.InvoicedAmount = settlement.Outstanding
	}
	return result, nil
}

func (c *reservationCommands) AddReturnPhoto(
	ctx context.Context,
	userID, reservationID uuid.UUID,
	photo ReturnPhoto,
) (string, error) {
	err := c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.loadOwned(ctx, tx, userID, reservationID)
		if err != nil {
			return err
		}
		if res.Status() != reservation.StatusActive {
			return domainErr(reservation.ErrInvalidTransition)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	key, err := c.storePhoto(ctx, reservationID, photo)
	if err != nil {
		return "", err
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := res.AddReturnPhoto(key, c.clock.Now()); err != nil {
			return domainErr(err)
		}
		return tx.Reservations().Update(ctx, res)
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (c *reservationCommands) storePhoto(ctx context.Context, reservationID uuid.UUID, p ReturnPhoto) (string, error) {
	key, err := c.photos.PutReturnPhoto(ctx, reservationID, p.ContentType, p.Size, p.Body)
	if err != nil {
		return "", errs.Mark(errs.Wrap(err, "upload return photo"), ErrPhotoUpload)
	}
	return key, nil
}

func (c *reservationCommands) loadOwned(ctx context.Context, tx shared.Tx, userID, reservationID uuid.UUID) (*reservation.Reservation, error) {
	res, err := tx.Reservations().FindByID(ctx, reservationID)
	if err != nil {
		return nil, notFound(err, ErrReservationNotFound)
	}
	if !res.IsOwnedBy(userID) {
		return nil, domainErr(reservation.ErrNotOwnedByUser)
	}
	return res, nil
}

func (c *reservationCommands) calculateRequestHash(in CreateReservationInput) string {
	in.StartAt = in.StartAt.UTC()
	in.EndAt = in.EndAt.UTC()
	data, _ := json.Marshal(in)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
