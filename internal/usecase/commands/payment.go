package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"trailer-rental/internal/domain/payment"
	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/pkg/clock"
	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/uuid"
)

const holdReleaseBatch = 100

// PaymentCoordinator talks to the processor on behalf of the reservation
// lifecycle: hold, capture with invoice, and hold release.
type PaymentCoordinator struct {
	uow       shared.UnitOfWork
	processor PaymentProcessor
	clock     clock.Clock
	rental    config.RentalConfig
	timeout   time.Duration
	logger    *slog.Logger
}

func NewPaymentCoordinator(
	uow shared.UnitOfWork,
	processor PaymentProcessor,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *PaymentCoordinator {
	return &PaymentCoordinator{
		uow:       uow,
		processor: processor,
		clock:     clk,
		rental:    cfg.Rental,
		timeout:   cfg.Payment.AuthorizationTimeout,
		logger:    logger,
	}
}

// AuthorizationRequest builds the hold for a new reservation: total price
// plus the configured buffer of additional days.
func (c *PaymentCoordinator) AuthorizationRequest(
	res *reservation.Reservation,
	tr *trailer.Trailer,
	renter *user.User,
) (payment.AuthorizationRequest, error) {
	hold := reservation.HoldAmount(tr.Pricing(), res.TotalPrice(), c.rental.HoldBufferDays)
	req, err := payment.NewAuthorizationRequest(hold.Amount(), c.rental.Currency, renter.PaymentCustomerID(), res.ID(), renter.ID())
	if err != nil {
		return payment.AuthorizationRequest{}, errs.Mark(err, errs.ErrValidation)
	}
	return req, nil
}

// Authorize places the hold within the configured timeout. Every failure is a
// PaymentError.
func (c *PaymentCoordinator) Authorize(ctx context.Context, req payment.AuthorizationRequest) (*payment.Authorization, error) {
	authCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	auth, err := c.processor.Authorize(authCtx, req)
	if err == nil {
		return auth, nil
	}
	if authCtx.Err() != nil || errs.Is(err, context.DeadlineExceeded) {
		return nil, errs.NewPaymentError(errs.PaymentTimeout, err)
	}
	if _, ok := errs.PaymentReason(err); ok {
		return nil, err
	}
	return nil, errs.NewPaymentError(errs.PaymentProcessorError, err)
}

// Settlement is the outcome of a successful capture. Captured plus
// Outstanding is the reservation total; Outstanding is billed on the invoice.
type Settlement struct {
	CaptureID   string
	InvoiceID   string
	Captured    int64
	Outstanding int64
}

// Capture settles the reservation's current total. The hold covers the booked
// days plus a buffer, so a rental extended past the buffer captures the full
// hold and charges the rest on the closing invoice. A failed invoice is
// logged and leaves InvoiceID empty; the captured money has moved by then.
func (c *PaymentCoordinator) Capture(ctx context.Context, res *reservation.Reservation) (Settlement, error) {
	if res.AuthorizationID() == "" {
		return Settlement{}, errs.NewPaymentError(errs.PaymentInvalidState, reservation.ErrAuthorizationMissing)
	}
	total := res.TotalPrice().Amount()
	result, err := c.processor.Capture(ctx, res.AuthorizationID(), total, c.rental.Currency)
	if err != nil {
		if _, ok := errs.PaymentReason(err); ok {
			return Settlement{}, err
		}
		return Settlement{}, errs.NewPaymentError(errs.PaymentProcessorError, err)
	}
	if result.Amount <= 0 || result.Amount > total {
		return Settlement{}, errs.NewPaymentError(errs.PaymentProcessorError,
			errs.Newf("processor captured %d of %d", result.Amount, total))
	}

	settlement := Settlement{
		CaptureID:   result.CaptureID,
		Captured:    result.Amount,
		Outstanding: total - result.Amount,
	}
	invoiceID, err := c.processor.CreateInvoice(ctx, payment.InvoiceRequest{
		CustomerRef:     result.CustomerRef,
		AuthorizationID: res.AuthorizationID(),
		ReservationID:   res.ID(),
		Currency:        c.rental.Currency,
		Outstanding:     settlement.Outstanding,
	})
	if err != nil {
		level := slog.LevelWarn
		if settlement.Outstanding > 0 {
			level = slog.LevelError
		}
		c.logger.Log(ctx, level, "invoice creation failed after capture",
			slog.String("reservation_id", res.ID().String()),
			slog.String("capture_id", result.CaptureID),
			slog.Int64("outstanding", settlement.Outstanding),
			slog.String("error", err.Error()))
		return settlement, nil
	}
	settlement.InvoiceID = invoiceID
	return settlement, nil
}

// ReleaseHold voids an authorization. With a reservation id it also records
// the release; a failure is logged and left for the sweep.
func (c *PaymentCoordinator) ReleaseHold(ctx context.Context, reservationID uuid.UUID, handle string) bool {
	if strings.TrimSpace(handle) == "" {
		return true
	}
	if err := c.processor.VoidAuthorization(ctx, handle); err != nil {
		c.logger.WarnContext(ctx, "authorization hold release failed",
			slog.String("reservation_id", reservationID.String()),
			slog.String("authorization_id", handle),
			slog.String("error", err.Error()))
		return false
	}
	if reservationID == uuid.Nil {
		return true
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if !res.NeedsHoldRelease() || res.AuthorizationID() != handle {
			return nil
		}
		if err := res.MarkHoldReleased(c.clock.Now()); err != nil {
			return domainErr(err)
		}
		return tx.Reservations().Update(ctx, res)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to record hold release",
			slog.String("reservation_id", reservationID.String()),
			slog.String("error", err.Error()))
	}
	return true
}

// HoldReleaseResult counts one retry pass over cancelled reservations.
type HoldReleaseResult struct {
	Released int
	Failed   int
}

// RetryHoldReleases voids holds that earlier cancellations could not release.
func (c *PaymentCoordinator) RetryHoldReleases(ctx context.Context) (HoldReleaseResult, error) {
	var pending []*reservation.Reservation
	err := c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		ids, err := tx.Reservations().FindPendingHoldRelease(ctx, holdReleaseBatch)
		if err != nil {
			return errs.Wrap(err, "find pending hold releases")
		}
		for _, id := range ids {
			res, err := tx.Reservations().FindByID(ctx, id)
			if err != nil {
				return errs.Wrap(err, "load reservation for hold release")
			}
			pending = append(pending, res)
		}
		return nil
	})
	if err != nil {
		return HoldReleaseResult{}, err
	}

	var result HoldReleaseResult
	for _, res := range pending {
		if c.ReleaseHold(ctx, res.ID(), res.AuthorizationID()) {
			result.Released++
		} else {
			result.Failed++
		}
	}
	return result, nil
}
