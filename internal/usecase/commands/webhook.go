package commands

import (
	"context"
	"log/slog"

	"trailer-rental/internal/domain/payment"
	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/pkg/clock"
	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidWebhook = errs.Mark(errs.New("invalid payment webhook"), errs.ErrValidation)

type PaymentCommands interface {
	// HandleWebhook verifies and applies one processor notification.
	// Unsupported event types are acknowledged without effect.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	// Reconcile applies an already decoded event. Replays are no-ops.
	Reconcile(ctx context.Context, event payment.WebhookEvent) error
}

type paymentCommands struct {
	uow       shared.UnitOfWork
	processor PaymentProcessor
	payments  *PaymentCoordinator
	pins      *PinManager
	clock     clock.Clock
	topic     string
	logger    *slog.Logger
}

var _ payment.EventHandler = (*paymentCommands)(nil)

func NewPaymentCommands(
	uow shared.UnitOfWork,
	processor PaymentProcessor,
	payments *PaymentCoordinator,
	pins *PinManager,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) PaymentCommands {
	return &paymentCommands{
		uow:       uow,
		processor: processor,
		payments:  payments,
		pins:      pins,
		clock:     clk,
		topic:     cfg.Kafka.Topic,
		logger:    logger,
	}
}

func (c *paymentCommands) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := c.processor.ParseWebhook(payload, signature)
	if err != nil {
		if errs.Is(err, payment.ErrUnsupportedEvent) {
			c.logger.DebugContext(ctx, "ignoring unsupported payment event", slog.String("error", err.Error()))
			return nil
		}
		return errs.Mark(errs.Wrap(err, "parse payment webhook"), ErrInvalidWebhook)
	}
	return c.Reconcile(ctx, event)
}

func (c *paymentCommands) Reconcile(ctx context.Context, event payment.WebhookEvent) error {
	c.logger.InfoContext(ctx, "reconciling payment event", slog.String("event_id", event.EventID()))
	return event.Accept(ctx, c)
}

// HandleAuthorizationSucceeded confirms a pending reservation under the
// trailer lock. Losing the availability race cancels it as unavailable and
// voids the hold. A success for a reservation that is already cancelled only
// voids the hold.
func (c *paymentCommands) HandleAuthorizationSucceeded(ctx context.Context, e payment.AuthorizationSucceeded) error {
	var (
		change    PinChange
		release   string
		releaseID uuid.UUID
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		change, release, releaseID = PinChange{}, "", uuid.Nil

		res, err := c.find(ctx, tx, e.ReservationID, e.AuthorizationID)
		if err != nil || res == nil {
			return err
		}

		now := c.clock.Now()
		switch res.Status() {
		case reservation.StatusPendingPayment:
		case reservation.StatusCancelled:
			switch {
			case res.AuthorizationID() != e.AuthorizationID:
				release = e.AuthorizationID
			case res.NeedsHoldRelease():
				release, releaseID = res.AuthorizationID(), res.ID()
			}
			return nil
		default:
			if res.AuthorizationID() != e.AuthorizationID {
				release = e.AuthorizationID
			}
			return nil
		}

		if res.AuthorizationID() != "" && res.AuthorizationID() != e.AuthorizationID {
			c.logger.WarnContext(ctx, "authorization does not match pending reservation",
				slog.String("reservation_id", res.ID().String()),
				slog.String("authorization_id", e.AuthorizationID))
			release = e.AuthorizationID
			return nil
		}

		tr, err := tx.Trailers().LockByID(ctx, res.TrailerID())
		if err != nil {
			return notFound(err, ErrTrailerNotFound)
		}
		conflicts, err := tx.Reservations().FindOverlapping(ctx, tr.ID(), res.Period(), res.ID())
		if err != nil {
			return errs.Wrap(err, "re-check availability")
		}

		if len(conflicts) > 0 || tr.InMaintenance() {
			if err := res.AttachAuthorization(e.AuthorizationID, now); err != nil {
				return domainErr(err)
			}
			if err := res.Cancel(reservation.CancelUnavailable, now); err != nil {
				return domainErr(err)
			}
			if err := tx.Reservations().Update(ctx, res); err != nil {
				return err
			}
			release, releaseID = res.AuthorizationID(), res.ID()
			return enqueueNotification(ctx, tx, c.topic, EventReservationCancelled, res, tr, now)
		}

		if err := res.Confirm(e.AuthorizationID, now); err != nil {
			return domainErr(err)
		}
		if change, err = c.pins.Issue(ctx, tx, res, tr, now); err != nil {
			return err
		}
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return err
		}
		if err := refreshTrailerStatus(ctx, tx, tr.ID(), false, now); err != nil {
			return err
		}
		return enqueueNotification(ctx, tx, c.topic, EventReservationConfirmed, res, tr, now)
	})
	if err != nil {
		return err
	}

	c.pins.Apply(ctx, change)
	if release != "" {
		c.payments.ReleaseHold(ctx, releaseID, release)
	}
	return nil
}

// HandleAuthorizationFailed cancels a reservation still waiting for payment.
func (c *paymentCommands) HandleAuthorizationFailed(ctx context.Context, e payment.AuthorizationFailed) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.find(ctx, tx, e.ReservationID, e.AuthorizationID)
		if err != nil || res == nil {
			return err
		}
		if res.Status() != reservation.StatusPendingPayment {
			return nil
		}
		if res.AuthorizationID() != "" && res.AuthorizationID() != e.AuthorizationID {
			return nil
		}
		if err := res.Cancel(reservation.CancelPaymentFailed, c.clock.Now()); err != nil {
			return domainErr(err)
		}
		c.logger.InfoContext(ctx, "reservation cancelled after failed payment",
			slog.String("reservation_id", res.ID().String()),
			slog.String("reason", e.FailureMessage))
		return tx.Reservations().Update(ctx, res)
	})
}

// find resolves the event's reservation by id, then by authorization handle.
// An unknown reservation yields nil so the processor stops redelivering.
func (c *paymentCommands) find(ctx context.Context, tx shared.Tx, reservationID uuid.UUID, authorizationID string) (*reservation.Reservation, error) {
	var (
		res *reservation.Reservation
		err error
	)
	if reservationID != uuid.Nil {
		res, err = tx.Reservations().FindByID(ctx, reservationID)
	} else {
		res, err = tx.Reservations().FindByAuthorizationID(ctx, authorizationID)
	}
	if err == nil {
		return res, nil
	}
	if errs.Is(err, errs.ErrNotFound) {
		c.logger.WarnContext(ctx, "payment event for unknown reservation",
			slog.String("reservation_id", reservationID.String()),
			slog.String("authorization_id", authorizationID))
		return nil, nil
	}
	return nil, err
}
