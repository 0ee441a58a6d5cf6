package commands

import (
	"context"
	"log/slog"
	"time"

	"trailer-rental/internal/pkg/clock"
	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/uuid"
)

const extensionLookahead = 24 * time.Hour

// ItemFailure is one reservation a batch could not process.
type ItemFailure struct {
	ReservationID uuid.UUID `json:"reservationId"`
	Error         string    `json:"error"`
}

type AutoExtendReport struct {
	Checked  int           `json:"checked"`
	Extended int           `json:"extended"`
	Skipped  int           `json:"skipped"`
	Failures []ItemFailure `json:"failures"`
}

type ExpiryReport struct {
	ExpiredPins         int `json:"expiredPins"`
	RevokedPins         int `json:"revokedPins"`
	RevocationFailures  int `json:"revocationFailures"`
	HoldsReleased       int `json:"holdsReleased"`
	HoldReleaseFailures int `json:"holdReleaseFailures"`
}

// SweepCommands are the scheduled triggers. Both are safe to run repeatedly
// and concurrently.
type SweepCommands interface {
	AutoExtend(ctx context.Context) (*AutoExtendReport, error)
	ExpirePins(ctx context.Context) (*ExpiryReport, error)
}

type sweepCommands struct {
	uow      shared.UnitOfWork
	pins     *PinManager
	payments *PaymentCoordinator
	clock    clock.Clock
	zone     *time.Location
	logger   *slog.Logger
}

func NewSweepCommands(
	uow shared.UnitOfWork,
	pins *PinManager,
	payments *PaymentCoordinator,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) SweepCommands {
	return &sweepCommands{
		uow:      uow,
		pins:     pins,
		payments: payments,
		clock:    clk,
		zone:     cfg.Rental.Location(),
		logger:   logger,
	}
}

// AutoExtend pushes every active rental ending within a day by one calendar
// day and re-issues its PIN. Each reservation runs in its own transaction so
// one failure never blocks the rest.
func (s *sweepCommands) AutoExtend(ctx context.Context) (*AutoExtendReport, error) {
	now := s.clock.Now()

	var ids []uuid.UUID
	err := s.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Reservations().FindActiveEndingBefore(ctx, now.Add(extensionLookahead))
		return err
	})
	if err != nil {
		return nil, errs.Wrap(err, "find reservations due for extension")
	}

	report := &AutoExtendReport{Checked: len(ids), Failures: []ItemFailure{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		extended, err := s.extendOne(ctx, id, now)
		switch {
		case err != nil:
			s.logger.ErrorContext(ctx, "auto-extension failed",
				slog.String("reservation_id", id.String()),
				slog.String("error", err.Error()))
			report.Failures = append(report.Failures, ItemFailure{ReservationID: id, Error: err.Error()})
		case extended:
			report.Extended++
		default:
			report.Skipped++
		}
	}

	s.logger.InfoContext(ctx, "auto-extension finished",
		slog.Int("checked", report.Checked),
		slog.Int("extended", report.Extended),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", len(report.Failures)))
	return report, nil
}

func (s *sweepCommands) extendOne(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	var (
		change   PinChange
		extended bool
	)
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		change, extended = PinChange{}, false
		res, err := tx.Reservations().FindByID(ctx, id)
		if err != nil {
			return err
		}
		tr, err := tx.Trailers().FindByID(ctx, res.TrailerID())
		if err != nil {
			return err
		}

		loc := tr.TimeZone().LocationOr(s.zone)
		if !res.IsDueForExtension(now, loc) {
			return nil
		}
		if err := res.Extend(tr.Pricing(), now, loc); err != nil {
			return domainErr(err)
		}
		if change, err = s.pins.Issue(ctx, tx, res, tr, now); err != nil {
			return err
		}
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return err
		}
		extended = true
		return nil
	})
	if err != nil {
		return false, err
	}
	s.pins.Apply(ctx, change)
	return extended, nil
}

// ExpirePins deactivates expired codes, retries lock revocations, and
// retries hold releases left behind by earlier cancellations.
func (s *sweepCommands) ExpirePins(ctx context.Context) (*ExpiryReport, error) {
	expiry, err := s.pins.ExpireSweep(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "expire pins")
	}
	holds, err := s.payments.RetryHoldReleases(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "retry hold releases")
	}

	report := &ExpiryReport{
		ExpiredPins:         expiry.Expired,
		RevokedPins:         expiry.Revoked,
		RevocationFailures:  expiry.RevocationFailures,
		HoldsReleased:       holds.Released,
		HoldReleaseFailures: holds.Failed,
	}
	s.logger.InfoContext(ctx, "expiry sweep finished",
		slog.Int("expired", report.ExpiredPins),
		slog.Int("revoked", report.RevokedPins),
		slog.Int("revocation_failures", report.RevocationFailures),
		slog.Int("holds_released", report.HoldsReleased),
		slog.Int("hold_release_failures", report.HoldReleaseFailures))
	return report, nil
}
