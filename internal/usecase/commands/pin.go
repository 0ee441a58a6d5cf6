package commands

import (
	"context"
	"log/slog"
	"time"

	"trailer-rental/internal/domain/pin"
	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/pkg/clock"
	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/uuid"
)

const revocationBatch = 100

// PinManager owns the lifecycle of lock access codes. Database changes run in
// the caller's transaction; lock calls happen after commit and never fail the
// owning transition.
type PinManager struct {
	uow    shared.UnitOfWork
	lock   LockController
	codes  pin.CodeGenerator
	clock  clock.Clock
	zone   *time.Location
	logger *slog.Logger
}

func NewPinManager(
	uow shared.UnitOfWork,
	lock LockController,
	codes pin.CodeGenerator,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *PinManager {
	return &PinManager{
		uow:    uow,
		lock:   lock,
		codes:  codes,
		clock:  clk,
		zone:   cfg.Rental.Location(),
		logger: logger,
	}
}

// PinChange is what a transaction did to a reservation's codes; Apply pushes
// it to the lock once the transaction has committed.
type PinChange struct {
	Issued      *pin.Pin
	Deactivated []*pin.Pin
}

// Issue replaces the reservation's active PIN with a fresh code valid until
// the end of the return day and mirrors it on the reservation. The caller
// persists the reservation.
func (m *PinManager) Issue(
	ctx context.Context,
	tx shared.Tx,
	res *reservation.Reservation,
	tr *trailer.Trailer,
	now time.Time,
) (PinChange, error) {
	old, err := tx.Pins().DeactivateActive(ctx, res.ID(), now)
	if err != nil {
		return PinChange{}, errs.Wrap(err, "deactivate previous pin")
	}

	code, err := m.codes.Generate()
	if err != nil {
		return PinChange{}, errs.Wrap(err, "generate pin code")
	}

	validUntil := pin.ValidUntilFor(res.Period().End(), tr.TimeZone().LocationOr(m.zone))
	p, err := pin.NewPin(res.ID(), tr.LockID(), code, now, validUntil)
	if err != nil {
		return PinChange{}, domainErr(err)
	}
	if err := tx.Pins().Create(ctx, p); err != nil {
		return PinChange{}, errs.Wrap(err, "create pin")
	}
	if err := res.RecordPin(p.Code(), p.ValidUntil(), now); err != nil {
		return PinChange{}, domainErr(err)
	}
	return PinChange{Issued: p, Deactivated: old}, nil
}

// Deactivate turns off the reservation's active PIN inside the caller's
// transaction.
func (m *PinManager) Deactivate(ctx context.Context, tx shared.Tx, reservationID uuid.UUID, now time.Time) (PinChange, error) {
	old, err := tx.Pins().DeactivateActive(ctx, reservationID, now)
	if err != nil {
		return PinChange{}, errs.Wrap(err, "deactivate pin")
	}
	return PinChange{Deactivated: old}, nil
}

// Apply revokes replaced codes and grants the new one.
func (m *PinManager) Apply(ctx context.Context, change PinChange) {
	for _, p := range change.Deactivated {
		m.revoke(ctx, p)
	}
	if change.Issued != nil {
		p := change.Issued
		if err := m.lock.GrantAccess(ctx, p.LockID(), p.Code(), p.ValidFrom(), p.ValidUntil()); err != nil {
			m.logger.WarnContext(ctx, "lock grant failed",
				slog.String("reservation_id", p.ReservationID().String()),
				slog.String("pin_id", p.ID().String()),
				slog.String("error", err.Error()))
		}
	}
}

// ExpiryResult counts what one expiry pass changed.
type ExpiryResult struct {
	Expired            int
	Revoked            int
	RevocationFailures int
}

// ExpireSweep deactivates every PIN past its validUntil in one statement,
// then retries revocation for every deactivated code the lock has not
// acknowledged. Running it twice in a row changes nothing the second time.
func (m *PinManager) ExpireSweep(ctx context.Context) (ExpiryResult, error) {
	now := m.clock.Now()
	var (
		expired []*pin.Pin
		pending []*pin.Pin
	)
	err := m.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		expired, err = tx.Pins().ExpireDue(ctx, now)
		if err != nil {
			return errs.Wrap(err, "expire due pins")
		}
		pending, err = tx.Pins().FindPendingRevocation(ctx, revocationBatch)
		if err != nil {
			return errs.Wrap(err, "find pins pending revocation")
		}
		return nil
	})
	if err != nil {
		return ExpiryResult{}, err
	}

	result := ExpiryResult{Expired: len(expired)}
	for _, p := range pending {
		if m.revoke(ctx, p) {
			result.Revoked++
		} else {
			result.RevocationFailures++
		}
	}
	return result, nil
}

func (m *PinManager) revoke(ctx context.Context, p *pin.Pin) bool {
	if err := m.lock.RevokeAccess(ctx, p.LockID(), p.Code()); err != nil {
		m.logger.WarnContext(ctx, "lock revocation failed",
			slog.String("reservation_id", p.ReservationID().String()),
			slog.String("pin_id", p.ID().String()),
			slog.Int("attempt", p.RevocationAttempts()+1),
			slog.String("error", err.Error()))
		p.RecordRevocationFailure()
		m.saveRevocation(ctx, p)
		return false
	}
	if err := p.MarkRevoked(m.clock.Now()); err == nil {
		m.saveRevocation(ctx, p)
	}
	return true
}

func (m *PinManager) saveRevocation(ctx context.Context, p *pin.Pin) {
	err := m.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Pins().UpdateRevocation(ctx, p)
	})
	if err != nil {
		m.logger.WarnContext(ctx, "failed to record pin revocation",
			slog.String("pin_id", p.ID().String()),
			slog.String("error", err.Error()))
	}
}
