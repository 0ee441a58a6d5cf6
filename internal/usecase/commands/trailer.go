package commands

import (
	"context"
	"time"

	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/pkg/clock"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/uuid"
)

// statusHorizon bounds the look-ahead used to decide whether a trailer still
// has bookings.
const statusHorizon = 10 * 365 * 24 * time.Hour

type CreateTrailerInput struct {
	Name          string
	Kind          string
	Manufacturer  string
	LicensePlate  string
	Lat           float64
	Lng           float64
	Address       string
	PriceOneDay   int64
	PriceTwoDays  int64
	PriceExtraDay int64
	LockID        string
	TimeZone      string
}

type TrailerCommands interface {
	Create(ctx context.Context, in CreateTrailerInput) (uuid.UUID, error)
	// SetStatus is the operator override; only maintenance and available
	// can be set by hand.
	SetStatus(ctx context.Context, trailerID uuid.UUID, status string) error
}

type trailerCommands struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewTrailerCommands(uow shared.UnitOfWork, clk clock.Clock) TrailerCommands {
	return &trailerCommands{uow: uow, clock: clk}
}

func (c *trailerCommands) Create(ctx context.Context, in CreateTrailerInput) (uuid.UUID, error) {
	pricing, err := trailer.NewPricing(in.PriceOneDay, in.PriceTwoDays, in.PriceExtraDay)
	if err != nil {
		return uuid.Nil, domainErr(err)
	}
	loc, err := trailer.NewLocation(in.Lat, in.Lng, in.Address)
	if err != nil {
		return uuid.Nil, domainErr(err)
	}
	tz, err := trailer.NewTimeZone(in.TimeZone)
	if err != nil {
		return uuid.Nil, domainErr(err)
	}
	tr, err := trailer.NewTrailer(trailer.Details{
		Name:         in.Name,
		Kind:         in.Kind,
		Manufacturer: in.Manufacturer,
		LicensePlate: in.LicensePlate,
		Location:     loc,
		Pricing:      pricing,
		LockID:       in.LockID,
		TimeZone:     tz,
	})
	if err != nil {
		return uuid.Nil, domainErr(err)
	}

	err = c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Trailers().Create(ctx, tr)
	})
	if err != nil {
		return uuid.Nil, errs.Wrap(err, "create trailer")
	}
	return tr.ID(), nil
}

func (c *trailerCommands) SetStatus(ctx context.Context, trailerID uuid.UUID, status string) error {
	st, err := trailer.NewStatus(status)
	if err != nil {
		return domainErr(err)
	}
	if st == trailer.StatusReserved {
		return errs.Mark(errs.New("reserved status is derived from bookings"), errs.ErrValidation)
	}

	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Trailers().LockByID(ctx, trailerID); err != nil {
			return notFound(err, ErrTrailerNotFound)
		}
		now := c.clock.Now()
		if st == trailer.StatusAvailable {
			return refreshTrailerStatus(ctx, tx, trailerID, true, now)
		}
		return tx.Trailers().UpdateStatus(ctx, trailerID, st, now)
	})
}

// refreshTrailerStatus recomputes the advisory status from bookings that
// have not ended yet. Maintenance sticks unless clearMaintenance is set.
func refreshTrailerStatus(ctx context.Context, tx shared.Tx, trailerID uuid.UUID, clearMaintenance bool, now time.Time) error {
	tr, err := tx.Trailers().FindByID(ctx, trailerID)
	if err != nil {
		return notFound(err, ErrTrailerNotFound)
	}
	if tr.InMaintenance() && !clearMaintenance {
		return nil
	}

	horizon, err := reservation.NewPeriod(now, now.Add(statusHorizon))
	if err != nil {
		return domainErr(err)
	}
	booked, err := tx.Reservations().FindOverlapping(ctx, trailerID, horizon, uuid.Nil)
	if err != nil {
		return errs.Wrap(err, "find bookings for trailer status")
	}

	status := trailer.StatusAvailable
	if len(booked) > 0 {
		status = trailer.StatusReserved
	}
	if status == tr.Status() {
		return nil
	}
	return tx.Trailers().UpdateStatus(ctx, trailerID, status, now)
}
