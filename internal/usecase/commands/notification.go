package commands

import (
	"context"
	"encoding/json"
	"time"

	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	NotificationKindEmail          = "email"
	EventReservationConfirmed      = "reservation.confirmed"
	EventReservationCancelled      = "reservation.cancelled_unavailable"
	notificationPayloadVersion int = 1
)

// ReservationNotification is the outbox payload consumed by the mailer.
type ReservationNotification struct {
	Version        int       `json:"version"`
	Event          string    `json:"event"`
	ReservationID  uuid.UUID `json:"reservationId"`
	UserID         uuid.UUID `json:"userId"`
	TrailerID      uuid.UUID `json:"trailerId"`
	TrailerName    string    `json:"trailerName"`
	TrailerAddress string    `json:"trailerAddress"`
	StartAt        time.Time `json:"startAt"`
	EndAt          time.Time `json:"endAt"`
	TotalPrice     int64     `json:"totalPrice"`
	PinCode        string    `json:"pinCode,omitempty"`
	CancelReason   string    `json:"cancelReason,omitempty"`
}

// enqueueNotification writes the job in the caller's transaction so it is
// published only if the transition commits.
func enqueueNotification(
	ctx context.Context,
	tx shared.Tx,
	topic, event string,
	res *reservation.Reservation,
	tr *trailer.Trailer,
	now time.Time,
) error {
	payload, err := json.Marshal(ReservationNotification{
		Version:        notificationPayloadVersion,
		Event:          event,
		ReservationID:  res.ID(),
		UserID:         res.UserID(),
		TrailerID:      tr.ID(),
		TrailerName:    tr.Name(),
		TrailerAddress: tr.Location().Address(),
		StartAt:        res.Period().Start(),
		EndAt:          res.Period().End(),
		TotalPrice:     res.TotalPrice().Amount(),
		PinCode:        res.PinCode(),
		CancelReason:   res.CancelReason().String(),
	})
	if err != nil {
		return errs.Wrap(err, "encode notification")
	}
	if err := tx.Notifications().CreateJob(ctx, NotificationKindEmail, topic, payload, now); err != nil {
		return errs.Wrap(err, "enqueue notification")
	}
	return nil
}
