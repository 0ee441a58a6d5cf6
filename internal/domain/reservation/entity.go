package reservation

import (
	"errors"
	"strings"
	"time"

	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/domain/user"

	"github.com/google/uuid"
)

var (
	ErrInvalidPeriod            = errors.New("start must be before end")
	ErrPeriodInPast             = errors.New("reservation period has already ended")
	ErrInvalidStatus            = errors.New("invalid reservation status")
	ErrInvalidTransition        = errors.New("transition not allowed from current status")
	ErrOutsideCheckInWindow     = errors.New("check-in outside the reservation window")
	ErrNotDueForExtension       = errors.New("reservation is not due for extension")
	ErrAlreadyExtendedToday     = errors.New("reservation already extended today")
	ErrAuthorizationMissing     = errors.New("reservation has no payment authorization")
	ErrAuthorizationMismatch    = errors.New("authorization does not belong to reservation")
	ErrPaymentAlreadySettled    = errors.New("payment already captured")
	ErrTrailerUnderMaintenance  = errors.New("trailer is under maintenance")
	ErrInvalidPin               = errors.New("pin code must have four digits")
	ErrHoldAlreadyReleased      = errors.New("authorization hold already released")
	ErrReturnPhotoKeyRequired   = errors.New("return photo key is required")
	ErrNotOwnedByUser           = errors.New("reservation belongs to another user")
	ErrCancellationNotPermitted = errors.New("reservation cannot be cancelled by the renter once active")
)

type Reservation struct {
	id              uuid.UUID
	userID          uuid.UUID
	trailerID       uuid.UUID
	status          Status
	period          Period
	actualEnd       *time.Time
	totalPrice      Money
	taxID           *user.TaxID
	pinCode         string
	pinExpiry       *time.Time
	authorizationID string
	captureID       string
	invoiceID       string
	checkInAt       *time.Time
	checkOutAt      *time.Time
	cancelReason    CancelReason
	holdReleasedAt  *time.Time
	lastExtendedOn  *time.Time
	returnPhotos    []string
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewReservation creates a pending_payment reservation priced from the
// trailer's tariff. Availability is checked by the caller and is advisory here.
func NewReservation(
	userID uuid.UUID,
	tr *trailer.Trailer,
	period Period,
	taxID *user.TaxID,
	now time.Time,
) (*Reservation, error) {
	if tr.InMaintenance() {
		return nil, ErrTrailerUnderMaintenance
	}
	if !period.End().After(now) {
		return nil, ErrPeriodInPast
	}

	return &Reservation{
		id:           uuid.New(),
		userID:       userID,
		trailerID:    tr.ID(),
		status:       StatusPendingPayment,
		period:       period,
		totalPrice:   PriceFor(tr.Pricing(), period),
		taxID:        taxID,
		returnPhotos: []string{},
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Snapshot carries every persisted field for ReconstructReservation.
type Snapshot struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	TrailerID       uuid.UUID
	Status          Status
	Period          Period
	ActualEnd       *time.Time
	TotalPrice      Money
	TaxID           *user.TaxID
	PinCode         string
	PinExpiry       *time.Time
	AuthorizationID string
	CaptureID       string
	InvoiceID       string
	CheckInAt       *time.Time
	CheckOutAt      *time.Time
	CancelReason    CancelReason
	HoldReleasedAt  *time.Time
	LastExtendedOn  *time.Time
	ReturnPhotos    []string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func ReconstructReservation(s Snapshot) *Reservation {
	photos := s.ReturnPhotos
	if photos == nil {
		photos = []string{}
	}
	return &Reservation{
		id:              s.ID,
		userID:          s.UserID,
		trailerID:       s.TrailerID,
		status:          s.Status,
		period:          s.Period,
		actualEnd:       s.ActualEnd,
		totalPrice:      s.TotalPrice,
		taxID:           s.TaxID,
		pinCode:         s.PinCode,
		pinExpiry:       s.PinExpiry,
		authorizationID: s.AuthorizationID,
		captureID:       s.CaptureID,
		invoiceID:       s.InvoiceID,
		checkInAt:       s.CheckInAt,
		checkOutAt:      s.CheckOutAt,
		cancelReason:    s.CancelReason,
		holdReleasedAt:  s.HoldReleasedAt,
		lastExtendedOn:  s.LastExtendedOn,
		returnPhotos:    photos,
		version:         s.Version,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
	}
}

// AttachAuthorization records the processor's hold handle. Re-attaching the
// same handle is a no-op.
func (r *Reservation) AttachAuthorization(authorizationID string, now time.Time) error {
	if r.status != StatusPendingPayment {
		return ErrInvalidTransition
	}
	if r.authorizationID != "" {
		if r.authorizationID == authorizationID {
			return nil
		}
		return ErrAuthorizationMismatch
	}
	r.authorizationID = authorizationID
	r.touch(now)
	return nil
}

// Confirm moves pending_payment to confirmed. The overlap re-check against
// other confirmed/active reservations is the caller's job and must run under
// the trailer lock.
func (r *Reservation) Confirm(authorizationID string, now time.Time) error {
	if r.status != StatusPendingPayment {
		return ErrInvalidTransition
	}
	if r.authorizationID != "" && authorizationID != "" && r.authorizationID != authorizationID {
		return ErrAuthorizationMismatch
	}
	if r.authorizationID == "" {
		if authorizationID == "" {
			return ErrAuthorizationMissing
		}
		r.authorizationID = authorizationID
	}
	r.status = StatusConfirmed
	r.touch(now)
	return nil
}

func (r *Reservation) Cancel(reason CancelReason, now time.Time) error {
	if r.status.IsTerminal() {
		return ErrInvalidTransition
	}
	r.status = StatusCancelled
	r.cancelReason = reason
	r.touch(now)
	return nil
}

// CancelByRenter applies the renter-facing rule: only reservations that have
// not started yet can be cancelled from the app.
func (r *Reservation) CancelByRenter(userID uuid.UUID, now time.Time) error {
	if r.userID != userID {
		return ErrNotOwnedByUser
	}
	if r.status == StatusActive {
		return ErrCancellationNotPermitted
	}
	return r.Cancel(CancelByUser, now)
}

func (r *Reservation) CheckIn(now time.Time, grace time.Duration) error {
	if r.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	if !r.period.Contains(now, grace) {
		return ErrOutsideCheckInWindow
	}
	t := now
	r.checkInAt = &t
	r.status = StatusActive
	r.touch(now)
	return nil
}

// IsDueForExtension reports whether the sweep running at now should extend
// this reservation: active, ending within a day, and not yet extended on
// today's calendar date in loc.
func (r *Reservation) IsDueForExtension(now time.Time, loc *time.Location) bool {
	if r.status != StatusActive {
		return false
	}
	if r.period.End().After(now.Add(day)) {
		return false
	}
	return !r.extendedOn(now, loc)
}

// Extend pushes the end one calendar day and adds one additional-day charge.
// A rental already past its end is pushed, one charged day at a time, until
// the end lies after now.
func (r *Reservation) Extend(pricing trailer.Pricing, now time.Time, loc *time.Location) error {
	if r.status != StatusActive {
		return ErrInvalidTransition
	}
	if r.period.End().After(now.Add(day)) {
		return ErrNotDueForExtension
	}
	if r.extendedOn(now, loc) {
		return ErrAlreadyExtendedToday
	}

	for {
		r.period = r.period.ExtendedByDay(loc)
		r.totalPrice = r.totalPrice.Add(NewMoney(pricing.AdditionalDays()))
		if r.period.End().After(now) {
			break
		}
	}
	today := dateIn(now, loc)
	r.lastExtendedOn = &today
	r.touch(now)
	return nil
}

// Complete settles the rental after a successful capture.
func (r *Reservation) Complete(captureID, invoiceID string, now time.Time) error {
	if r.status != StatusActive {
		return ErrInvalidTransition
	}
	if r.captureID != "" {
		return ErrPaymentAlreadySettled
	}
	t := now
	r.captureID = captureID
	r.invoiceID = invoiceID
	r.actualEnd = &t
	r.checkOutAt = &t
	r.status = StatusCompleted
	r.touch(now)
	return nil
}

// RecordPin mirrors the currently active PIN onto the reservation.
func (r *Reservation) RecordPin(code string, expiry time.Time, now time.Time) error {
	if r.status != StatusConfirmed && r.status != StatusActive {
		return ErrInvalidTransition
	}
	if len(code) != 4 || strings.Trim(code, "0123456789") != "" {
		return ErrInvalidPin
	}
	e := expiry
	r.pinCode = code
	r.pinExpiry = &e
	r.touch(now)
	return nil
}

func (r *Reservation) AddReturnPhoto(key string, now time.Time) error {
	if r.status != StatusActive {
		return ErrInvalidTransition
	}
	if strings.TrimSpace(key) == "" {
		return ErrReturnPhotoKeyRequired
	}
	r.returnPhotos = append(r.returnPhotos, key)
	r.touch(now)
	return nil
}

// NeedsHoldRelease is true for a cancelled reservation whose authorization
// hold has not been voided yet.
func (r *Reservation) NeedsHoldRelease() bool {
	return r.status == StatusCancelled && r.authorizationID != "" && r.holdReleasedAt == nil
}

func (r *Reservation) MarkHoldReleased(now time.Time) error {
	if r.status != StatusCancelled {
		return ErrInvalidTransition
	}
	if r.authorizationID == "" {
		return ErrAuthorizationMissing
	}
	if r.holdReleasedAt != nil {
		return ErrHoldAlreadyReleased
	}
	t := now
	r.holdReleasedAt = &t
	r.touch(now)
	return nil
}

// AdvanceVersion is called by the persistence layer after a successful
// compare-and-swap write.
func (r *Reservation) AdvanceVersion() {
	r.version++
}

func (r *Reservation) IsOwnedBy(userID uuid.UUID) bool {
	return r.userID == userID
}

func (r *Reservation) extendedOn(now time.Time, loc *time.Location) bool {
	if r.lastExtendedOn == nil {
		return false
	}
	return r.lastExtendedOn.Equal(dateIn(now, loc))
}

func (r *Reservation) touch(now time.Time) {
	r.updatedAt = now
}

// dateIn truncates t to its calendar date in loc, expressed as UTC midnight
// so it compares equal to a DATE column read back from Postgres.
func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r *Reservation) ID() uuid.UUID              { return r.id }
func (r *Reservation) UserID() uuid.UUID          { return r.userID }
func (r *Reservation) TrailerID() uuid.UUID       { return r.trailerID }
func (r *Reservation) Status() Status             { return r.status }
func (r *Reservation) Period() Period             { return r.period }
func (r *Reservation) ActualEnd() *time.Time      { return r.actualEnd }
func (r *Reservation) TotalPrice() Money          { return r.totalPrice }
func (r *Reservation) TaxID() *user.TaxID         { return r.taxID }
func (r *Reservation) PinCode() string            { return r.pinCode }
func (r *Reservation) PinExpiry() *time.Time      { return r.pinExpiry }
func (r *Reservation) AuthorizationID() string    { return r.authorizationID }
func (r *Reservation) CaptureID() string          { return r.captureID }
func (r *Reservation) InvoiceID() string          { return r.invoiceID }
func (r *Reservation) CheckInAt() *time.Time      { return r.checkInAt }
func (r *Reservation) CheckOutAt() *time.Time     { return r.checkOutAt }
func (r *Reservation) CancelReason() CancelReason { return r.cancelReason }
func (r *Reservation) HoldReleasedAt() *time.Time { return r.holdReleasedAt }
func (r *Reservation) LastExtendedOn() *time.Time { return r.lastExtendedOn }
func (r *Reservation) ReturnPhotos() []string     { return append([]string(nil), r.returnPhotos...) }
func (r *Reservation) Version() int64             { return r.version }
func (r *Reservation) CreatedAt() time.Time       { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time       { return r.updatedAt }
