package commands

import (
	"trailer-rental/internal/domain/pin"
	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/pkg/errs"
)

var (
	ErrTrailerNotFound       = errs.Mark(errs.New("trailer not found"), errs.ErrNotFound)
	ErrReservationNotFound   = errs.Mark(errs.New("reservation not found"), errs.ErrNotFound)
	ErrProfileRequired       = errs.Mark(errs.New("complete your profile before booking"), errs.ErrValidation)
	ErrUserInactive          = errs.Mark(errs.New("user account is disabled"), errs.ErrForbidden)
	ErrTrailerUnavailable    = errs.Mark(errs.New("trailer is already booked for the requested period"), errs.ErrConflict)
	ErrIdempotencyInProgress = errs.Mark(errs.New("a request with this idempotency key is still processing"), errs.ErrConflict)
	ErrIdempotencyKeyReused  = errs.Mark(errs.New("idempotency key was already used for a different request"), errs.ErrConflict)
	ErrCancelledDuringAuth   = errs.Mark(errs.New("reservation was cancelled while the payment was authorized"), errs.ErrConflict)
	ErrPhotoUpload           = errs.Mark(errs.New("failed to store return photo"), errs.ErrExternalService)
	ErrCustomerCreation      = errs.Mark(errs.New("failed to register payment customer"), errs.ErrExternalService)
)

var validationErrors = []error{
	reservation.ErrInvalidPeriod,
	reservation.ErrPeriodInPast,
	reservation.ErrReturnPhotoKeyRequired,
	reservation.ErrInvalidPin,
	pin.ErrInvalidWindow,
	trailer.ErrMissingName,
	trailer.ErrMissingLockID,
	trailer.ErrInvalidStatus,
	trailer.ErrInvalidPricing,
	trailer.ErrInvalidLocation,
	trailer.ErrInvalidTimeZone,
	user.ErrInvalidTaxID,
	user.ErrInvalidEmail,
	user.ErrInvalidPhone,
	user.ErrInvalidName,
	user.ErrInvalidAddress,
	user.ErrInvalidPostalCode,
}

// domainErr attaches an error class to a rule violation raised by an entity.
// Anything that is not malformed input or an ownership failure is a state
// conflict.
func domainErr(err error) error {
	if err == nil {
		return nil
	}
	if errs.Is(err, reservation.ErrNotOwnedByUser) {
		return errs.Mark(err, errs.ErrForbidden)
	}
	for _, v := range validationErrors {
		if errs.Is(err, v) {
			return errs.Mark(err, errs.ErrValidation)
		}
	}
	return errs.Mark(err, errs.ErrConflict)
}

// notFound replaces a repository NOT_FOUND with the use case sentinel and
// passes every other failure through.
func notFound(err error, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return sentinel
	}
	return err
}
