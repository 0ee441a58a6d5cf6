package payment

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedEvent      = errors.New("unsupported payment event")
	ErrMissingReservationRef = errors.New("payment event carries no reservation id")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidCurrency       = errors.New("currency must be a three letter code")
)

const (
	MetadataReservationID = "reservation_id"
	MetadataUserID        = "user_id"
)

// AuthorizationRequest describes a manual-capture hold. Amount is in whole
// currency units; adapters convert to the processor's minor unit.
type AuthorizationRequest struct {
	Amount      int64
	Currency    string
	CustomerRef string
	Metadata    map[string]string
}

func NewAuthorizationRequest(amount int64, currency, customerRef string, reservationID, userID uuid.UUID) (AuthorizationRequest, error) {
	if amount <= 0 {
		return AuthorizationRequest{}, ErrInvalidAmount
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return AuthorizationRequest{}, ErrInvalidCurrency
	}
	return AuthorizationRequest{
		Amount:      amount,
		Currency:    currency,
		CustomerRef: customerRef,
		Metadata: map[string]string{
			MetadataReservationID: reservationID.String(),
			MetadataUserID:        userID.String(),
		},
	}, nil
}

type Authorization struct {
	Handle       string
	ClientSecret string
}

// CaptureResult reports what the processor settled. Amount never exceeds the
// held amount, so it can fall short of what was asked for.
type CaptureResult struct {
	CaptureID   string
	CustomerRef string
	Amount      int64
}

// InvoiceRequest describes the closing invoice of a rental. Outstanding is
// the part of the total the hold could not cover; it is charged through the
// invoice.
type InvoiceRequest struct {
	CustomerRef     string
	AuthorizationID string
	ReservationID   uuid.UUID
	Currency        string
	Outstanding     int64
}

// CustomerProfile is what the processor needs to invoice a renter.
type CustomerProfile struct {
	UserID     uuid.UUID
	Name       string
	Email      string
	Phone      string
	Street     string
	City       string
	PostalCode string
	Country    string
}
