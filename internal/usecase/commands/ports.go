package commands

import (
	"context"
	"io"
	"time"

	"trailer-rental/internal/domain/payment"

	"github.com/google/uuid"
)

// PaymentProcessor is the card processor. Amounts are whole currency units.
type PaymentProcessor interface {
	Authorize(ctx context.Context, req payment.AuthorizationRequest) (*payment.Authorization, error)
	// Capture settles at most the held amount and reports what it took. It
	// fails with a PaymentError{invalid_state} when the hold is not capturable.
	Capture(ctx context.Context, handle string, amount int64, currency string) (*payment.CaptureResult, error)
	// CreateInvoice issues the closing invoice and charges req.Outstanding on it.
	CreateInvoice(ctx context.Context, req payment.InvoiceRequest) (string, error)
	VoidAuthorization(ctx context.Context, handle string) error
	CreateCustomer(ctx context.Context, profile payment.CustomerProfile) (string, error)
	// ParseWebhook verifies the signature before decoding.
	ParseWebhook(payload []byte, signature string) (payment.WebhookEvent, error)
}

// LockController pushes codes to the smart lock on a trailer.
type LockController interface {
	GrantAccess(ctx context.Context, lockID, code string, from, until time.Time) error
	RevokeAccess(ctx context.Context, lockID, code string) error
}

// PhotoStorage stores check-out photos and returns the object key.
type PhotoStorage interface {
	PutReturnPhoto(ctx context.Context, reservationID uuid.UUID, contentType string, size int64, body io.Reader) (string, error)
}
