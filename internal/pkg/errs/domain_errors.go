package errs

import "errors"

// Error classes shared by every layer. Concrete errors are Mark-ed with one of
// these so handlers can map them without knowing the concrete sentinel.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("access denied")
	ErrPayment         = errors.New("payment failed")
	ErrExternalService = errors.New("external service unavailable")
)

type PaymentFailureReason string

const (
	PaymentDeclined       PaymentFailureReason = "declined"
	PaymentInvalidState   PaymentFailureReason = "invalid_state"
	PaymentTimeout        PaymentFailureReason = "timeout"
	PaymentProcessorError PaymentFailureReason = "processor_error"
)

// PaymentError reports a failed authorization or capture. It matches ErrPayment
// under errors.Is.
type PaymentError struct {
	Reason PaymentFailureReason
	Err    error
}

func NewPaymentError(reason PaymentFailureReason, cause error) *PaymentError {
	return &PaymentError{Reason: reason, Err: cause}
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return "payment error (" + string(e.Reason) + "): " + e.Err.Error()
	}
	return "payment error (" + string(e.Reason) + ")"
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

func (e *PaymentError) Is(target error) bool {
	return target == ErrPayment
}

// PaymentReason extracts the reason of the first PaymentError in the chain.
func PaymentReason(err error) (PaymentFailureReason, bool) {
	var pe *PaymentError
	if As(err, &pe) {
		return pe.Reason, true
	}
	return "", false
}
