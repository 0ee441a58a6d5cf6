package reservation

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusActive         Status = "active"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// BlocksAvailability reports whether a reservation in this status occupies
// the trailer. Pending reservations never block.
func (s Status) BlocksAvailability() bool {
	return s == StatusConfirmed || s == StatusActive
}

// BlockingStatuses is the set used by overlap queries.
func BlockingStatuses() []Status {
	return []Status{StatusConfirmed, StatusActive}
}

func NewStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

type CancelReason string

const (
	CancelByUser              CancelReason = "user_requested"
	CancelPaymentFailed       CancelReason = "payment_failed"
	CancelAuthorizationFailed CancelReason = "authorization_failed"
	CancelUnavailable         CancelReason = "unavailable"
	CancelByOperator          CancelReason = "operator_cancelled"
)

func (r CancelReason) String() string {
	return string(r)
}
