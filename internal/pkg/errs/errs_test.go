package errs_test

import (
	"errors"
	"testing"

	"trailer-rental/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	t.Run("marked error matches both the cause and the class", func(t *testing.T) {
		cause := errs.New("trailer not found")
		err := errs.Mark(cause, errs.ErrNotFound)

		assert.True(t, errs.Is(err, errs.ErrNotFound))
		assert.True(t, errs.Is(err, cause))
		assert.False(t, errs.Is(err, errs.ErrConflict))
	})

	t.Run("nil error returns the mark itself", func(t *testing.T) {
		assert.Equal(t, errs.ErrValidation, errs.Mark(nil, errs.ErrValidation))
	})

	t.Run("wrap keeps the class", func(t *testing.T) {
		err := errs.Wrap(errs.Mark(errs.New("boom"), errs.ErrConflict), "confirm reservation")

		assert.True(t, errs.Is(err, errs.ErrConflict))
		assert.Contains(t, err.Error(), "confirm reservation")
	})
}

func TestPaymentError(t *testing.T) {
	err := errs.Wrap(errs.NewPaymentError(errs.PaymentInvalidState, errors.New("requires_payment_method")), "capture")

	assert.True(t, errs.Is(err, errs.ErrPayment))

	reason, ok := errs.PaymentReason(err)
	assert.True(t, ok)
	assert.Equal(t, errs.PaymentInvalidState, reason)
	assert.Contains(t, err.Error(), "invalid_state")

	_, ok = errs.PaymentReason(errors.New("plain"))
	assert.False(t, ok)
}

func TestExtractStackLines(t *testing.T) {
	assert.Nil(t, errs.ExtractStackLines(nil, 3))
	lines := errs.ExtractStackLines(errs.New("boom"), 2)
	assert.LessOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], "boom")
}
