package payment_test

import (
	"context"
	"testing"

	"trailer-rental/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	succeeded []payment.AuthorizationSucceeded
	failed    []payment.AuthorizationFailed
}

func (h *recordingHandler) HandleAuthorizationSucceeded(_ context.Context, e payment.AuthorizationSucceeded) error {
	h.succeeded = append(h.succeeded, e)
	return nil
}

func (h *recordingHandler) HandleAuthorizationFailed(_ context.Context, e payment.AuthorizationFailed) error {
	h.failed = append(h.failed, e)
	return nil
}

func TestWebhookEvent_Accept(t *testing.T) {
	h := &recordingHandler{}
	rid := uuid.New()

	events := []payment.WebhookEvent{
		payment.AuthorizationSucceeded{ID: "evt_1", AuthorizationID: "pi_1", ReservationID: rid},
		payment.AuthorizationFailed{ID: "evt_2", AuthorizationID: "pi_2", ReservationID: rid, FailureMessage: "card_declined"},
	}
	for _, e := range events {
		require.NoError(t, e.Accept(context.Background(), h))
	}

	require.Len(t, h.succeeded, 1)
	require.Len(t, h.failed, 1)
	assert.Equal(t, "pi_1", h.succeeded[0].AuthorizationID)
	assert.Equal(t, "card_declined", h.failed[0].FailureMessage)
	assert.Equal(t, "evt_2", events[1].EventID())
}

func TestNewAuthorizationRequest(t *testing.T) {
	rid, uid := uuid.New(), uuid.New()

	req, err := payment.NewAuthorizationRequest(1500, " CZK ", "cus_1", rid, uid)
	require.NoError(t, err)
	assert.Equal(t, "czk", req.Currency)
	assert.Equal(t, rid.String(), req.Metadata[payment.MetadataReservationID])
	assert.Equal(t, uid.String(), req.Metadata[payment.MetadataUserID])

	_, err = payment.NewAuthorizationRequest(0, "czk", "cus_1", rid, uid)
	assert.ErrorIs(t, err, payment.ErrInvalidAmount)

	_, err = payment.NewAuthorizationRequest(100, "koruna", "cus_1", rid, uid)
	assert.ErrorIs(t, err, payment.ErrInvalidCurrency)
}
