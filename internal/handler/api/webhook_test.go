//go:build unit

package api_test

import (
	"bytes"
	"net/http"
	"testing"

	"trailer-rental/internal/handler/api"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/testutil/httptest"
	commandsmock "trailer-rental/internal/testutil/mock/commands"
	"trailer-rental/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestWebhookHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(t *testing.T) (*gin.Engine, *commandsmock.MockPaymentCommands) {
		ctrl := gomock.NewController(t)
		cmds := commandsmock.NewMockPaymentCommands(ctrl)
		r := gin.New()
		r.POST("/api/payments/webhook", api.NewWebhookHandler(cmds).Handle)
		return r, cmds
	}
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	t.Run("passes the raw body and signature", func(t *testing.T) {
		r, cmds := newRouter(t)
		cmds.EXPECT().HandleWebhook(gomock.Any(), payload, "t=1,v1=abc").Return(nil).Times(1)

		rec := httptest.PerformRaw(t, r, http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload),
			map[string]string{"Stripe-Signature": "t=1,v1=abc", "Content-Type": "application/json"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	})

	t.Run("bad signature is 400", func(t *testing.T) {
		r, cmds := newRouter(t)
		cmds.EXPECT().HandleWebhook(gomock.Any(), payload, "").
			Return(errs.Wrap(commands.ErrInvalidWebhook, "no signatures found")).Times(1)

		rec := httptest.PerformRaw(t, r, http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload), nil)
		httptest.AssertErrorResponse(t, rec, http.StatusBadRequest, "invalid payment webhook")
	})

	t.Run("oversized body is rejected before verification", func(t *testing.T) {
		r, _ := newRouter(t)
		big := bytes.Repeat([]byte("a"), 65<<10)

		rec := httptest.PerformRaw(t, r, http.MethodPost, "/api/payments/webhook", bytes.NewReader(big), nil)
		httptest.AssertErrorResponse(t, rec, http.StatusBadRequest, "Unreadable payload")
	})

	t.Run("storage failure is 500 so the processor retries", func(t *testing.T) {
		r, cmds := newRouter(t)
		cmds.EXPECT().HandleWebhook(gomock.Any(), gomock.Any(), gomock.Any()).Return(errs.New("db down")).Times(1)

		rec := httptest.PerformRaw(t, r, http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload), nil)
		httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, "Internal server error")
	})
}
