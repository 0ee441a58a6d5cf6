package api

import (
	"io"
	"net/http"

	"trailer-rental/internal/handler/httperr"
	"trailer-rental/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const (
	signatureHeader    = "Stripe-Signature"
	maxWebhookBodySize = 64 << 10
)

type WebhookHandler struct {
	cmds commands.PaymentCommands
}

func NewWebhookHandler(cmds commands.PaymentCommands) *WebhookHandler {
	return &WebhookHandler{cmds: cmds}
}

// @Summary Payment processor webhook
// @Description Verifies the signature and applies authorization results. Unsupported events are acknowledged.
// @Tags payments
// @Accept json
// @Param Stripe-Signature header string true "Signature"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} httperr.Response
// @Router /api/payments/webhook [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodySize))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable payload", nil)
		return
	}
	if err := h.cmds.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
