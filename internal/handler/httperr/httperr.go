package httperr

import (
	"net/http"

	"trailer-rental/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		err = errs.New(msg)
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort maps err onto the error taxonomy and aborts with the matching status.
func Abort(c *gin.Context, err error) {
	status, msg, detail := Classify(err)
	AbortWithError(c, status, err, msg, detail)
}

type paymentDetail struct {
	Reason string `json:"reason"`
}

// Classify returns the status, client message, and detail for err.
// Server-side failures never expose the underlying message.
func Classify(err error) (int, string, any) {
	switch {
	case errs.Is(err, errs.ErrPayment):
		detail := paymentDetail{Reason: string(errs.PaymentProcessorError)}
		if reason, ok := errs.PaymentReason(err); ok {
			detail.Reason = string(reason)
		}
		return http.StatusPaymentRequired, "Payment failed", detail
	case errs.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, err.Error(), nil
	case errs.Is(err, errs.ErrConflict):
		return http.StatusConflict, err.Error(), nil
	case errs.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, err.Error(), nil
	case errs.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, err.Error(), nil
	case errs.Is(err, errs.ErrExternalService):
		return http.StatusBadGateway, "Upstream service unavailable", nil
	default:
		return http.StatusInternalServerError, "Internal server error", nil
	}
}
