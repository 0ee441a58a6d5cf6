package request

import (
	"strings"

	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/pkg/errs"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom tags used by the request DTOs to gin's
// validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errs.New("gin validator engine is not go-playground/validator")
	}
	if err := v.RegisterValidation("ico", validateTaxID); err != nil {
		return errs.Wrap(err, "register ico validator")
	}
	return nil
}

func validateTaxID(fl validator.FieldLevel) bool {
	_, err := user.NewTaxID(fl.Field().String())
	return err == nil
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// FieldErrors lists the failed rules of a binding error, or nil when the body
// could not be decoded at all.
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errs.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: lowerFirst(fe.Field()), Rule: fe.Tag()})
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
