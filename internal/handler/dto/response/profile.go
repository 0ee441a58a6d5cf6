package response

import (
	"time"

	"trailer-rental/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ProfileResponse struct {
	ID                 uuid.UUID `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Street             string    `json:"street"`
	City               string    `json:"city"`
	PostalCode         string    `json:"postalCode"`
	TaxID              *string   `json:"companyTaxId,omitempty"`
	HasPaymentCustomer bool      `json:"hasPaymentCustomer"`
	Role               string    `json:"role"`
	CreatedAt          time.Time `json:"createdAt"`
}

func FromProfileView(v *queries.ProfileView) (*ProfileResponse, error) {
	var res ProfileResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}
