package request

import "trailer-rental/internal/usecase/commands"

type UpsertProfileRequest struct {
	FirstName    string  `json:"firstName" binding:"required,max=100"`
	LastName     string  `json:"lastName" binding:"required,max=100"`
	Email        string  `json:"email" binding:"required,email"`
	Phone        string  `json:"phone" binding:"required"`
	Street       string  `json:"street" binding:"required,max=200"`
	City         string  `json:"city" binding:"required,max=100"`
	PostalCode   string  `json:"postalCode" binding:"required"`
	CompanyTaxID *string `json:"companyTaxId,omitempty" binding:"omitempty,ico"`
}

func (r UpsertProfileRequest) ToInput() commands.UpsertProfileInput {
	return commands.UpsertProfileInput{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Phone:        r.Phone,
		Street:       r.Street,
		City:         r.City,
		PostalCode:   r.PostalCode,
		CompanyTaxID: r.CompanyTaxID,
	}
}
