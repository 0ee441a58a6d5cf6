package request

import (
	"strings"
	"time"

	"trailer-rental/internal/usecase/commands"
	"trailer-rental/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	TrailerID    uuid.UUID `json:"trailerId" binding:"required"`
	StartAt      time.Time `json:"startAt" binding:"required"`
	EndAt        time.Time `json:"endAt" binding:"required,gtfield=StartAt"`
	CompanyTaxID *string   `json:"companyTaxId,omitempty" binding:"omitempty,ico"`
}

func (r CreateReservationRequest) ToInput() commands.CreateReservationInput {
	in := commands.CreateReservationInput{
		TrailerID: r.TrailerID,
		StartAt:   r.StartAt.UTC(),
		EndAt:     r.EndAt.UTC(),
	}
	if r.CompanyTaxID != nil {
		if trimmed := strings.TrimSpace(*r.CompanyTaxID); trimmed != "" {
			in.CompanyTaxID = &trimmed
		}
	}
	return in
}

type ListRequest struct {
	Status *string `form:"status" binding:"omitempty,min=1"`
	Cursor string  `form:"cursor"`
	Limit  int     `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (r ListRequest) CursorOrNil() *queries.Cursor {
	if r.Cursor == "" {
		return nil
	}
	return &queries.Cursor{After: r.Cursor}
}
