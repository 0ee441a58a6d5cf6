package response

import (
	"time"

	"trailer-rental/internal/usecase/commands"
	"trailer-rental/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CreateReservationResponse struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	TotalPrice   int64     `json:"totalPrice"`
	HoldAmount   int64     `json:"holdAmount"`
	ClientSecret string    `json:"clientSecret,omitempty"`
	IsReplayed   bool      `json:"isReplayed"`
}

func FromCreateReservationResult(r *commands.CreateReservationResult) *CreateReservationResponse {
	return &CreateReservationResponse{
		ID:           r.ReservationID,
		Status:       r.Status.String(),
		TotalPrice:   r.TotalPrice,
		HoldAmount:   r.HoldAmount,
		ClientSecret: r.ClientSecret,
		IsReplayed:   r.IsReplayed,
	}
}

type ReservationResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"userId"`
	TrailerID    uuid.UUID  `json:"trailerId"`
	TrailerName  string     `json:"trailerName"`
	Status       string     `json:"status"`
	StartAt      time.Time  `json:"startAt"`
	EndAt        time.Time  `json:"endAt"`
	ActualEndAt  *time.Time `json:"actualEndAt,omitempty"`
	TotalPrice   int64      `json:"totalPrice"`
	TaxID        *string    `json:"companyTaxId,omitempty"`
	PinCode      *string    `json:"pinCode,omitempty"`
	PinExpiry    *time.Time `json:"pinExpiry,omitempty"`
	CheckInAt    *time.Time `json:"checkInAt,omitempty"`
	CheckOutAt   *time.Time `json:"checkOutAt,omitempty"`
	CancelReason *string    `json:"cancelReason,omitempty"`
	InvoiceID    *string    `json:"invoiceId,omitempty"`
	ReturnPhotos []string   `json:"returnPhotos"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func FromReservationView(v *queries.ReservationView) (*ReservationResponse, error) {
	var res ReservationResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	if res.ReturnPhotos == nil {
		res.ReturnPhotos = []string{}
	}
	return &res, nil
}

type ReservationListItemResponse struct {
	ID          uuid.UUID `json:"id"`
	TrailerID   uuid.UUID `json:"trailerId"`
	TrailerName string    `json:"trailerName"`
	Status      string    `json:"status"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	TotalPrice  int64     `json:"totalPrice"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ReservationListResponse struct {
	Items      []ReservationListItemResponse `json:"items"`
	NextCursor string                        `json:"nextCursor,omitempty"`
}

func FromReservationList(items []*queries.ReservationListItem, next *queries.Cursor) (*ReservationListResponse, error) {
	res := &ReservationListResponse{Items: make([]ReservationListItemResponse, 0, len(items))}
	if err := copier.Copy(&res.Items, &items); err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []ReservationListItemResponse{}
	}
	if next != nil {
		res.NextCursor = next.After
	}
	return res, nil
}

type CheckOutResponse struct {
	CaptureID      string   `json:"captureId"`
	InvoiceID      string   `json:"invoiceId,omitempty"`
	TotalPrice     int64    `json:"totalPrice"`
	CapturedAmount int64    `json:"capturedAmount"`
	InvoicedAmount int64    `json:"invoicedAmount"`
	ReturnPhotos   []string `json:"returnPhotos"`
}

func FromCheckOutResult(r *commands.CheckOutResult) (*CheckOutResponse, error) {
	res := &CheckOutResponse{}
	if err := copier.Copy(res, r); err != nil {
		return nil, err
	}
	if res.ReturnPhotos == nil {
		res.ReturnPhotos = []string{}
	}
	return res, nil
}

type ReturnPhotoResponse struct {
	Key string `json:"key"`
}
