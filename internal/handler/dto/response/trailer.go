package response

import (
	"time"

	"trailer-rental/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type TrailerResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Kind          string    `json:"kind"`
	Manufacturer  string    `json:"manufacturer"`
	LicensePlate  string    `json:"licensePlate"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	Address       string    `json:"address"`
	PriceOneDay   int64     `json:"priceOneDay"`
	PriceTwoDays  int64     `json:"priceTwoDays"`
	PriceExtraDay int64     `json:"priceExtraDay"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

func FromTrailerView(v *queries.TrailerView) (*TrailerResponse, error) {
	var res TrailerResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}

type TrailerListResponse struct {
	Items      []TrailerResponse `json:"items"`
	NextCursor string            `json:"nextCursor,omitempty"`
}

func FromTrailerList(items []*queries.TrailerView, next *queries.Cursor) (*TrailerListResponse, error) {
	res := &TrailerListResponse{Items: make([]TrailerResponse, 0, len(items))}
	if err := copier.Copy(&res.Items, &items); err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []TrailerResponse{}
	}
	if next != nil {
		res.NextCursor = next.After
	}
	return res, nil
}

type ConflictingReservationResponse struct {
	ID      uuid.UUID `json:"id"`
	Status  string    `json:"status"`
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
}

type AvailabilityResponse struct {
	TrailerID               uuid.UUID                        `json:"trailerId"`
	TrailerStatus           string                           `json:"trailerStatus"`
	StartAt                 time.Time                        `json:"startAt"`
	EndAt                   time.Time                        `json:"endAt"`
	Available               bool                             `json:"available"`
	ConflictingReservations []ConflictingReservationResponse `json:"conflictingReservations"`
}

func FromAvailabilityView(v *queries.AvailabilityView) (*AvailabilityResponse, error) {
	var res AvailabilityResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	if res.ConflictingReservations == nil {
		res.ConflictingReservations = []ConflictingReservationResponse{}
	}
	return &res, nil
}

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}
