package request

import (
	"time"

	"trailer-rental/internal/usecase/commands"
)

type CreateTrailerRequest struct {
	Name          string  `json:"name" binding:"required,max=200"`
	Kind          string  `json:"kind" binding:"required,max=50"`
	Manufacturer  string  `json:"manufacturer" binding:"max=100"`
	LicensePlate  string  `json:"licensePlate" binding:"max=20"`
	Lat           float64 `json:"lat" binding:"min=-90,max=90"`
	Lng           float64 `json:"lng" binding:"min=-180,max=180"`
	Address       string  `json:"address" binding:"required,max=500"`
	PriceOneDay   int64   `json:"priceOneDay" binding:"required,min=1"`
	PriceTwoDays  int64   `json:"priceTwoDays" binding:"required,min=1"`
	PriceExtraDay int64   `json:"priceExtraDay" binding:"required,min=1"`
	LockID        string  `json:"lockId" binding:"required,max=100"`
	TimeZone      string  `json:"timeZone" binding:"omitempty,timezone"`
}

func (r CreateTrailerRequest) ToInput() commands.CreateTrailerInput {
	return commands.CreateTrailerInput{
		Name:          r.Name,
		Kind:          r.Kind,
		Manufacturer:  r.Manufacturer,
		LicensePlate:  r.LicensePlate,
		Lat:           r.Lat,
		Lng:           r.Lng,
		Address:       r.Address,
		PriceOneDay:   r.PriceOneDay,
		PriceTwoDays:  r.PriceTwoDays,
		PriceExtraDay: r.PriceExtraDay,
		LockID:        r.LockID,
		TimeZone:      r.TimeZone,
	}
}

type SetTrailerStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available maintenance"`
}

type AvailabilityRequest struct {
	Start time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	End   time.Time `form:"end" binding:"required,gtfield=Start" time_format:"2006-01-02T15:04:05Z07:00"`
}
