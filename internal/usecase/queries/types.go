package queries

import (
	"time"

	"trailer-rental/internal/domain/user"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a query.
type Actor struct {
	UserID uuid.UUID
	Role   user.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// ReservationView is the full read model of one reservation.
type ReservationView struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	TrailerID    uuid.UUID  `json:"trailer_id"`
	TrailerName  string     `json:"trailer_name"`
	Status       string     `json:"status"`
	StartAt      time.Time  `json:"start_at"`
	EndAt        time.Time  `json:"end_at"`
	ActualEndAt  *time.Time `json:"actual_end_at,omitempty"`
	TotalPrice   int64      `json:"total_price"`
	TaxID        *string    `json:"tax_id,omitempty"`
	PinCode      *string    `json:"pin_code,omitempty"`
	PinExpiry    *time.Time `json:"pin_expiry,omitempty"`
	CheckInAt    *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt   *time.Time `json:"check_out_at,omitempty"`
	CancelReason *string    `json:"cancel_reason,omitempty"`
	InvoiceID    *string    `json:"invoice_id,omitempty"`
	ReturnPhotos []string   `json:"return_photos"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ReservationListItem struct {
	ID          uuid.UUID `json:"id"`
	TrailerID   uuid.UUID `json:"trailer_id"`
	TrailerName string    `json:"trailer_name"`
	Status      string    `json:"status"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	TotalPrice  int64     `json:"total_price"`
	CreatedAt   time.Time `json:"created_at"`
}

type TrailerView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Kind          string    `json:"kind"`
	Manufacturer  string    `json:"manufacturer"`
	LicensePlate  string    `json:"license_plate"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	Address       string    `json:"address"`
	PriceOneDay   int64     `json:"price_one_day"`
	PriceTwoDays  int64     `json:"price_two_days"`
	PriceExtraDay int64     `json:"price_extra_day"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ConflictingReservation is a blocking booking returned by availability
// checks. Renter identity is not exposed.
type ConflictingReservation struct {
	ID      uuid.UUID `json:"id"`
	Status  string    `json:"status"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type AvailabilityView struct {
	TrailerID               uuid.UUID                `json:"trailer_id"`
	TrailerStatus           string                   `json:"trailer_status"`
	StartAt                 time.Time                `json:"start_at"`
	EndAt                   time.Time                `json:"end_at"`
	Available               bool                     `json:"available"`
	ConflictingReservations []ConflictingReservation `json:"conflicting_reservations"`
}

type ProfileView struct {
	ID                 uuid.UUID `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Street             string    `json:"street"`
	City               string    `json:"city"`
	PostalCode         string    `json:"postal_code"`
	TaxID              *string   `json:"tax_id,omitempty"`
	HasPaymentCustomer bool      `json:"has_payment_customer"`
	Role               string    `json:"role"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}
