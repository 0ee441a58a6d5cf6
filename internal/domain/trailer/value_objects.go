package trailer

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("invalid trailer status")
	ErrInvalidPricing  = errors.New("pricing tiers must be non-negative")
	ErrInvalidLocation = errors.New("invalid trailer location")
	ErrInvalidTimeZone = errors.New("unknown time zone")
	ErrMissingName     = errors.New("trailer name is required")
	ErrMissingLockID   = errors.New("trailer lock id is required")
)

// Pricing amounts are whole currency units.
type Pricing struct {
	oneDay         int64
	twoDays        int64
	additionalDays int64
}

func NewPricing(oneDay, twoDays, additionalDays int64) (Pricing, error) {
	if oneDay < 0 || twoDays < 0 || additionalDays < 0 {
		return Pricing{}, ErrInvalidPricing
	}
	return Pricing{oneDay: oneDay, twoDays: twoDays, additionalDays: additionalDays}, nil
}

func (p Pricing) OneDay() int64         { return p.oneDay }
func (p Pricing) TwoDays() int64        { return p.twoDays }
func (p Pricing) AdditionalDays() int64 { return p.additionalDays }

type Location struct {
	lat     float64
	lng     float64
	address string
}

func NewLocation(lat, lng float64, address string) (Location, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Location{}, ErrInvalidLocation
	}
	return Location{lat: lat, lng: lng, address: strings.TrimSpace(address)}, nil
}

func (l Location) Lat() float64    { return l.lat }
func (l Location) Lng() float64    { return l.lng }
func (l Location) Address() string { return l.address }

// TimeZone is an IANA zone name. The zero value means "use the business zone".
type TimeZone struct {
	name string
}

func NewTimeZone(name string) (TimeZone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TimeZone{}, nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return TimeZone{}, ErrInvalidTimeZone
	}
	return TimeZone{name: name}, nil
}

func (tz TimeZone) String() string {
	return tz.name
}

func (tz TimeZone) IsZero() bool {
	return tz.name == ""
}

// LocationOr resolves the zone or returns fallback when unset.
func (tz TimeZone) LocationOr(fallback *time.Location) *time.Location {
	if tz.name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(tz.name)
	if err != nil {
		return fallback
	}
	return loc
}
