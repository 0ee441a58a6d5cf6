package trailer

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Trailer struct {
	id           uuid.UUID
	name         string
	kind         string
	manufacturer string
	licensePlate string
	location     Location
	pricing      Pricing
	lockID       string
	status       Status
	timeZone     TimeZone
	createdAt    time.Time
	updatedAt    time.Time
}

type Details struct {
	Name         string
	Kind         string
	Manufacturer string
	LicensePlate string
	Location     Location
	Pricing      Pricing
	LockID       string
	TimeZone     TimeZone
}

func NewTrailer(d Details) (*Trailer, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, ErrMissingName
	}
	if strings.TrimSpace(d.LockID) == "" {
		return nil, ErrMissingLockID
	}
	return &Trailer{
		id:           uuid.New(),
		name:         strings.TrimSpace(d.Name),
		kind:         d.Kind,
		manufacturer: d.Manufacturer,
		licensePlate: d.LicensePlate,
		location:     d.Location,
		pricing:      d.Pricing,
		lockID:       strings.TrimSpace(d.LockID),
		status:       StatusAvailable,
		timeZone:     d.TimeZone,
	}, nil
}

func ReconstructTrailer(
	id uuid.UUID,
	d Details,
	status Status,
	createdAt, updatedAt time.Time,
) *Trailer {
	return &Trailer{
		id:           id,
		name:         d.Name,
		kind:         d.Kind,
		manufacturer: d.Manufacturer,
		licensePlate: d.LicensePlate,
		location:     d.Location,
		pricing:      d.Pricing,
		lockID:       d.LockID,
		status:       status,
		timeZone:     d.TimeZone,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (t *Trailer) InMaintenance() bool {
	return t.status == StatusMaintenance
}

func (t *Trailer) ID() uuid.UUID        { return t.id }
func (t *Trailer) Name() string         { return t.name }
func (t *Trailer) Kind() string         { return t.kind }
func (t *Trailer) Manufacturer() string { return t.manufacturer }
func (t *Trailer) LicensePlate() string { return t.licensePlate }
func (t *Trailer) Location() Location   { return t.location }
func (t *Trailer) Pricing() Pricing     { return t.pricing }
func (t *Trailer) LockID() string       { return t.lockID }
func (t *Trailer) Status() Status       { return t.status }
func (t *Trailer) TimeZone() TimeZone   { return t.timeZone }
func (t *Trailer) CreatedAt() time.Time { return t.createdAt }
func (t *Trailer) UpdatedAt() time.Time { return t.updatedAt }
