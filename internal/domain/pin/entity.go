package pin

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	minCode = 1000
	maxCode = 9999
)

var (
	ErrInvalidWindow  = errors.New("pin validity window is empty")
	ErrAlreadyRevoked = errors.New("pin revocation already acknowledged")
	ErrStillActive    = errors.New("pin is still active")
)

// Pin is a lock access code bound to one reservation window. isActive only
// ever goes from true to false; revokedAt records the lock's acknowledgement
// separately.
type Pin struct {
	id                 uuid.UUID
	reservationID      uuid.UUID
	lockID             string
	code               string
	validFrom          time.Time
	validUntil         time.Time
	isActive           bool
	deactivatedAt      *time.Time
	revokedAt          *time.Time
	revocationAttempts int
	createdAt          time.Time
}

func NewPin(reservationID uuid.UUID, lockID, code string, validFrom, validUntil time.Time) (*Pin, error) {
	if !validFrom.Before(validUntil) {
		return nil, ErrInvalidWindow
	}
	return &Pin{
		id:            uuid.New(),
		reservationID: reservationID,
		lockID:        lockID,
		code:          code,
		validFrom:     validFrom,
		validUntil:    validUntil,
		isActive:      true,
		createdAt:     validFrom,
	}, nil
}

func ReconstructPin(
	id, reservationID uuid.UUID,
	lockID, code string,
	validFrom, validUntil time.Time,
	isActive bool,
	deactivatedAt, revokedAt *time.Time,
	revocationAttempts int,
	createdAt time.Time,
) *Pin {
	return &Pin{
		id:                 id,
		reservationID:      reservationID,
		lockID:             lockID,
		code:               code,
		validFrom:          validFrom,
		validUntil:         validUntil,
		isActive:           isActive,
		deactivatedAt:      deactivatedAt,
		revokedAt:          revokedAt,
		revocationAttempts: revocationAttempts,
		createdAt:          createdAt,
	}
}

// Deactivate is idempotent.
func (p *Pin) Deactivate(now time.Time) {
	if !p.isActive {
		return
	}
	t := now
	p.isActive = false
	p.deactivatedAt = &t
}

func (p *Pin) IsExpired(now time.Time) bool {
	return !p.validUntil.After(now)
}

// NeedsRevocation is true for a deactivated PIN the lock has not confirmed yet.
func (p *Pin) NeedsRevocation() bool {
	return !p.isActive && p.revokedAt == nil
}

func (p *Pin) MarkRevoked(now time.Time) error {
	if p.isActive {
		return ErrStillActive
	}
	if p.revokedAt != nil {
		return ErrAlreadyRevoked
	}
	t := now
	p.revokedAt = &t
	return nil
}

func (p *Pin) RecordRevocationFailure() {
	p.revocationAttempts++
}

func (p *Pin) ID() uuid.UUID             { return p.id }
func (p *Pin) ReservationID() uuid.UUID  { return p.reservationID }
func (p *Pin) LockID() string            { return p.lockID }
func (p *Pin) Code() string              { return p.code }
func (p *Pin) ValidFrom() time.Time      { return p.validFrom }
func (p *Pin) ValidUntil() time.Time     { return p.validUntil }
func (p *Pin) IsActive() bool            { return p.isActive }
func (p *Pin) DeactivatedAt() *time.Time { return p.deactivatedAt }
func (p *Pin) RevokedAt() *time.Time     { return p.revokedAt }
func (p *Pin) RevocationAttempts() int   { return p.revocationAttempts }
func (p *Pin) CreatedAt() time.Time      { return p.createdAt }

// CodeGenerator produces 4-digit codes.
type CodeGenerator interface {
	Generate() (string, error)
}

type RandomCodeGenerator struct{}

func NewRandomCodeGenerator() CodeGenerator {
	return RandomCodeGenerator{}
}

// Generate draws uniformly from 1000-9999.
func (RandomCodeGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+minCode, 10), nil
}

// ValidUntilFor returns 00:00 of the day after end's calendar date in loc,
// so the code stays valid through the whole return day.
func ValidUntilFor(end time.Time, loc *time.Location) time.Time {
	y, m, d := end.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
