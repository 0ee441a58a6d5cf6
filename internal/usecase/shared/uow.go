package shared

import (
	"context"
	"time"

	"trailer-rental/internal/domain/pin"
	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/domain/user"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single statements outside an explicit transaction
	WithDB(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Reservations() ReservationRepository
	Trailers() TrailerRepository
	Pins() PinRepository
	Users() UserRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) error
	// Update is a compare-and-swap on the loaded version; a lost race yields
	// an infra CONFLICT error.
	Update(ctx context.Context, res *reservation.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	FindByAuthorizationID(ctx context.Context, authorizationID string) (*reservation.Reservation, error)
	// FindOverlapping returns confirmed/active reservations on the trailer
	// whose closed interval touches period, skipping excludeID.
	FindOverlapping(ctx context.Context, trailerID uuid.UUID, period reservation.Period, excludeID uuid.UUID) ([]*reservation.Reservation, error)
	FindActiveEndingBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	FindPendingHoldRelease(ctx context.Context, limit int) ([]uuid.UUID, error)
}

type TrailerRepository interface {
	Create(ctx context.Context, t *trailer.Trailer) error
	FindByID(ctx context.Context, id uuid.UUID) (*trailer.Trailer, error)
	// LockByID takes a row lock held until the transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*trailer.Trailer, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status trailer.Status, now time.Time) error
}

type PinRepository interface {
	Create(ctx context.Context, p *pin.Pin) error
	DeactivateActive(ctx context.Context, reservationID uuid.UUID, now time.Time) ([]*pin.Pin, error)
	FindActiveByReservation(ctx context.Context, reservationID uuid.UUID) (*pin.Pin, error)
	// ExpireDue flips every active PIN with validUntil <= now in one statement
	// and returns the rows it changed.
	ExpireDue(ctx context.Context, now time.Time) ([]*pin.Pin, error)
	FindPendingRevocation(ctx context.Context, limit int) ([]*pin.Pin, error)
	UpdateRevocation(ctx context.Context, p *pin.Pin) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Upsert(ctx context.Context, u *user.User) error
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	Get(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	UpdateStatusCompleted(ctx context.Context, key, userID, reservationID uuid.UUID) error
	ClaimExpired(ctx context.Context, key, userID uuid.UUID, requestHash string, now, expiresAt time.Time) (bool, error)
	Release(ctx context.Context, key, userID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}

type IdempotencyRecord struct {
	Key                 uuid.UUID
	UserID              uuid.UUID
	Status              string
	RequestHash         string
	ResultReservationID *uuid.UUID
	ExpiresAt           time.Time
}

const (
	IdempotencyProcessing = "processing"
	IdempotencyCompleted  = "completed"
)
