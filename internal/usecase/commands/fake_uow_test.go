//go:build unit

package commands

import (
	"context"
	"maps"
	"sync"
	"time"

	"trailer-rental/internal/domain/pin"
	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/uuid"
)

// memUoW is an in-memory unit of work. Within rolls every change back when
// fn fails, and reservation updates are version-checked like the Postgres
// adapter.
type memUoW struct {
	mu sync.Mutex
	st *memState
	// beforeUpdate runs ahead of each reservation CAS and may bump the
	// stored version to simulate a concurrent writer. Its change to the
	// reservation outlives a rollback of the running transaction.
	beforeUpdate func(st *memState, id uuid.UUID)
	rollback     *memState
}

type memState struct {
	reservations map[uuid.UUID]reservation.Snapshot
	trailers     map[uuid.UUID]*trailer.Trailer
	pins         map[uuid.UUID]*pin.Pin
	users        map[uuid.UUID]*user.User
	idempotency  map[idemKey]shared.IdempotencyRecord
	jobs         []memJob
}

type idemKey struct {
	key    uuid.UUID
	userID uuid.UUID
}

type memJob struct {
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

func newMemUoW() *memUoW {
	return &memUoW{st: &memState{
		reservations: map[uuid.UUID]reservation.Snapshot{},
		trailers:     map[uuid.UUID]*trailer.Trailer{},
		pins:         map[uuid.UUID]*pin.Pin{},
		users:        map[uuid.UUID]*user.User{},
		idempotency:  map[idemKey]shared.IdempotencyRecord{},
	}}
}

func (u *memUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.rollback = u.st.clone()
	defer func() { u.rollback = nil }()
	if err := fn(ctx, &memTx{u: u}); err != nil {
		u.st = u.rollback
		return err
	}
	return nil
}

func (u *memUoW) WithDB(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(ctx, &memTx{u: u})
}

func (s *memState) clone() *memState {
	return &memState{
		reservations: maps.Clone(s.reservations),
		trailers:     maps.Clone(s.trailers),
		pins:         maps.Clone(s.pins),
		users:        maps.Clone(s.users),
		idempotency:  maps.Clone(s.idempotency),
		jobs:         append([]memJob(nil), s.jobs...),
	}
}

// seeding and inspection helpers, used outside transactions

func (u *memUoW) putTrailer(t *trailer.Trailer) { u.st.trailers[t.ID()] = cloneTrailer(t) }
func (u *memUoW) putUser(usr *user.User)        { u.st.users[usr.ID()] = cloneUser(usr) }
func (u *memUoW) putPin(p *pin.Pin)             { u.st.pins[p.ID()] = clonePin(p) }
func (u *memUoW) putReservation(r *reservation.Reservation) {
	u.st.reservations[r.ID()] = snapshotOf(r)
}

func (u *memUoW) reservation(id uuid.UUID) *reservation.Reservation {
	snap, ok := u.st.reservations[id]
	if !ok {
		return nil
	}
	return reservation.ReconstructReservation(snap)
}

func (u *memUoW) trailer(id uuid.UUID) *trailer.Trailer { return u.st.trailers[id] }
func (u *memUoW) user(id uuid.UUID) *user.User          { return u.st.users[id] }
func (u *memUoW) jobs() []memJob                        { return u.st.jobs }

func (u *memUoW) pinsOf(reservationID uuid.UUID) []*pin.Pin {
	var out []*pin.Pin
	for _, p := range u.st.pins {
		if p.ReservationID() == reservationID {
			out = append(out, clonePin(p))
		}
	}
	return out
}

func (u *memUoW) activePin(reservationID uuid.UUID) *pin.Pin {
	for _, p := range u.pinsOf(reservationID) {
		if p.IsActive() {
			return p
		}
	}
	return nil
}

func (u *memUoW) idempotencyRecord(key, userID uuid.UUID) (shared.IdempotencyRecord, bool) {
	rec, ok := u.st.idempotency[idemKey{key, userID}]
	return rec, ok
}

type memTx struct {
	u *memUoW
}

func (t *memTx) Reservations() shared.ReservationRepository   { return memReservations{t.u} }
func (t *memTx) Trailers() shared.TrailerRepository           { return memTrailers{t.u} }
func (t *memTx) Pins() shared.PinRepository                   { return memPins{t.u} }
func (t *memTx) Users() shared.UserRepository                 { return memUsers{t.u} }
func (t *memTx) Idempotency() shared.IdempotencyRepository    { return memIdempotency{t.u} }
func (t *memTx) Notifications() shared.NotificationRepository { return memNotifications{t.u} }

func repoErr(kind infra.RepositoryErrorKind) error {
	return infra.RepositoryError{Kind: kind}
}

type memReservations struct{ u *memUoW }

func (r memReservations) Create(_ context.Context, res *reservation.Reservation) error {
	if _, ok := r.u.st.reservations[res.ID()]; ok {
		return repoErr(infra.KindDuplicateKey)
	}
	r.u.st.reservations[res.ID()] = snapshotOf(res)
	return nil
}

func (r memReservations) Update(_ context.Context, res *reservation.Reservation) error {
	if r.u.beforeUpdate != nil {
		r.u.beforeUpdate(r.u.st, res.ID())
		if r.u.rollback != nil {
			r.u.rollback.reservations[res.ID()] = r.u.st.reservations[res.ID()]
		}
	}
	stored, ok := r.u.st.reservations[res.ID()]
	if !ok || stored.Version != res.Version() {
		return repoErr(infra.KindConflict)
	}
	res.AdvanceVersion()
	r.u.st.reservations[res.ID()] = snapshotOf(res)
	return nil
}

func (r memReservations) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	snap, ok := r.u.st.reservations[id]
	if !ok {
		return nil, repoErr(infra.KindNotFound)
	}
	return reservation.ReconstructReservation(snap), nil
}

func (r memReservations) FindByAuthorizationID(_ context.Context, authorizationID string) (*reservation.Reservation, error) {
	for _, snap := range r.u.st.reservations {
		if snap.AuthorizationID == authorizationID {
			return reservation.ReconstructReservation(snap), nil
		}
	}
	return nil, repoErr(infra.KindNotFound)
}

func (r memReservations) FindOverlapping(_ context.Context, trailerID uuid.UUID, period reservation.Period, excludeID uuid.UUID) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for id, snap := range r.u.st.reservations {
		if id == excludeID || snap.TrailerID != trailerID || !snap.Status.BlocksAvailability() {
			continue
		}
		if snap.Period.Overlaps(period) {
			out = append(out, reservation.ReconstructReservation(snap))
		}
	}
	return out, nil
}

func (r memReservations) FindActiveEndingBefore(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, snap := range r.u.st.reservations {
		if snap.Status == reservation.StatusActive && !snap.Period.End().After(cutoff) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r memReservations) FindPendingHoldRelease(_ context.Context, limit int) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, snap := range r.u.st.reservations {
		if len(out) == limit {
			break
		}
		if reservation.ReconstructReservation(snap).NeedsHoldRelease() {
			out = append(out, id)
		}
	}
	return out, nil
}

type memTrailers struct{ u *memUoW }

func (r memTrailers) Create(_ context.Context, t *trailer.Trailer) error {
	r.u.st.trailers[t.ID()] = cloneTrailer(t)
	return nil
}

func (r memTrailers) FindByID(_ context.Context, id uuid.UUID) (*trailer.Trailer, error) {
	t, ok := r.u.st.trailers[id]
	if !ok {
		return nil, repoErr(infra.KindNotFound)
	}
	return cloneTrailer(t), nil
}

func (r memTrailers) LockByID(ctx context.Context, id uuid.UUID) (*trailer.Trailer, error) {
	return r.FindByID(ctx, id)
}

func (r memTrailers) UpdateStatus(_ context.Context, id uuid.UUID, status trailer.Status, now time.Time) error {
	t, ok := r.u.st.trailers[id]
	if !ok {
		return repoErr(infra.KindNotFound)
	}
	r.u.st.trailers[id] = trailer.ReconstructTrailer(t.ID(), detailsOf(t), status, t.CreatedAt(), now)
	return nil
}

type memPins struct{ u *memUoW }

func (r memPins) Create(_ context.Context, p *pin.Pin) error {
	for _, existing := range r.u.st.pins {
		if existing.IsActive() && existing.ReservationID() == p.ReservationID() {
			return repoErr(infra.KindDuplicateKey)
		}
	}
	r.u.st.pins[p.ID()] = clonePin(p)
	return nil
}

func (r memPins) DeactivateActive(_ context.Context, reservationID uuid.UUID, now time.Time) ([]*pin.Pin, error) {
	var out []*pin.Pin
	for id, p := range r.u.st.pins {
		if p.IsActive() && p.ReservationID() == reservationID {
			c := clonePin(p)
			c.Deactivate(now)
			r.u.st.pins[id] = c
			out = append(out, clonePin(c))
		}
	}
	return out, nil
}

func (r memPins) FindActiveByReservation(_ context.Context, reservationID uuid.UUID) (*pin.Pin, error) {
	for _, p := range r.u.st.pins {
		if p.IsActive() && p.ReservationID() == reservationID {
			return clonePin(p), nil
		}
	}
	return nil, repoErr(infra.KindNotFound)
}

func (r memPins) ExpireDue(_ context.Context, now time.Time) ([]*pin.Pin, error) {
	var out []*pin.Pin
	for id, p := range r.u.st.pins {
		if p.IsActive() && !p.ValidUntil().After(now) {
			c := clonePin(p)
			c.Deactivate(now)
			r.u.st.pins[id] = c
			out = append(out, clonePin(c))
		}
	}
	return out, nil
}

func (r memPins) FindPendingRevocation(_ context.Context, limit int) ([]*pin.Pin, error) {
	var out []*pin.Pin
	for _, p := range r.u.st.pins {
		if len(out) == limit {
			break
		}
		if p.NeedsRevocation() {
			out = append(out, clonePin(p))
		}
	}
	return out, nil
}

func (r memPins) UpdateRevocation(_ context.Context, p *pin.Pin) error {
	stored, ok := r.u.st.pins[p.ID()]
	if !ok {
		return repoErr(infra.KindNotFound)
	}
	r.u.st.pins[p.ID()] = pin.ReconstructPin(
		stored.ID(), stored.ReservationID(), stored.LockID(), stored.Code(),
		stored.ValidFrom(), stored.ValidUntil(), stored.IsActive(), stored.DeactivatedAt(),
		p.RevokedAt(), p.RevocationAttempts(), stored.CreatedAt(),
	)
	return nil
}

type memUsers struct{ u *memUoW }

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	usr, ok := r.u.st.users[id]
	if !ok {
		return nil, repoErr(infra.KindNotFound)
	}
	return cloneUser(usr), nil
}

func (r memUsers) Upsert(_ context.Context, usr *user.User) error {
	c := cloneUser(usr)
	if existing, ok := r.u.st.users[usr.ID()]; ok && !usr.HasPaymentCustomer() {
		c.LinkPaymentCustomer(existing.PaymentCustomerID())
	}
	r.u.st.users[usr.ID()] = c
	return nil
}

type memIdempotency struct{ u *memUoW }

func (r memIdempotency) TryInsert(_ context.Context, key, userID uuid.UUID, _ string, requestHash string, expiresAt time.Time) (bool, error) {
	k := idemKey{key, userID}
	if _, ok := r.u.st.idempotency[k]; ok {
		return false, nil
	}
	r.u.st.idempotency[k] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Status:      shared.IdempotencyProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r memIdempotency) Get(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.u.st.idempotency[idemKey{key, userID}]
	if !ok {
		return nil, repoErr(infra.KindNotFound)
	}
	return &rec, nil
}

func (r memIdempotency) UpdateStatusCompleted(_ context.Context, key, userID, reservationID uuid.UUID) error {
	k := idemKey{key, userID}
	rec := r.u.st.idempotency[k]
	id := reservationID
	rec.Status = shared.IdempotencyCompleted
	rec.ResultReservationID = &id
	r.u.st.idempotency[k] = rec
	return nil
}

func (r memIdempotency) ClaimExpired(_ context.Context, key, userID uuid.UUID, requestHash string, now, expiresAt time.Time) (bool, error) {
	k := idemKey{key, userID}
	rec, ok := r.u.st.idempotency[k]
	if !ok || rec.ExpiresAt.After(now) {
		return false, nil
	}
	r.u.st.idempotency[k] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Status:      shared.IdempotencyProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r memIdempotency) Release(_ context.Context, key, userID uuid.UUID) error {
	k := idemKey{key, userID}
	if rec, ok := r.u.st.idempotency[k]; ok && rec.Status == shared.IdempotencyProcessing {
		delete(r.u.st.idempotency, k)
	}
	return nil
}

type memNotifications struct{ u *memUoW }

func (r memNotifications) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	r.u.st.jobs = append(r.u.st.jobs, memJob{Kind: kind, Topic: topic, Payload: payload, RunAt: runAt})
	return nil
}

func snapshotOf(r *reservation.Reservation) reservation.Snapshot {
	return reservation.Snapshot{
		ID:              r.ID(),
		UserID:          r.UserID(),
		TrailerID:       r.TrailerID(),
		Status:          r.Status(),
		Period:          r.Period(),
		ActualEnd:       r.ActualEnd(),
		TotalPrice:      r.TotalPrice(),
		TaxID:           r.TaxID(),
		PinCode:         r.PinCode(),
		PinExpiry:       r.PinExpiry(),
		AuthorizationID: r.AuthorizationID(),
		CaptureID:       r.CaptureID(),
		InvoiceID:       r.InvoiceID(),
		CheckInAt:       r.CheckInAt(),
		CheckOutAt:      r.CheckOutAt(),
		CancelReason:    r.CancelReason(),
		HoldReleasedAt:  r.HoldReleasedAt(),
		LastExtendedOn:  r.LastExtendedOn(),
		ReturnPhotos:    r.ReturnPhotos(),
		Version:         r.Version(),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}
}

func detailsOf(t *trailer.Trailer) trailer.Details {
	return trailer.Details{
		Name:         t.Name(),
		Kind:         t.Kind(),
		Manufacturer: t.Manufacturer(),
		LicensePlate: t.LicensePlate(),
		Location:     t.Location(),
		Pricing:      t.Pricing(),
		LockID:       t.LockID(),
		TimeZone:     t.TimeZone(),
	}
}

func cloneTrailer(t *trailer.Trailer) *trailer.Trailer {
	return trailer.ReconstructTrailer(t.ID(), detailsOf(t), t.Status(), t.CreatedAt(), t.UpdatedAt())
}

func clonePin(p *pin.Pin) *pin.Pin {
	return pin.ReconstructPin(
		p.ID(), p.ReservationID(), p.LockID(), p.Code(),
		p.ValidFrom(), p.ValidUntil(), p.IsActive(), p.DeactivatedAt(),
		p.RevokedAt(), p.RevocationAttempts(), p.CreatedAt(),
	)
}

func cloneUser(u *user.User) *user.User {
	return user.ReconstructUser(
		u.ID(), u.Name(), u.Email(), u.Phone(), u.Address(), u.TaxID(),
		u.PaymentCustomerID(), u.Role(), u.IsActive(), u.CreatedAt(), u.UpdatedAt(),
	)
}
