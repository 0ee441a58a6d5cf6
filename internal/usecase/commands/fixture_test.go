//go:build unit

package commands

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"trailer-rental/internal/domain/pin"
	"trailer-rental/internal/domain/reservation"
	"trailer-rental/internal/domain/trailer"
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/pkg/clock"
	"trailer-rental/internal/pkg/config"
	portsmock "trailer-rental/internal/testutil/mock/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// 10:00 in Prague
var baseTime = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

const validTaxID = "25596641"

type fixture struct {
	uow       *memUoW
	clock     *clock.MockClock
	processor *portsmock.MockPaymentProcessor
	lock      *portsmock.MockLockController
	photos    *portsmock.MockPhotoStorage
	codes     *seqCodes
	cfg       config.Config
	logger    *slog.Logger
	payments  *PaymentCoordinator
	pins      *PinManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		uow:       newMemUoW(),
		clock:     clock.NewMockClock(baseTime),
		processor: portsmock.NewMockPaymentProcessor(ctrl),
		lock:      portsmock.NewMockLockController(ctrl),
		photos:    portsmock.NewMockPhotoStorage(ctrl),
		codes:     &seqCodes{codes: []string{"4821", "7390", "1654", "9043"}},
		cfg:       config.NewTestConfig(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	f.cfg.Payment.AuthorizationTimeout = 50 * time.Millisecond
	f.payments = NewPaymentCoordinator(f.uow, f.processor, f.clock, f.cfg, f.logger)
	f.pins = NewPinManager(f.uow, f.lock, f.codes, f.clock, f.cfg, f.logger)
	return f
}

func (f *fixture) reservationCommands() ReservationCommands {
	return NewReservationCommands(f.uow, f.payments, f.pins, f.photos, f.clock, f.cfg, f.logger)
}

func (f *fixture) paymentCommands() PaymentCommands {
	return NewPaymentCommands(f.uow, f.processor, f.payments, f.pins, f.clock, f.cfg, f.logger)
}

func (f *fixture) sweepCommands() SweepCommands {
	return NewSweepCommands(f.uow, f.pins, f.payments, f.clock, f.cfg, f.logger)
}

// seqCodes hands out codes in order and repeats the last one.
type seqCodes struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func (s *seqCodes) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.codes[min(s.next, len(s.codes)-1)]
	s.next++
	return code, nil
}

var _ pin.CodeGenerator = (*seqCodes)(nil)

func (f *fixture) seedTrailer(t *testing.T) *trailer.Trailer {
	t.Helper()
	pricing, err := trailer.NewPricing(500, 900, 400)
	require.NoError(t, err)
	loc, err := trailer.NewLocation(50.0755, 14.4378, "Vinohradská 12, Praha")
	require.NoError(t, err)
	tz, err := trailer.NewTimeZone("Europe/Prague")
	require.NoError(t, err)
	tr, err := trailer.NewTrailer(trailer.Details{
		Name:     "Agados 750",
		Kind:     "box",
		Location: loc,
		Pricing:  pricing,
		LockID:   "lock-1",
		TimeZone: tz,
	})
	require.NoError(t, err)
	f.uow.putTrailer(tr)
	return tr
}

func (f *fixture) seedRenter(t *testing.T, customerRef string) *user.User {
	t.Helper()
	name, err := user.NewName("Jana", "Novák")
	require.NoError(t, err)
	email, err := user.NewEmail("jana@example.cz")
	require.NoError(t, err)
	phone, err := user.NewPhone("777123456")
	require.NoError(t, err)
	addr, err := user.NewAddress("Korunní 5", "Praha", "12000")
	require.NoError(t, err)

	u := user.NewUser(uuid.New(), name, email, phone, addr, nil, user.RoleRenter)
	if customerRef != "" {
		u.LinkPaymentCustomer(customerRef)
	}
	f.uow.putUser(u)
	return u
}

// seedReservation stores a reservation already moved to status, with
// authorization handle auth when one is given.
func (f *fixture) seedReservation(
	t *testing.T,
	renter *user.User,
	tr *trailer.Trailer,
	start, end time.Time,
	status reservation.Status,
	auth string,
) *reservation.Reservation {
	t.Helper()
	period, err := reservation.NewPeriod(start, end)
	require.NoError(t, err)
	created := f.clock.Now()
	if !end.After(created) {
		created = start.Add(-time.Hour)
	}
	res, err := reservation.NewReservation(renter.ID(), tr, period, nil, created)
	require.NoError(t, err)

	switch status {
	case reservation.StatusPendingPayment:
		if auth != "" {
			require.NoError(t, res.AttachAuthorization(auth, created))
		}
	case reservation.StatusConfirmed:
		require.NoError(t, res.Confirm(auth, created))
	case reservation.StatusActive:
		require.NoError(t, res.Confirm(auth, created))
		require.NoError(t, res.CheckIn(start, 0))
	case reservation.StatusCancelled:
		if auth != "" {
			require.NoError(t, res.AttachAuthorization(auth, created))
		}
		require.NoError(t, res.Cancel(reservation.CancelByUser, created))
	default:
		t.Fatalf("unsupported seed status %s", status)
	}
	f.uow.putReservation(res)
	return res
}

// seedPin stores an active PIN for res valid until the given time.
func (f *fixture) seedPin(t *testing.T, res *reservation.Reservation, code string, validUntil time.Time) *pin.Pin {
	t.Helper()
	p, err := pin.NewPin(res.ID(), "lock-1", code, res.Period().Start(), validUntil)
	require.NoError(t, err)
	f.uow.putPin(p)
	return p
}

func at(day, hour int) time.Time {
	return time.Date(2026, 7, day, hour, 0, 0, 0, time.UTC)
}
