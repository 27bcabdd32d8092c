package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"voyago/internal/pkg/apperr"
	"voyago/internal/service/booking/domain"
	"voyago/internal/service/booking/domain/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type fakeFlightInv struct {
	mu          sync.Mutex
	info        port.FlightInfo
	available   bool
	reason      string
	getErr      error
	checkErr    error
	reserveErr  error
	releaseErr  error
	checkCalls  int
	reserves    int
	releases    int
	releasedQty int
}

func (f *fakeFlightInv) GetFlight(_ context.Context, _ uint64) (port.FlightInfo, error) {
	if f.getErr != nil {
		return port.FlightInfo{}, f.getErr
	}
	return f.info, nil
}

func (f *fakeFlightInv) CheckAvailability(_ context.Context, _ uint64, _ int) (port.AvailabilityResult, error) {
	f.mu.Lock()
	f.checkCalls++
	f.mu.Unlock()
	if f.checkErr != nil {
		return port.AvailabilityResult{}, f.checkErr
	}
	return port.AvailabilityResult{Available: f.available, Remaining: f.info.Available, Reason: f.reason}, nil
}

func (f *fakeFlightInv) Reserve(_ context.Context, _ uint64, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserves++
	return nil
}

func (f *fakeFlightInv) Release(_ context.Context, _ uint64, seats int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.releases++
	f.releasedQty += seats
	return nil
}

type fakeHotelInv struct {
	mu         sync.Mutex
	info       port.HotelInfo
	available  bool
	reason     string
	getErr     error
	checkErr   error
	reserveErr error
	releaseErr error
	checkCalls int
	reserves   int
	releases   int
}

func (h *fakeHotelInv) GetHotel(_ context.Context, _ uint64) (port.HotelInfo, error) {
	if h.getErr != nil {
		return port.HotelInfo{}, h.getErr
	}
	return h.info, nil
}

func (h *fakeHotelInv) CheckAvailability(_ context.Context, _ uint64, _ int) (port.AvailabilityResult, error) {
	h.mu.Lock()
	h.checkCalls++
	h.mu.Unlock()
	if h.checkErr != nil {
		return port.AvailabilityResult{}, h.checkErr
	}
	return port.AvailabilityResult{Available: h.available, Remaining: h.info.Available, Reason: h.reason}, nil
}

func (h *fakeHotelInv) Reserve(_ context.Context, _ uint64, _ int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reserveErr != nil {
		return h.reserveErr
	}
	h.reserves++
	return nil
}

func (h *fakeHotelInv) Release(_ context.Context, _ uint64, _ int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.releaseErr != nil {
		return h.releaseErr
	}
	h.releases++
	return nil
}

type fakeIdentity struct {
	valid bool
	err   error
	calls int
}

func (f *fakeIdentity) Validate(_ context.Context, _ uint64) (bool, error) {
	f.calls++
	return f.valid, f.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	events []port.Notification
}

func (f *fakeNotifier) Produce(_ context.Context, n port.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, n)
	return nil
}

type fakeSequencer struct {
	ref string
	err error
}

func (f *fakeSequencer) Next(_ context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.ref, nil
}

type fakePolicy struct {
	err   error
	calls int
}

func (f *fakePolicy) Validate(_ context.Context, _ port.PolicyInput) error {
	f.calls++
	return f.err
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	saveErr  error
	bookings map[string]*domain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*domain.Booking)}
}

func (r *fakeBookingRepo) Save(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok {
		return apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "booking %s not found", b.ID)
	}
	stored.Status = b.Status
	stored.PaymentReference = b.PaymentReference
	stored.UpdatedAt = b.UpdatedAt
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "booking %s not found", id)
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Reference == reference {
			copied := *b
			return &copied, nil
		}
	}
	return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "booking %s not found", reference)
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID uint64) ([]*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fixture struct {
	svc      *BookingService
	repo     *fakeBookingRepo
	flights  *fakeFlightInv
	hotels   *fakeHotelInv
	identity *fakeIdentity
	notifier *fakeNotifier
	sequence *fakeSequencer
	policy   *fakePolicy
}

func newFixture() *fixture {
	f := &fixture{
		repo: newFakeBookingRepo(),
		flights: &fakeFlightInv{
			info:      port.FlightInfo{ID: 42, Number: "VY101", Price: 899.0, Available: 100, Status: "SCHEDULED"},
			available: true,
		},
		hotels: &fakeHotelInv{
			info:      port.HotelInfo{ID: 99, Name: "Harbour View", PricePerNight: 620.0, Available: 20, Active: true},
			available: true,
		},
		identity: &fakeIdentity{valid: true},
		notifier: &fakeNotifier{},
		sequence: &fakeSequencer{ref: "BK20260910000001"},
		policy:   &fakePolicy{},
	}
	f.svc = NewBookingService(f.repo, f.flights, f.hotels, f.identity, f.notifier, f.sequence, f.policy,
		noop.NewTracerProvider().Tracer("test"))
	return f
}

func comboCommand() CreateBookingCommand {
	checkIn := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	return CreateBookingCommand{
		UserID:     7,
		FlightID:   42,
		Passengers: 2,
		HotelID:    99,
		Rooms:      1,
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, 3),
	}
}

func TestCreateBookingSuccess(t *testing.T) {
	f := newFixture()

	booking, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, booking.Status)
	assert.Equal(t, "BK20260910000001", booking.Reference)
	assert.Equal(t, 1798.0, booking.FlightCost) // 899 * 2
	assert.Equal(t, 1860.0, booking.HotelCost)  // 620 * 3 nights * 1 room
	assert.Equal(t, 3658.0, booking.TotalCost)

	assert.Equal(t, 1, f.flights.reserves)
	assert.Equal(t, 1, f.hotels.reserves)
	assert.Zero(t, f.flights.releases)
	assert.Zero(t, f.hotels.releases)

	saved, err := f.repo.FindByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.Reference, saved.Reference)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, "BOOKING_CREATED", f.notifier.events[0].Event)
}

func TestCreateBookingHotelRejectionCompensatesFlight(t *testing.T) {
	f := newFixture()
	f.hotels.available = false
	f.hotels.reason = "only 0 rooms available"

	_, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRejection))

	// 航段预留被逆序归还，整段数量一次还清
	assert.Equal(t, 1, f.flights.reserves)
	assert.Equal(t, 1, f.flights.releases)
	assert.Equal(t, 2, f.flights.releasedQty)
	assert.Zero(t, f.hotels.reserves)

	// 中止的创建不留任何记录行
	assert.Empty(t, f.repo.bookings)
	assert.Empty(t, f.notifier.events)
}

func TestCreateBookingFlightOnlyNeverTouchesHotel(t *testing.T) {
	f := newFixture()
	cmd := comboCommand()
	cmd.HotelID = 0
	cmd.Rooms = 0
	cmd.CheckIn = time.Time{}
	cmd.CheckOut = time.Time{}

	booking, err := f.svc.CreateBooking(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 1798.0, booking.TotalCost)
	assert.Zero(t, booking.HotelCost)

	assert.Zero(t, f.hotels.checkCalls)
	assert.Zero(t, f.hotels.reserves)
}

func TestCreateBookingTransportFailureIsNotCompensated(t *testing.T) {
	f := newFixture()
	f.hotels.reserveErr = apperr.New(apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable,
		"service hotel-service unreachable")

	_, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpstreamUnavailable))

	// 酒店侧结果未知，绝不能盲目归还；航段预留照常回滚
	assert.Zero(t, f.hotels.releases)
	assert.Equal(t, 1, f.flights.releases)
	assert.Empty(t, f.repo.bookings)
}

func TestCreateBookingFlightUnavailableStopsEarly(t *testing.T) {
	f := newFixture()
	f.flights.available = false
	f.flights.reason = "only 1 seats available"

	_, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRejection))

	assert.Zero(t, f.flights.reserves)
	assert.Zero(t, f.hotels.checkCalls)
	assert.Empty(t, f.repo.bookings)
}

func TestCreateBookingInvalidUser(t *testing.T) {
	f := newFixture()
	f.identity.valid = false

	_, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeRequesterInvalid, apperr.CodeOf(err))

	assert.Zero(t, f.flights.checkCalls)
	assert.Zero(t, f.flights.reserves)
	assert.Zero(t, f.hotels.reserves)
}

func TestCreateBookingPolicyBreachHasNoSideEffects(t *testing.T) {
	f := newFixture()
	f.policy.err = apperr.New(apperr.KindValidation, apperr.CodeValidation,
		"booking rejected by policy: passengers <= 9")

	_, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	assert.Zero(t, f.identity.calls)
	assert.Zero(t, f.flights.reserves)
	assert.Zero(t, f.hotels.reserves)
}

func TestCreateBookingSequencerFallback(t *testing.T) {
	f := newFixture()
	f.sequence.err = apperr.New(apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable, "redis down")

	booking, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.NoError(t, err)

	// 退化为时间戳参考号，预订不因序号服务失败而失败
	assert.True(t, strings.HasPrefix(booking.Reference, "BK"))
	assert.Greater(t, len(booking.Reference), 2)
}

func TestCreateBookingPersistFailureCompensatesBoth(t *testing.T) {
	f := newFixture()
	f.repo.saveErr = apperr.New(apperr.KindInconsistency, apperr.CodeInconsistency, "insert booking: db down")

	_, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.Error(t, err)

	assert.Equal(t, 1, f.flights.releases)
	assert.Equal(t, 1, f.hotels.releases)
	assert.Empty(t, f.notifier.events)
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture()
	booking, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.NoError(t, err)

	confirmed, err := f.svc.ConfirmBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)

	_, err = f.svc.ConfirmBooking(context.Background(), booking.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindStateConflict))
}

func TestCancelBookingReleasesBoth(t *testing.T) {
	f := newFixture()
	booking, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.NoError(t, err)

	cancelled, err := f.svc.CancelBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, 1, f.flights.releases)
	assert.Equal(t, 1, f.hotels.releases)

	// 已取消的记录拒绝再次取消
	_, err = f.svc.CancelBooking(context.Background(), booking.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindStateConflict))
	assert.Equal(t, 1, f.flights.releases)
}

func TestCancelBookingReleaseFailureDoesNotBlockTransition(t *testing.T) {
	f := newFixture()
	booking, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.NoError(t, err)

	f.flights.releaseErr = apperr.New(apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable,
		"service flight-service unreachable")

	cancelled, err := f.svc.CancelBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, 1, f.hotels.releases)
}

func TestUpdatePayment(t *testing.T) {
	f := newFixture()
	booking, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.NoError(t, err)

	paid, err := f.svc.UpdatePayment(context.Background(), booking.ID, "PAY-123")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, paid.Status)
	assert.Equal(t, "PAY-123", paid.PaymentReference)

	// 非 PENDING 不接受支付
	_, err = f.svc.UpdatePayment(context.Background(), booking.ID, "PAY-456")
	assert.True(t, apperr.IsKind(err, apperr.KindStateConflict))
}

func TestGetBookingByReference(t *testing.T) {
	f := newFixture()
	booking, err := f.svc.CreateBooking(context.Background(), comboCommand())
	require.NoError(t, err)

	found, err := f.svc.GetBookingByReference(context.Background(), booking.Reference)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)

	_, err = f.svc.GetBookingByReference(context.Background(), "BK00000000000000")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
