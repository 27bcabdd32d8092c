package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"voyago/internal/pkg/apperr"
	"voyago/internal/service/flight/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// fakeRepo 用互斥锁模拟存储层条件更新的原子性。
// beforeAdjust 非空时在容量调整进临界区之前被调用，用来在测试里插入并发写。
type fakeRepo struct {
	mu           sync.Mutex
	flights      map[uint64]*domain.Flight
	nextID       uint64
	beforeAdjust func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{flights: make(map[uint64]*domain.Flight), nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, flight *domain.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	flight.ID = r.nextID
	r.nextID++
	copied := *flight
	r.flights[flight.ID] = &copied
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uint64) (*domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[id]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "flight %d not found", id)
	}
	copied := *f
	return &copied, nil
}

func (r *fakeRepo) ReserveSeats(_ context.Context, id uint64, seats int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[id]
	if !ok {
		return 0, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "flight %d not found", id)
	}
	if err := f.Bookable(); err != nil {
		return 0, err
	}
	if f.AvailableSeats < seats {
		return 0, apperr.Newf(apperr.KindBusinessRejection, apperr.CodeInsufficientCapacity,
			"only %d seats available, requested: %d", f.AvailableSeats, seats)
	}
	f.AvailableSeats -= seats
	return f.AvailableSeats, nil
}

func (r *fakeRepo) ReleaseSeats(_ context.Context, id uint64, seats int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[id]
	if !ok {
		return 0, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "flight %d not found", id)
	}
	if f.AvailableSeats+seats > f.TotalSeats {
		return 0, apperr.Newf(apperr.KindInconsistency, apperr.CodeCapacityOverflow,
			"releasing %d seats would exceed total capacity %d", seats, f.TotalSeats)
	}
	f.AvailableSeats += seats
	return f.AvailableSeats, nil
}

func (r *fakeRepo) AdjustCapacity(_ context.Context, id uint64, newTotal int) (*domain.Flight, error) {
	if r.beforeAdjust != nil {
		r.beforeAdjust()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[id]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "flight %d not found", id)
	}
	if err := f.ValidateNewCapacity(newTotal); err != nil {
		return nil, err
	}
	f.AvailableSeats += newTotal - f.TotalSeats
	f.TotalSeats = newTotal
	copied := *f
	return &copied, nil
}

// fakeLocker 进程内互斥，替代 ZooKeeper。
type fakeLocker struct {
	mu sync.Mutex
}

func (l *fakeLocker) WithLock(_ context.Context, _ string, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}

func newTestService(t *testing.T) (*FlightService, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewFlightService(repo, &fakeLocker{}, noop.NewTracerProvider().Tracer("test"))
	return svc, repo
}

func createFlight(t *testing.T, svc *FlightService, seats int) *domain.Flight {
	t.Helper()
	dep := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	flight, err := svc.CreateFlight(context.Background(), CreateFlightCommand{
		FlightNumber:  "VY101",
		Airline:       "Voyago Air",
		Origin:        "PEK",
		Destination:   "SHA",
		DepartureTime: dep,
		ArrivalTime:   dep.Add(2 * time.Hour),
		Price:         899.0,
		TotalSeats:    seats,
	})
	require.NoError(t, err)
	return flight
}

func TestReserveAndRelease(t *testing.T) {
	svc, _ := newTestService(t)
	flight := createFlight(t, svc, 10)
	ctx := context.Background()

	remaining, err := svc.ReserveSeats(ctx, flight.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining)

	_, err = svc.ReserveSeats(ctx, flight.ID, 7)
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRejection))
	assert.Equal(t, apperr.CodeInsufficientCapacity, apperr.CodeOf(err))

	remaining, err = svc.ReleaseSeats(ctx, flight.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)
}

func TestReserveValidation(t *testing.T) {
	svc, _ := newTestService(t)
	flight := createFlight(t, svc, 10)
	ctx := context.Background()

	_, err := svc.ReserveSeats(ctx, flight.ID, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.ReserveSeats(ctx, 9999, 1)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestReleaseOverflow(t *testing.T) {
	svc, _ := newTestService(t)
	flight := createFlight(t, svc, 10)
	ctx := context.Background()

	_, err := svc.ReserveSeats(ctx, flight.ID, 3)
	require.NoError(t, err)

	_, err = svc.ReleaseSeats(ctx, flight.ID, 3)
	require.NoError(t, err)

	// 重复释放必须被挡下
	_, err = svc.ReleaseSeats(ctx, flight.ID, 3)
	assert.True(t, apperr.IsKind(err, apperr.KindInconsistency))
	assert.Equal(t, apperr.CodeCapacityOverflow, apperr.CodeOf(err))
}

func TestConcurrentReservationsNeverOversell(t *testing.T) {
	svc, repo := newTestService(t)
	flight := createFlight(t, svc, 10)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	var successes int64
	var successMu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ReserveSeats(ctx, flight.ID, 1); err == nil {
				successMu.Lock()
				successes++
				successMu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), successes)
	final, err := repo.FindByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, final.AvailableSeats)
}

func TestAdjustCapacity(t *testing.T) {
	svc, _ := newTestService(t)
	flight := createFlight(t, svc, 100)
	ctx := context.Background()

	_, err := svc.ReserveSeats(ctx, flight.ID, 30)
	require.NoError(t, err)

	// 缩到 50：可用量重推为 50 - 30 = 20
	updated, err := svc.AdjustCapacity(ctx, flight.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.TotalSeats)
	assert.Equal(t, 20, updated.AvailableSeats)

	// 不能缩到在途预留之下
	_, err = svc.AdjustCapacity(ctx, flight.ID, 29)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.AdjustCapacity(ctx, flight.ID, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

// 容量调整是相对增量写，中途落进来的并发预留不能被绝对值覆盖掉。
func TestAdjustCapacityKeepsConcurrentReservation(t *testing.T) {
	svc, repo := newTestService(t)
	flight := createFlight(t, svc, 100)
	ctx := context.Background()

	// 在调整读到行之后、写回之前插入一笔预留
	repo.beforeAdjust = func() {
		repo.beforeAdjust = nil
		_, err := svc.ReserveSeats(ctx, flight.ID, 10)
		require.NoError(t, err)
	}

	updated, err := svc.AdjustCapacity(ctx, flight.ID, 120)
	require.NoError(t, err)
	assert.Equal(t, 120, updated.TotalSeats)
	assert.Equal(t, 110, updated.AvailableSeats)

	final, err := repo.FindByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, final.ReservedSeats())
	assert.LessOrEqual(t, final.AvailableSeats, final.TotalSeats)
}
