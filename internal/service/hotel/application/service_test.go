package application

import (
	"context"
	"sync"
	"testing"

	"voyago/internal/pkg/apperr"
	"voyago/internal/service/hotel/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// fakeRepo 用互斥锁模拟存储层条件更新的原子性。
// beforeAdjust 非空时在容量调整进临界区之前被调用，用来在测试里插入并发写。
type fakeRepo struct {
	mu           sync.Mutex
	hotels       map[uint64]*domain.Hotel
	nextID       uint64
	beforeAdjust func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{hotels: make(map[uint64]*domain.Hotel), nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, hotel *domain.Hotel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	hotel.ID = r.nextID
	r.nextID++
	copied := *hotel
	r.hotels[hotel.ID] = &copied
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uint64) (*domain.Hotel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hotels[id]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "hotel %d not found", id)
	}
	copied := *h
	return &copied, nil
}

func (r *fakeRepo) ReserveRooms(_ context.Context, id uint64, rooms int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hotels[id]
	if !ok {
		return 0, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "hotel %d not found", id)
	}
	if err := h.Bookable(); err != nil {
		return 0, err
	}
	if h.AvailableRooms < rooms {
		return 0, apperr.Newf(apperr.KindBusinessRejection, apperr.CodeInsufficientCapacity,
			"only %d rooms available, requested: %d", h.AvailableRooms, rooms)
	}
	h.AvailableRooms -= rooms
	return h.AvailableRooms, nil
}

func (r *fakeRepo) ReleaseRooms(_ context.Context, id uint64, rooms int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hotels[id]
	if !ok {
		return 0, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "hotel %d not found", id)
	}
	if h.AvailableRooms+rooms > h.TotalRooms {
		return 0, apperr.Newf(apperr.KindInconsistency, apperr.CodeCapacityOverflow,
			"releasing %d rooms would exceed total capacity %d", rooms, h.TotalRooms)
	}
	h.AvailableRooms += rooms
	return h.AvailableRooms, nil
}

func (r *fakeRepo) AdjustCapacity(_ context.Context, id uint64, newTotal int) (*domain.Hotel, error) {
	if r.beforeAdjust != nil {
		r.beforeAdjust()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hotels[id]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "hotel %d not found", id)
	}
	if err := h.ValidateNewCapacity(newTotal); err != nil {
		return nil, err
	}
	h.AvailableRooms += newTotal - h.TotalRooms
	h.TotalRooms = newTotal
	copied := *h
	return &copied, nil
}

func (r *fakeRepo) SetActive(_ context.Context, id uint64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hotels[id]
	if !ok {
		return apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "hotel %d not found", id)
	}
	h.Active = active
	return nil
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

func newTestService(t *testing.T) (*HotelService, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewHotelService(repo, &fakeLocker{}, noop.NewTracerProvider().Tracer("test"))
	return svc, repo
}

func createHotel(t *testing.T, svc *HotelService, rooms int) *domain.Hotel {
	t.Helper()
	hotel, err := svc.CreateHotel(context.Background(), CreateHotelCommand{
		Name:          "Voyago Grand",
		City:          "Shanghai",
		Address:       "1 Century Ave",
		Rating:        4.5,
		PricePerNight: 620.0,
		TotalRooms:    rooms,
	})
	require.NoError(t, err)
	return hotel
}

func TestAdjustCapacity(t *testing.T) {
	svc, _ := newTestService(t)
	hotel := createHotel(t, svc, 100)
	ctx := context.Background()

	_, err := svc.ReserveRooms(ctx, hotel.ID, 30)
	require.NoError(t, err)

	// 缩到 50：可用量联动为 50 - 30 = 20
	updated, err := svc.AdjustCapacity(ctx, hotel.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.TotalRooms)
	assert.Equal(t, 20, updated.AvailableRooms)

	// 不能缩到在途预留之下
	_, err = svc.AdjustCapacity(ctx, hotel.ID, 29)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.AdjustCapacity(ctx, hotel.ID, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

// 容量调整是相对增量写，中途落进来的并发预留不能被绝对值覆盖掉。
func TestAdjustCapacityKeepsConcurrentReservation(t *testing.T) {
	svc, repo := newTestService(t)
	hotel := createHotel(t, svc, 100)
	ctx := context.Background()

	// 在调整读到行之后、写回之前插入一笔预留
	repo.beforeAdjust = func() {
		repo.beforeAdjust = nil
		_, err := svc.ReserveRooms(ctx, hotel.ID, 10)
		require.NoError(t, err)
	}

	updated, err := svc.AdjustCapacity(ctx, hotel.ID, 120)
	require.NoError(t, err)
	assert.Equal(t, 120, updated.TotalRooms)
	assert.Equal(t, 110, updated.AvailableRooms)

	final, err := repo.FindByID(ctx, hotel.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, final.ReservedRooms())
	assert.LessOrEqual(t, final.AvailableRooms, final.TotalRooms)
}

func TestReleaseIgnoresActiveGate(t *testing.T) {
	svc, _ := newTestService(t)
	hotel := createHotel(t, svc, 10)
	ctx := context.Background()

	_, err := svc.ReserveRooms(ctx, hotel.ID, 4)
	require.NoError(t, err)

	_, err = svc.SetActive(ctx, hotel.ID, false)
	require.NoError(t, err)

	// 停业挡新预留，不挡归还
	_, err = svc.ReserveRooms(ctx, hotel.ID, 1)
	assert.Equal(t, apperr.CodeResourceNotBookable, apperr.CodeOf(err))

	remaining, err := svc.ReleaseRooms(ctx, hotel.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)
}
