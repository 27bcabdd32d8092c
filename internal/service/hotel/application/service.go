// internal/service/hotel/application/service.go
package application

import (
	"context"
	"fmt"

	"voyago/internal/pkg/apperr"
	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/metrics"
	"voyago/internal/pkg/zookeeper"
	"voyago/internal/service/hotel/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const resourceKind = "hotel"

// HotelService 实现房间台账的应用层操作。
type HotelService struct {
	repo   domain.Repository
	locker zookeeper.Locker
	tracer trace.Tracer
}

func NewHotelService(repo domain.Repository, locker zookeeper.Locker, tracer trace.Tracer) *HotelService {
	return &HotelService{repo: repo, locker: locker, tracer: tracer}
}

// CreateHotelCommand 创建酒店的入参。
type CreateHotelCommand struct {
	Name          string
	City          string
	Address       string
	Rating        float64
	PricePerNight float64
	TotalRooms    int
}

func (s *HotelService) CreateHotel(ctx context.Context, cmd CreateHotelCommand) (*domain.Hotel, error) {
	ctx, span := s.tracer.Start(ctx, "hotel.Create")
	defer span.End()

	hotel, err := domain.NewHotel(cmd.Name, cmd.City, cmd.Address, cmd.Rating, cmd.PricePerNight, cmd.TotalRooms)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, hotel); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Uint64("hotel_id", hotel.ID).Str("name", hotel.Name).Msg("hotel created")
	return hotel, nil
}

func (s *HotelService) GetHotel(ctx context.Context, id uint64) (*domain.Hotel, error) {
	ctx, span := s.tracer.Start(ctx, "hotel.Get")
	defer span.End()
	return s.repo.FindByID(ctx, id)
}

// CheckAvailability 只读检查；不构成任何形式的预留。
func (s *HotelService) CheckAvailability(ctx context.Context, id uint64, rooms int) (domain.Availability, error) {
	ctx, span := s.tracer.Start(ctx, "hotel.CheckAvailability")
	defer span.End()

	if rooms <= 0 {
		return domain.Availability{}, apperr.New(apperr.KindValidation, apperr.CodeValidation, "rooms must be positive")
	}
	hotel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Availability{}, err
	}
	av := hotel.CheckAvailability(rooms)
	span.SetAttributes(
		attribute.Bool("availability.available", av.Available),
		attribute.Int("availability.remaining", av.Remaining),
	)
	return av, nil
}

// ReserveRooms 原子扣减房间，返回剩余房间数。
func (s *HotelService) ReserveRooms(ctx context.Context, id uint64, rooms int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "hotel.ReserveRooms")
	defer span.End()
	span.SetAttributes(attribute.Int64("hotel.id", int64(id)), attribute.Int("rooms", rooms))

	if rooms <= 0 {
		return 0, apperr.New(apperr.KindValidation, apperr.CodeValidation, "rooms must be positive")
	}

	remaining, err := s.repo.ReserveRooms(ctx, id, rooms)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation failed")
		if apperr.IsKind(err, apperr.KindBusinessRejection) {
			metrics.ReservationsTotal.WithLabelValues(resourceKind, metrics.OutcomeRejected).Inc()
		} else {
			metrics.ReservationsTotal.WithLabelValues(resourceKind, metrics.OutcomeError).Inc()
		}
		return 0, err
	}

	metrics.ReservationsTotal.WithLabelValues(resourceKind, metrics.OutcomeSuccess).Inc()
	logger.Ctx(ctx).Info().Uint64("hotel_id", id).Int("rooms", rooms).Int("remaining", remaining).Msg("rooms reserved")
	return remaining, nil
}

// ReleaseRooms 原子归还房间。停业酒店同样接受归还。
func (s *HotelService) ReleaseRooms(ctx context.Context, id uint64, rooms int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "hotel.ReleaseRooms")
	defer span.End()
	span.SetAttributes(attribute.Int64("hotel.id", int64(id)), attribute.Int("rooms", rooms))

	if rooms <= 0 {
		return 0, apperr.New(apperr.KindValidation, apperr.CodeValidation, "rooms must be positive")
	}

	remaining, err := s.repo.ReleaseRooms(ctx, id, rooms)
	if err != nil {
		span.RecordError(err)
		if apperr.IsKind(err, apperr.KindInconsistency) {
			metrics.InconsistencyTotal.WithLabelValues(resourceKind).Inc()
			logger.Ctx(ctx).Error().Err(err).Uint64("hotel_id", id).Msg("release would overflow capacity")
		}
		metrics.ReleasesTotal.WithLabelValues(resourceKind, metrics.OutcomeError).Inc()
		return 0, err
	}

	metrics.ReleasesTotal.WithLabelValues(resourceKind, metrics.OutcomeSuccess).Inc()
	logger.Ctx(ctx).Info().Uint64("hotel_id", id).Int("rooms", rooms).Int("remaining", remaining).Msg("rooms released")
	return remaining, nil
}

// AdjustCapacity 总量差值联动可用量，与航班侧同一套路：
// 存储层单次条件更新对付并发预留/释放，锁只串行化调整之间的竞争。
func (s *HotelService) AdjustCapacity(ctx context.Context, id uint64, newTotal int) (*domain.Hotel, error) {
	ctx, span := s.tracer.Start(ctx, "hotel.AdjustCapacity")
	defer span.End()

	if newTotal <= 0 {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "total rooms must be positive")
	}

	var updated *domain.Hotel
	err := s.locker.WithLock(ctx, fmt.Sprintf("hotel-%d", id), func() error {
		hotel, err := s.repo.AdjustCapacity(ctx, id, newTotal)
		if err != nil {
			return err
		}
		updated = hotel
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Uint64("hotel_id", id).Int("total", newTotal).Msg("capacity adjusted")
	return updated, nil
}

// SetActive 切换新预留闸门；不影响在途预留的释放。
func (s *HotelService) SetActive(ctx context.Context, id uint64, active bool) (*domain.Hotel, error) {
	ctx, span := s.tracer.Start(ctx, "hotel.SetActive")
	defer span.End()

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Uint64("hotel_id", id).Bool("active", active).Msg("hotel active flag updated")
	return s.repo.FindByID(ctx, id)
}
