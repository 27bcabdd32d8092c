// internal/service/flight/application/service.go
package application

import (
	"context"
	"fmt"
	"time"

	"voyago/internal/pkg/apperr"
	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/metrics"
	"voyago/internal/pkg/zookeeper"
	"voyago/internal/service/flight/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const resourceKind = "flight"

// FlightService 实现座位台账的应用层操作。
type FlightService struct {
	repo   domain.Repository
	locker zookeeper.Locker
	tracer trace.Tracer
}

func NewFlightService(repo domain.Repository, locker zookeeper.Locker, tracer trace.Tracer) *FlightService {
	return &FlightService{repo: repo, locker: locker, tracer: tracer}
}

// CreateFlightCommand 创建航班的入参。
type CreateFlightCommand struct {
	FlightNumber  string
	Airline       string
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Price         float64
	TotalSeats    int
}

func (s *FlightService) CreateFlight(ctx context.Context, cmd CreateFlightCommand) (*domain.Flight, error) {
	ctx, span := s.tracer.Start(ctx, "flight.Create")
	defer span.End()

	flight, err := domain.NewFlight(cmd.FlightNumber, cmd.Airline, cmd.Origin, cmd.Destination,
		cmd.DepartureTime, cmd.ArrivalTime, cmd.Price, cmd.TotalSeats)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Uint64("flight_id", flight.ID).Str("number", flight.FlightNumber).Msg("flight created")
	return flight, nil
}

func (s *FlightService) GetFlight(ctx context.Context, id uint64) (*domain.Flight, error) {
	ctx, span := s.tracer.Start(ctx, "flight.Get")
	defer span.End()
	return s.repo.FindByID(ctx, id)
}

// CheckAvailability 只读检查；不构成任何形式的预留。
func (s *FlightService) CheckAvailability(ctx context.Context, id uint64, seats int) (domain.Availability, error) {
	ctx, span := s.tracer.Start(ctx, "flight.CheckAvailability")
	defer span.End()

	if seats <= 0 {
		return domain.Availability{}, apperr.New(apperr.KindValidation, apperr.CodeValidation, "seats must be positive")
	}
	flight, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Availability{}, err
	}
	av := flight.CheckAvailability(seats)
	span.SetAttributes(
		attribute.Bool("availability.available", av.Available),
		attribute.Int("availability.remaining", av.Remaining),
	)
	return av, nil
}

// ReserveSeats 原子扣减座位，返回剩余座位数。
func (s *FlightService) ReserveSeats(ctx context.Context, id uint64, seats int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "flight.ReserveSeats")
	defer span.End()
	span.SetAttributes(attribute.Int64("flight.id", int64(id)), attribute.Int("seats", seats))

	if seats <= 0 {
		return 0, apperr.New(apperr.KindValidation, apperr.CodeValidation, "seats must be positive")
	}

	remaining, err := s.repo.ReserveSeats(ctx, id, seats)
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
	logger.Ctx(ctx).Info().Uint64("flight_id", id).Int("seats", seats).Int("remaining", remaining).Msg("seats reserved")
	return remaining, nil
}

// ReleaseSeats 原子归还座位，返回剩余座位数。
// 释放没有可订状态前置条件：取消一个已停飞航班上的预订也要能归还座位。
func (s *FlightService) ReleaseSeats(ctx context.Context, id uint64, seats int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "flight.ReleaseSeats")
	defer span.End()
	span.SetAttributes(attribute.Int64("flight.id", int64(id)), attribute.Int("seats", seats))

	if seats <= 0 {
		return 0, apperr.New(apperr.KindValidation, apperr.CodeValidation, "seats must be positive")
	}

	remaining, err := s.repo.ReleaseSeats(ctx, id, seats)
	if err != nil {
		span.RecordError(err)
		if apperr.IsKind(err, apperr.KindInconsistency) {
			// 释放溢出说明有重复补偿或台账被污染，必须大声告警
			metrics.InconsistencyTotal.WithLabelValues(resourceKind).Inc()
			logger.Ctx(ctx).Error().Err(err).Uint64("flight_id", id).Msg("release would overflow capacity")
		}
		metrics.ReleasesTotal.WithLabelValues(resourceKind, metrics.OutcomeError).Inc()
		return 0, err
	}

	metrics.ReleasesTotal.WithLabelValues(resourceKind, metrics.OutcomeSuccess).Inc()
	logger.Ctx(ctx).Info().Uint64("flight_id", id).Int("seats", seats).Int("remaining", remaining).Msg("seats released")
	return remaining, nil
}

// AdjustCapacity 修改总座位数，可用座位数按差值联动。
// 与并发预留/释放的竞争由存储层的单次条件更新解决；
// 资源级分布式锁只负责把多个容量调整彼此串行化。
func (s *FlightService) AdjustCapacity(ctx context.Context, id uint64, newTotal int) (*domain.Flight, error) {
	ctx, span := s.tracer.Start(ctx, "flight.AdjustCapacity")
	defer span.End()

	if newTotal <= 0 {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "total seats must be positive")
	}

	var updated *domain.Flight
	err := s.locker.WithLock(ctx, fmt.Sprintf("flight-%d", id), func() error {
		flight, err := s.repo.AdjustCapacity(ctx, id, newTotal)
		if err != nil {
			return err
		}
		updated = flight
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Uint64("flight_id", id).Int("total", newTotal).Msg("capacity adjusted")
	return updated, nil
}
