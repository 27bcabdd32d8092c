// internal/service/booking/application/service.go
package application

import (
	"context"
	"fmt"
	"time"

	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/metrics"
	"voyago/internal/service/booking/application/saga"
	"voyago/internal/service/booking/domain"
	"voyago/internal/service/booking/domain/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// BookingService 编排组合预订的创建、确认、取消和查询。
type BookingService struct {
	repo     domain.Repository
	flights  port.FlightInventory
	hotels   port.HotelInventory
	identity port.IdentityService
	notifier port.NotificationProducer
	sequence port.ReferenceSequencer
	policy   port.BookingPolicy
	tracer   trace.Tracer
}

func NewBookingService(
	repo domain.Repository,
	flights port.FlightInventory,
	hotels port.HotelInventory,
	identity port.IdentityService,
	notifier port.NotificationProducer,
	sequence port.ReferenceSequencer,
	policy port.BookingPolicy,
	tracer trace.Tracer,
) *BookingService {
	return &BookingService{
		repo:     repo,
		flights:  flights,
		hotels:   hotels,
		identity: identity,
		notifier: notifier,
		sequence: sequence,
		policy:   policy,
		tracer:   tracer,
	}
}

// CreateBookingCommand 创建组合预订的入参。
type CreateBookingCommand struct {
	UserID     uint64
	FlightID   uint64
	Passengers int
	HotelID    uint64
	Rooms      int
	CheckIn    time.Time
	CheckOut   time.Time
}

// CreateBooking 跑一条创建 saga：
// 资格规则 → 身份核验 → 航段预留 → 酒店段预留 → 落库 → 通知。
// 任何一步失败都逆序归还已确认的预留，且不留下记录行。
func (s *BookingService) CreateBooking(ctx context.Context, cmd CreateBookingCommand) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Create")
	defer span.End()

	booking, err := domain.NewBooking(cmd.UserID, cmd.FlightID, cmd.Passengers,
		cmd.HotelID, cmd.Rooms, cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("booking.id", booking.ID),
		attribute.Bool("booking.has_flight", booking.HasFlight()),
		attribute.Bool("booking.has_hotel", booking.HasHotel()),
	)

	// 资格规则在任何副作用之前评估
	if err := s.policy.Validate(ctx, port.PolicyInput{
		Passengers: booking.Passengers,
		Rooms:      booking.Rooms,
		Nights:     booking.Nights(),
		HasFlight:  booking.HasFlight(),
		HasHotel:   booking.HasHotel(),
	}); err != nil {
		return nil, err
	}

	bookingCtx := &saga.BookingContext{
		Ctx:      ctx,
		Booking:  booking,
		Tracer:   s.tracer,
		Flights:  s.flights,
		Hotels:   s.hotels,
		Identity: s.identity,
		Notifier: s.notifier,
		Sequence: s.sequence,
	}

	validate := &saga.ValidateUserHandler{}
	validate.
		SetNext(&saga.ReserveFlightHandler{}).
		SetNext(&saga.ReserveHotelHandler{}).
		SetNext(saga.NewPersistBookingHandler(s.repo)).
		SetNext(&saga.NotifyHandler{})

	if err := validate.Handle(bookingCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking saga failed")
		bookingCtx.TriggerCompensation(ctx)
		booking.MarkFailed()
		metrics.BookingsTotal.WithLabelValues(string(domain.StatusFailed)).Inc()
		logger.Ctx(ctx).Warn().Err(err).Str("booking_id", booking.ID).Msg("booking creation aborted")
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues(string(domain.StatusPending)).Inc()
	logger.Ctx(ctx).Info().
		Str("booking_id", booking.ID).
		Str("reference", booking.Reference).
		Float64("total_cost", booking.TotalCost).
		Msg("booking created")
	return booking, nil
}

// ConfirmBooking 只接受 PENDING 起点，其余返回 StateConflict。
func (s *BookingService) ConfirmBooking(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Confirm")
	defer span.End()

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := booking.Confirm(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues(string(domain.StatusConfirmed)).Inc()
	s.notify(ctx, booking, "BOOKING_CONFIRMED", fmt.Sprintf("booking %s confirmed", booking.Reference))
	logger.Ctx(ctx).Info().Str("booking_id", booking.ID).Msg("booking confirmed")
	return booking, nil
}

// CancelBooking 把记录迁移到 CANCELLED 并归还两侧预留。
// 两路释放并发执行；释放失败只记日志和指标，不阻塞状态迁移，
// 留给对账流程兜底。
func (s *BookingService) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Cancel")
	defer span.End()

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := booking.Cancel(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if booking.HasFlight() {
		g.Go(func() error {
			if err := s.flights.Release(gctx, booking.FlightID, booking.Passengers); err != nil {
				metrics.CompensationFailures.WithLabelValues("flight").Inc()
				logger.Ctx(gctx).Error().Err(err).
					Uint64("flight_id", booking.FlightID).
					Msg("seat release on cancel failed, needs reconciliation")
			}
			return nil
		})
	}
	if booking.HasHotel() {
		g.Go(func() error {
			if err := s.hotels.Release(gctx, booking.HotelID, booking.Rooms); err != nil {
				metrics.CompensationFailures.WithLabelValues("hotel").Inc()
				logger.Ctx(gctx).Error().Err(err).
					Uint64("hotel_id", booking.HotelID).
					Msg("room release on cancel failed, needs reconciliation")
			}
			return nil
		})
	}
	_ = g.Wait()

	metrics.BookingsTotal.WithLabelValues(string(domain.StatusCancelled)).Inc()
	s.notify(ctx, booking, "BOOKING_CANCELLED", fmt.Sprintf("booking %s cancelled", booking.Reference))
	logger.Ctx(ctx).Info().Str("booking_id", booking.ID).Msg("booking cancelled")
	return booking, nil
}

// UpdatePayment 记录支付凭据并确认，只接受 PENDING 起点。
func (s *BookingService) UpdatePayment(ctx context.Context, id, paymentRef string) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.UpdatePayment")
	defer span.End()

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := booking.AttachPayment(paymentRef); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues(string(domain.StatusConfirmed)).Inc()
	s.notify(ctx, booking, "PAYMENT_RECEIVED", fmt.Sprintf("payment recorded for booking %s", booking.Reference))
	logger.Ctx(ctx).Info().Str("booking_id", booking.ID).Str("payment_ref", paymentRef).Msg("payment recorded")
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Get")
	defer span.End()
	return s.repo.FindByID(ctx, id)
}

func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.GetByReference")
	defer span.End()
	return s.repo.FindByReference(ctx, reference)
}

func (s *BookingService) ListBookingsByUser(ctx context.Context, userID uint64) ([]*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.ListByUser")
	defer span.End()
	return s.repo.FindByUserID(ctx, userID)
}

func (s *BookingService) notify(ctx context.Context, booking *domain.Booking, event, message string) {
	err := s.notifier.Produce(ctx, port.Notification{
		BookingID: booking.ID,
		Reference: booking.Reference,
		UserID:    booking.UserID,
		Event:     event,
		Message:   message,
		Timestamp: time.Now(),
	})
	if err != nil {
		metrics.NotificationFailures.Inc()
		logger.Ctx(ctx).Warn().Err(err).Str("booking_id", booking.ID).Msg("notification delivery failed")
	}
}
