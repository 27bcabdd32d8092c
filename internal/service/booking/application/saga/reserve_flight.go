// internal/service/booking/application/saga/reserve_flight.go
package saga

import (
	"context"

	"voyago/internal/pkg/apperr"
	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ReserveFlightHandler 负责航段的可用性检查、定价和座位预留。
type ReserveFlightHandler struct {
	NextHandler
}

func (h *ReserveFlightHandler) Handle(bookingCtx *BookingContext) error {
	booking := bookingCtx.Booking
	if !booking.HasFlight() {
		return h.executeNext(bookingCtx)
	}

	ctx, span := bookingCtx.Tracer.Start(bookingCtx.Ctx, "saga.ReserveFlight")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("flight.id", int64(booking.FlightID)),
		attribute.Int("passengers", booking.Passengers),
	)

	av, err := bookingCtx.Flights.CheckAvailability(ctx, booking.FlightID, booking.Passengers)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !av.Available {
		err := apperr.Newf(apperr.KindBusinessRejection, apperr.CodeInsufficientCapacity,
			"flight %d: %s", booking.FlightID, av.Reason)
		span.RecordError(err)
		return err
	}

	info, err := bookingCtx.Flights.GetFlight(ctx, booking.FlightID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	booking.FlightCost = info.Price * float64(booking.Passengers)

	if err := bookingCtx.Flights.Reserve(ctx, booking.FlightID, booking.Passengers); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "flight reservation failed")
		// 传输层失败时结果未知，不注册补偿
		return err
	}

	// 预留确认成功，此时才挂上对应的归还动作
	bookingCtx.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := bookingCtx.Tracer.Start(compCtx, "saga.compensation.ReleaseFlight")
		defer compSpan.End()
		compSpan.SetAttributes(attribute.Int64("flight.id", int64(booking.FlightID)))

		metrics.CompensationsTotal.WithLabelValues("flight").Inc()
		if err := bookingCtx.Flights.Release(compCtx, booking.FlightID, booking.Passengers); err != nil {
			// 补偿失败意味着库存泄漏，需要人工对账
			compSpan.RecordError(err)
			metrics.CompensationFailures.WithLabelValues("flight").Inc()
			logger.Ctx(compCtx).Error().Err(err).
				Uint64("flight_id", booking.FlightID).
				Int("seats", booking.Passengers).
				Msg("flight compensation failed, seats leaked")
		}
	})

	span.AddEvent("flight seats reserved")
	return h.executeNext(bookingCtx)
}
