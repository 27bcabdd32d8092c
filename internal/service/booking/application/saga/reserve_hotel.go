// internal/service/booking/application/saga/reserve_hotel.go
package saga

import (
	"context"

	"voyago/internal/pkg/apperr"
	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ReserveHotelHandler 负责酒店段的可用性检查、定价和房间预留。
// 它排在航段之后：这里失败会触发已注册的航段补偿。
type ReserveHotelHandler struct {
	NextHandler
}

func (h *ReserveHotelHandler) Handle(bookingCtx *BookingContext) error {
	booking := bookingCtx.Booking
	if !booking.HasHotel() {
		return h.executeNext(bookingCtx)
	}

	ctx, span := bookingCtx.Tracer.Start(bookingCtx.Ctx, "saga.ReserveHotel")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("hotel.id", int64(booking.HotelID)),
		attribute.Int("rooms", booking.Rooms),
		attribute.Int("nights", booking.Nights()),
	)

	av, err := bookingCtx.Hotels.CheckAvailability(ctx, booking.HotelID, booking.Rooms)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !av.Available {
		err := apperr.Newf(apperr.KindBusinessRejection, apperr.CodeInsufficientCapacity,
			"hotel %d: %s", booking.HotelID, av.Reason)
		span.RecordError(err)
		return err
	}

	info, err := bookingCtx.Hotels.GetHotel(ctx, booking.HotelID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	booking.HotelCost = info.PricePerNight * float64(booking.Nights()) * float64(booking.Rooms)

	if err := bookingCtx.Hotels.Reserve(ctx, booking.HotelID, booking.Rooms); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hotel reservation failed")
		// 传输层失败时结果未知，不注册补偿
		return err
	}

	bookingCtx.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := bookingCtx.Tracer.Start(compCtx, "saga.compensation.ReleaseHotel")
		defer compSpan.End()
		compSpan.SetAttributes(attribute.Int64("hotel.id", int64(booking.HotelID)))

		metrics.CompensationsTotal.WithLabelValues("hotel").Inc()
		if err := bookingCtx.Hotels.Release(compCtx, booking.HotelID, booking.Rooms); err != nil {
			compSpan.RecordError(err)
			metrics.CompensationFailures.WithLabelValues("hotel").Inc()
			logger.Ctx(compCtx).Error().Err(err).
				Uint64("hotel_id", booking.HotelID).
				Int("rooms", booking.Rooms).
				Msg("hotel compensation failed, rooms leaked")
		}
	})

	span.AddEvent("hotel rooms reserved")
	return h.executeNext(bookingCtx)
}
