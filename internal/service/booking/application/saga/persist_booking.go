// internal/service/booking/application/saga/persist_booking.go
package saga

import (
	"fmt"
	"time"

	"voyago/internal/pkg/logger"
	"voyago/internal/service/booking/domain"

	"go.opentelemetry.io/otel/attribute"
)

// PersistBookingHandler 生成预订参考号并把 PENDING 记录落库。
// 这里失败会触发前序补偿，且不会留下任何记录行。
type PersistBookingHandler struct {
	NextHandler
	repo domain.Repository
}

func NewPersistBookingHandler(repo domain.Repository) *PersistBookingHandler {
	return &PersistBookingHandler{repo: repo}
}

func (h *PersistBookingHandler) Handle(bookingCtx *BookingContext) error {
	ctx, span := bookingCtx.Tracer.Start(bookingCtx.Ctx, "saga.PersistBooking")
	defer span.End()

	booking := bookingCtx.Booking
	booking.SetCosts(booking.FlightCost, booking.HotelCost)

	ref, err := bookingCtx.Sequence.Next(ctx)
	if err != nil {
		// 序号服务不可用时退化为时间戳参考号，预订流程不因此失败
		ref = fmt.Sprintf("BK%d", time.Now().UnixMilli())
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).Str("fallback", ref).Msg("reference sequencer unavailable")
	}
	booking.Reference = ref
	span.SetAttributes(
		attribute.String("booking.reference", ref),
		attribute.Float64("booking.total_cost", booking.TotalCost),
	)

	if err := h.repo.Save(ctx, booking); err != nil {
		span.RecordError(err)
		return err
	}
	span.AddEvent("pending booking saved")
	return h.executeNext(bookingCtx)
}
