// internal/service/booking/application/saga/notify.go
package saga

import (
	"fmt"
	"time"

	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/metrics"
	"voyago/internal/service/booking/domain/port"
)

// NotifyHandler 投递创建事件。通知是尽力而为的：
// 投递失败只记日志和指标，预订本身已经成立。
type NotifyHandler struct {
	NextHandler
}

func (h *NotifyHandler) Handle(bookingCtx *BookingContext) error {
	ctx, span := bookingCtx.Tracer.Start(bookingCtx.Ctx, "saga.Notify")
	defer span.End()

	booking := bookingCtx.Booking
	err := bookingCtx.Notifier.Produce(ctx, port.Notification{
		BookingID: booking.ID,
		Reference: booking.Reference,
		UserID:    booking.UserID,
		Event:     "BOOKING_CREATED",
		Message:   fmt.Sprintf("booking %s created, total %.2f", booking.Reference, booking.TotalCost),
		Timestamp: time.Now(),
	})
	if err != nil {
		span.RecordError(err)
		metrics.NotificationFailures.Inc()
		logger.Ctx(ctx).Warn().Err(err).Str("booking_id", booking.ID).Msg("notification delivery failed")
	}

	return h.executeNext(bookingCtx)
}
