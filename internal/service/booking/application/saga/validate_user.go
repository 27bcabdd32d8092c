// internal/service/booking/application/saga/validate_user.go
package saga

import (
	"voyago/internal/pkg/apperr"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ValidateUserHandler 在任何预留副作用之前核验请求方身份。
type ValidateUserHandler struct {
	NextHandler
}

func (h *ValidateUserHandler) Handle(bookingCtx *BookingContext) error {
	ctx, span := bookingCtx.Tracer.Start(bookingCtx.Ctx, "saga.ValidateUser")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", int64(bookingCtx.Booking.UserID)))

	valid, err := bookingCtx.Identity.Validate(ctx, bookingCtx.Booking.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "identity check failed")
		return err
	}
	if !valid {
		err := apperr.Newf(apperr.KindValidation, apperr.CodeRequesterInvalid,
			"user %d is not allowed to book", bookingCtx.Booking.UserID)
		span.RecordError(err)
		return err
	}

	span.AddEvent("requester validated")
	return h.executeNext(bookingCtx)
}
