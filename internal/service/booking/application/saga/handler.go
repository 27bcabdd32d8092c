// internal/service/booking/application/saga/handler.go
package saga

import (
	"context"
	"sync"

	"voyago/internal/pkg/logger"
	"voyago/internal/service/booking/domain"
	"voyago/internal/service/booking/domain/port"

	"go.opentelemetry.io/otel/trace"
)

// BookingContext 在编排流程中传递领域对象和出站端口。
// 补偿栈按注册的逆序执行：后预留的资源先归还。
type BookingContext struct {
	Ctx     context.Context
	Booking *domain.Booking
	Tracer  trace.Tracer

	Flights  port.FlightInventory
	Hotels   port.HotelInventory
	Identity port.IdentityService
	Notifier port.NotificationProducer
	Sequence port.ReferenceSequencer

	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// AddCompensation 头插，保证触发时逆序执行。
// 只有确认成功的预留才允许注册补偿：传输层失败意味着结果未知，
// 归还一笔可能从未扣减的库存会把台账顶穿。
func (c *BookingContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

// TriggerCompensation 逆序执行全部已注册的补偿。
func (c *BookingContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Info().
		Str("booking_id", c.Booking.ID).
		Int("count", len(c.compensations)).
		Msg("executing compensation functions")
	for _, comp := range c.compensations {
		comp(ctx)
	}
	c.compensations = nil
}

// Handler 是责任链上的一个编排步骤。
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(bookingCtx *BookingContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(bookingCtx *BookingContext) error {
	if h.next != nil {
		return h.next.Handle(bookingCtx)
	}
	return nil
}
