// internal/service/notification/application/consumer.go
package application

import (
	"context"
	"encoding/json"
	"time"

	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/metrics"
	"voyago/internal/pkg/mq"
	"voyago/internal/service/notification/domain"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BookingEvent 是 booking-service 投递的事件结构。
type BookingEvent struct {
	BookingID string    `json:"bookingId"`
	Reference string    `json:"reference"`
	UserID    uint64    `json:"userId"`
	Event     string    `json:"event"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Consumer 消费预订事件并落库、模拟投递。
// 通知是尽力而为的：任何处理失败都被吸收，永远不回调上游。
type Consumer struct {
	reader *kafka.Reader
	repo   domain.Repository
	tracer trace.Tracer
}

func NewConsumer(reader *kafka.Reader, repo domain.Repository, tracer trace.Tracer) *Consumer {
	return &Consumer{reader: reader, repo: repo, tracer: tracer}
}

// Run 阻塞消费直到 ctx 取消。
func (c *Consumer) Run(ctx context.Context) error {
	logger.Logger().Info().Str("topic", c.reader.Config().Topic).Msg("notification consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Logger().Error().Err(err).Msg("could not read message")
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(parent context.Context, msg kafka.Message) {
	ctx := mq.ExtractTraceContext(parent, msg.Headers)
	ctx, span := c.tracer.Start(ctx, "notification.Process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		))
	defer span.End()

	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed event")
		metrics.NotificationFailures.Inc()
		logger.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal booking event")
		return
	}
	span.SetAttributes(
		attribute.Int64("user.id", int64(event.UserID)),
		attribute.String("booking.event", event.Event),
	)

	n := domain.NewNotification(event.BookingID, event.Reference, event.UserID, event.Event, event.Message)
	if err := c.repo.Save(ctx, n); err != nil {
		span.RecordError(err)
		metrics.NotificationFailures.Inc()
		logger.Ctx(ctx).Error().Err(err).Str("booking_id", event.BookingID).Msg("failed to persist notification")
		return
	}

	if err := c.deliver(ctx, n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		metrics.NotificationFailures.Inc()
		n.MarkFailed()
	} else {
		span.AddEvent("notification delivered")
		n.MarkSent()
	}
	if err := c.repo.UpdateStatus(ctx, n.ID, n.Status); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("notification_id", n.ID).Msg("failed to update delivery status")
	}
}

// deliver 模拟一次外部渠道投递。
func (c *Consumer) deliver(ctx context.Context, n *domain.Notification) error {
	logger.Ctx(ctx).Info().
		Uint64("user_id", n.UserID).
		Str("event", n.Event).
		Str("message", n.Message).
		Msg("sending notification")
	time.Sleep(50 * time.Millisecond)
	return nil
}
