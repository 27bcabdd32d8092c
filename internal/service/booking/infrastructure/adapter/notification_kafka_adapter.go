// internal/service/booking/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"voyago/internal/pkg/mq"
	"voyago/internal/service/booking/domain/port"

	pkgerrors "github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// NotificationKafkaAdapter 把通知投到 Kafka。
// key 是用户 id，同一用户的事件落同一分区保证有序。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

func (a *NotificationKafkaAdapter) Produce(ctx context.Context, n port.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return pkgerrors.Wrap(err, "marshal notification")
	}
	key := []byte(strconv.FormatUint(n.UserID, 10))
	if err := mq.ProduceMessage(ctx, a.writer, key, payload); err != nil {
		return pkgerrors.Wrap(err, "produce notification")
	}
	return nil
}

func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}
