// internal/service/notification/domain/notification.go
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus 标记一条通知的投递结果。
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
)

// Notification 是一条已接收的预订事件通知。
type Notification struct {
	ID        string
	BookingID string
	Reference string
	UserID    uint64
	Event     string
	Message   string
	Status    DeliveryStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewNotification(bookingID, reference string, userID uint64, event, message string) *Notification {
	now := time.Now()
	return &Notification{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		Reference: reference,
		UserID:    userID,
		Event:     event,
		Message:   message,
		Status:    DeliveryPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (n *Notification) MarkSent() {
	n.Status = DeliverySent
	n.UpdatedAt = time.Now()
}

func (n *Notification) MarkFailed() {
	n.Status = DeliveryFailed
	n.UpdatedAt = time.Now()
}

type Repository interface {
	Save(ctx context.Context, n *Notification) error
	UpdateStatus(ctx context.Context, id string, status DeliveryStatus) error
	FindByUserID(ctx context.Context, userID uint64) ([]*Notification, error)
}
