// internal/service/notification/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"voyago/internal/pkg/apperr"
	"voyago/internal/service/notification/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// NotificationModel 是 notifications 表的 GORM 模型。
type NotificationModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	BookingID string `gorm:"column:booking_id;size:36;index"`
	Reference string `gorm:"size:32"`
	UserID    uint64 `gorm:"column:user_id;index"`
	Event     string `gorm:"size:32"`
	Message   string `gorm:"size:512"`
	Status    string `gorm:"size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NotificationModel) TableName() string { return "notifications" }

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&NotificationModel{})
}

func (r *GormNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	model := &NotificationModel{
		ID:        n.ID,
		BookingID: n.BookingID,
		Reference: n.Reference,
		UserID:    n.UserID,
		Event:     n.Event,
		Message:   n.Message,
		Status:    string(n.Status),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return pkgerrors.Wrap(err, "insert notification")
	}
	return nil
}

func (r *GormNotificationRepository) UpdateStatus(ctx context.Context, id string, status domain.DeliveryStatus) error {
	res := r.db.WithContext(ctx).Model(&NotificationModel{}).
		Where("id = ?", id).
		UpdateColumn("status", string(status))
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "update notification status")
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "notification %s not found", id)
	}
	return nil
}

func (r *GormNotificationRepository) FindByUserID(ctx context.Context, userID uint64) ([]*domain.Notification, error) {
	var models []NotificationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query notifications by user")
	}
	out := make([]*domain.Notification, 0, len(models))
	for i := range models {
		m := &models[i]
		out = append(out, &domain.Notification{
			ID:        m.ID,
			BookingID: m.BookingID,
			Reference: m.Reference,
			UserID:    m.UserID,
			Event:     m.Event,
			Message:   m.Message,
			Status:    domain.DeliveryStatus(m.Status),
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return out, nil
}
