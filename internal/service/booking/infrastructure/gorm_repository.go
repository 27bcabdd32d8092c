// internal/service/booking/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"voyago/internal/pkg/apperr"
	"voyago/internal/service/booking/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormBookingRepository 是 domain.Repository 的 GORM 实现。
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&BookingModel{})
}

func (r *GormBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toModel(booking)).Error; err != nil {
		return pkgerrors.Wrap(err, "insert booking")
	}
	return nil
}

func (r *GormBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	res := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"status":            string(booking.Status),
			"payment_reference": booking.PaymentReference,
			"updated_at":        booking.UpdatedAt,
		})
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "update booking")
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "booking %s not found", booking.ID)
	}
	return nil
}

func (r *GormBookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "booking %s not found", id)
		}
		return nil, pkgerrors.Wrap(err, "query booking")
	}
	return toDomain(&model), nil
}

func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "booking %s not found", reference)
		}
		return nil, pkgerrors.Wrap(err, "query booking by reference")
	}
	return toDomain(&model), nil
}

func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uint64) ([]*domain.Booking, error) {
	var models []BookingModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query bookings by user")
	}
	bookings := make([]*domain.Booking, 0, len(models))
	for i := range models {
		bookings = append(bookings, toDomain(&models[i]))
	}
	return bookings, nil
}
