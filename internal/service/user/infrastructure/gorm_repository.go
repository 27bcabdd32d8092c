// internal/service/user/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"voyago/internal/pkg/apperr"
	"voyago/internal/service/user/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserModel 是 users 表的 GORM 模型。
type UserModel struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Email     string `gorm:"size:128;uniqueIndex;not null"`
	FirstName string `gorm:"column:first_name;size:64"`
	LastName  string `gorm:"column:last_name;size:64"`
	IsActive  bool   `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string { return "users" }

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&UserModel{})
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	model := &UserModel{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsActive:  user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return pkgerrors.Wrap(err, "insert user")
	}
	user.ID = model.ID
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "user %d not found", id)
		}
		return nil, pkgerrors.Wrap(err, "query user")
	}
	return &domain.User{
		ID:        model.ID,
		Email:     model.Email,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		Active:    model.IsActive,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}
