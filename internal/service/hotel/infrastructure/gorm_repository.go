// internal/service/hotel/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"voyago/internal/pkg/apperr"
	"voyago/internal/service/hotel/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormHotelRepository 是 domain.Repository 的 GORM 实现。
// 与航班侧同构：扣减/归还/容量调整都是单条条件 UPDATE，由数据库串行化同行竞争。
type GormHotelRepository struct {
	db *gorm.DB
}

func NewGormHotelRepository(db *gorm.DB) *GormHotelRepository {
	return &GormHotelRepository{db: db}
}

func (r *GormHotelRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&HotelModel{})
}

func (r *GormHotelRepository) Create(ctx context.Context, hotel *domain.Hotel) error {
	model := toModel(hotel)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return pkgerrors.Wrap(err, "insert hotel")
	}
	hotel.ID = model.ID
	return nil
}

func (r *GormHotelRepository) FindByID(ctx context.Context, id uint64) (*domain.Hotel, error) {
	return findHotel(r.db.WithContext(ctx), id)
}

// ReserveRooms 条件更新带上 is_active 闸门；0 行受影响时回读分类原因。
// 更新和回读在同一事务里，回读骑在 UPDATE 的行锁上，返回的剩余量就是本次操作的结果。
func (r *GormHotelRepository) ReserveRooms(ctx context.Context, id uint64, rooms int) (int, error) {
	var remaining int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&HotelModel{}).
			Where("id = ? AND is_active = ? AND available_rooms >= ?", id, true, rooms).
			UpdateColumn("available_rooms", gorm.Expr("available_rooms - ?", rooms))
		if res.Error != nil {
			return pkgerrors.Wrap(res.Error, "reserve rooms")
		}
		if res.RowsAffected == 0 {
			hotel, err := findHotel(tx, id)
			if err != nil {
				return err
			}
			if err := hotel.Bookable(); err != nil {
				return err
			}
			return apperr.Newf(apperr.KindBusinessRejection, apperr.CodeInsufficientCapacity,
				"only %d rooms available, requested: %d", hotel.AvailableRooms, rooms)
		}
		var err error
		remaining, err = remainingRooms(tx, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// ReleaseRooms 不看 is_active，只防溢出。
func (r *GormHotelRepository) ReleaseRooms(ctx context.Context, id uint64, rooms int) (int, error) {
	var remaining int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&HotelModel{}).
			Where("id = ? AND available_rooms + ? <= total_rooms", id, rooms).
			UpdateColumn("available_rooms", gorm.Expr("available_rooms + ?", rooms))
		if res.Error != nil {
			return pkgerrors.Wrap(res.Error, "release rooms")
		}
		if res.RowsAffected == 0 {
			hotel, err := findHotel(tx, id)
			if err != nil {
				return err
			}
			return apperr.Newf(apperr.KindInconsistency, apperr.CodeCapacityOverflow,
				"releasing %d rooms would exceed total capacity %d (available %d)",
				rooms, hotel.TotalRooms, hotel.AvailableRooms)
		}
		var err error
		remaining, err = remainingRooms(tx, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// AdjustCapacity 总量差值联动可用量，压成单条条件 UPDATE：
//
//	UPDATE hotels
//	SET available_rooms = available_rooms + (? - total_rooms), total_rooms = ?
//	WHERE id = ? AND available_rooms + (? - total_rooms) >= 0
//
// MySQL 的 SET 从左到右求值，available_rooms 先用旧 total_rooms 算出差值。
// 相对写法让并发的预留/释放在同一行上排队，而不是被一个绝对值覆盖掉。
func (r *GormHotelRepository) AdjustCapacity(ctx context.Context, id uint64, newTotal int) (*domain.Hotel, error) {
	var hotel *domain.Hotel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			"UPDATE hotels SET available_rooms = available_rooms + (? - total_rooms), total_rooms = ? "+
				"WHERE id = ? AND available_rooms + (? - total_rooms) >= 0",
			newTotal, newTotal, id, newTotal)
		if res.Error != nil {
			return pkgerrors.Wrap(res.Error, "adjust capacity")
		}
		if res.RowsAffected == 0 {
			current, err := findHotel(tx, id)
			if err != nil {
				return err
			}
			// MySQL 默认只报 changed rows，总量原样写回也是 0 行
			if current.TotalRooms == newTotal {
				hotel = current
				return nil
			}
			return apperr.Newf(apperr.KindValidation, apperr.CodeValidation,
				"cannot reduce total rooms below %d already reserved", current.ReservedRooms())
		}
		updated, err := findHotel(tx, id)
		if err != nil {
			return err
		}
		hotel = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hotel, nil
}

func (r *GormHotelRepository) SetActive(ctx context.Context, id uint64, active bool) error {
	res := r.db.WithContext(ctx).Model(&HotelModel{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active)
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "set active")
	}
	if res.RowsAffected == 0 {
		// 0 行可能是酒店不存在，也可能只是标志位本来就是目标值
		if _, err := findHotel(r.db.WithContext(ctx), id); err != nil {
			return err
		}
	}
	return nil
}

func findHotel(tx *gorm.DB, id uint64) (*domain.Hotel, error) {
	var model HotelModel
	if err := tx.First(&model, id).Error; err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "hotel %d not found", id)
		}
		return nil, pkgerrors.Wrap(err, "query hotel")
	}
	return toDomain(&model), nil
}

func remainingRooms(tx *gorm.DB, id uint64) (int, error) {
	var model HotelModel
	if err := tx.Select("available_rooms").First(&model, id).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "reload remaining rooms")
	}
	return model.AvailableRooms, nil
}
