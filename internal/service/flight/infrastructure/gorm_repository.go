// internal/service/flight/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"voyago/internal/pkg/apperr"
	"voyago/internal/service/flight/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormFlightRepository 是 domain.Repository 的 GORM 实现。
// 座位扣减/归还/容量调整都压成单条条件 UPDATE，让数据库自己串行化同一行上的竞争。
type GormFlightRepository struct {
	db *gorm.DB
}

func NewGormFlightRepository(db *gorm.DB) *GormFlightRepository {
	return &GormFlightRepository{db: db}
}

// AutoMigrate 建表。
func (r *GormFlightRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&FlightModel{})
}

func (r *GormFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	model := toModel(flight)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return pkgerrors.Wrap(err, "insert flight")
	}
	flight.ID = model.ID
	return nil
}

func (r *GormFlightRepository) FindByID(ctx context.Context, id uint64) (*domain.Flight, error) {
	return findFlight(r.db.WithContext(ctx), id)
}

// ReserveSeats 的核心是单条条件更新：
//
//	UPDATE flights SET available_seats = available_seats - N
//	WHERE id = ? AND status = 'SCHEDULED' AND available_seats >= N
//
// RowsAffected == 0 时再回读一次行来区分失败原因；此时计数器未被改动。
// 更新和回读在同一事务里，回读骑在 UPDATE 的行锁上，返回的剩余量就是本次操作的结果。
func (r *GormFlightRepository) ReserveSeats(ctx context.Context, id uint64, seats int) (int, error) {
	var remaining int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&FlightModel{}).
			Where("id = ? AND status = ? AND available_seats >= ?", id, string(domain.StatusScheduled), seats).
			UpdateColumn("available_seats", gorm.Expr("available_seats - ?", seats))
		if res.Error != nil {
			return pkgerrors.Wrap(res.Error, "reserve seats")
		}
		if res.RowsAffected == 0 {
			flight, err := findFlight(tx, id)
			if err != nil {
				return err
			}
			if err := flight.Bookable(); err != nil {
				return err
			}
			return apperr.Newf(apperr.KindBusinessRejection, apperr.CodeInsufficientCapacity,
				"only %d seats available, requested: %d", flight.AvailableSeats, seats)
		}
		var err error
		remaining, err = remainingSeats(tx, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// ReleaseSeats 同样是单条条件更新，防止重复释放把计数器顶穿总量：
//
//	... WHERE id = ? AND available_seats + N <= total_seats
func (r *GormFlightRepository) ReleaseSeats(ctx context.Context, id uint64, seats int) (int, error) {
	var remaining int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&FlightModel{}).
			Where("id = ? AND available_seats + ? <= total_seats", id, seats).
			UpdateColumn("available_seats", gorm.Expr("available_seats + ?", seats))
		if res.Error != nil {
			return pkgerrors.Wrap(res.Error, "release seats")
		}
		if res.RowsAffected == 0 {
			flight, err := findFlight(tx, id)
			if err != nil {
				return err
			}
			return apperr.Newf(apperr.KindInconsistency, apperr.CodeCapacityOverflow,
				"releasing %d seats would exceed total capacity %d (available %d)",
				seats, flight.TotalSeats, flight.AvailableSeats)
		}
		var err error
		remaining, err = remainingSeats(tx, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// AdjustCapacity 把总量改写为 newTotal，可用量按差值联动：
//
//	UPDATE flights
//	SET available_seats = available_seats + (? - total_seats), total_seats = ?
//	WHERE id = ? AND available_seats + (? - total_seats) >= 0
//
// MySQL 的 SET 从左到右求值，available_seats 先用旧 total_seats 算出差值。
// 相对写法让并发的预留/释放在同一行上排队，而不是被一个绝对值覆盖掉。
func (r *GormFlightRepository) AdjustCapacity(ctx context.Context, id uint64, newTotal int) (*domain.Flight, error) {
	var flight *domain.Flight
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			"UPDATE flights SET available_seats = available_seats + (? - total_seats), total_seats = ? "+
				"WHERE id = ? AND available_seats + (? - total_seats) >= 0",
			newTotal, newTotal, id, newTotal)
		if res.Error != nil {
			return pkgerrors.Wrap(res.Error, "adjust capacity")
		}
		if res.RowsAffected == 0 {
			current, err := findFlight(tx, id)
			if err != nil {
				return err
			}
			// MySQL 默认只报 changed rows，总量原样写回也是 0 行
			if current.TotalSeats == newTotal {
				flight = current
				return nil
			}
			return apperr.Newf(apperr.KindValidation, apperr.CodeValidation,
				"cannot reduce total seats below %d already reserved", current.ReservedSeats())
		}
		updated, err := findFlight(tx, id)
		if err != nil {
			return err
		}
		flight = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return flight, nil
}

func findFlight(tx *gorm.DB, id uint64) (*domain.Flight, error) {
	var model FlightModel
	if err := tx.First(&model, id).Error; err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, apperr.CodeNotFound, "flight %d not found", id)
		}
		return nil, pkgerrors.Wrap(err, "query flight")
	}
	return toDomain(&model), nil
}

func remainingSeats(tx *gorm.DB, id uint64) (int, error) {
	var model FlightModel
	if err := tx.Select("available_seats").First(&model, id).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "reload remaining seats")
	}
	return model.AvailableSeats, nil
}
