// internal/service/hotel/domain/repository.go
package domain

import "context"

// Repository 定义房间台账的持久化接口。
// 预留/释放与航班侧同构：单条条件更新，返回变更后的剩余房间数。
type Repository interface {
	Create(ctx context.Context, hotel *Hotel) error
	FindByID(ctx context.Context, id uint64) (*Hotel, error)

	// ReserveRooms 原子扣减；停业酒店返回 RESOURCE_NOT_BOOKABLE。
	ReserveRooms(ctx context.Context, id uint64, rooms int) (remaining int, err error)

	// ReleaseRooms 原子归还；溢出返回 CAPACITY_OVERFLOW。不检查 active。
	ReleaseRooms(ctx context.Context, id uint64, rooms int) (remaining int, err error)

	// AdjustCapacity 总量差值联动可用量，单次条件更新；
	// 缩量低于在途预留时返回 Validation 错误。
	AdjustCapacity(ctx context.Context, id uint64, newTotal int) (*Hotel, error)

	// SetActive 开关新预留闸门。
	SetActive(ctx context.Context, id uint64, active bool) error
}
