// internal/service/flight/domain/repository.go
package domain

import "context"

// Repository 定义座位台账的持久化接口，由基础设施层实现。
//
// ReserveSeats / ReleaseSeats 必须把"检查 + 变更"压成存储层的单次条件更新：
// 先读后写会在并发预订下超卖。两者都返回变更后的剩余座位数。
type Repository interface {
	Create(ctx context.Context, flight *Flight) error
	FindByID(ctx context.Context, id uint64) (*Flight, error)

	// ReserveSeats 原子扣减。失败返回：
	// NotFound / RESOURCE_NOT_BOOKABLE / INSUFFICIENT_CAPACITY。
	ReserveSeats(ctx context.Context, id uint64, seats int) (remaining int, err error)

	// ReleaseSeats 原子归还。结果超过总座位时返回 CAPACITY_OVERFLOW，
	// 防止重复释放污染台账。没有可订状态前置条件。
	ReleaseSeats(ctx context.Context, id uint64, seats int) (remaining int, err error)

	// AdjustCapacity 把总量改成 newTotal，可用量按差值联动，
	// 同样压成单次条件更新：绝对值写入会覆盖掉并发预留。
	// 缩量低于在途预留时返回 Validation 错误。
	AdjustCapacity(ctx context.Context, id uint64, newTotal int) (*Flight, error)
}
