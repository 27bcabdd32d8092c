// internal/service/booking/domain/port/ports.go
package port

import (
	"context"
	"time"
)

// FlightInfo 是航班服务回告的定价输入。
type FlightInfo struct {
	ID        uint64
	Number    string
	Price     float64
	Available int
	Status    string
}

// HotelInfo 是酒店服务回告的定价输入。
type HotelInfo struct {
	ID            uint64
	Name          string
	PricePerNight float64
	Available     int
	Active        bool
}

// AvailabilityResult 是只读可用性检查的远端结果。
type AvailabilityResult struct {
	Available bool
	Remaining int
	Reason    string
}

// FlightInventory 是航班台账的出站端口。
// Reserve 的传输层失败必须以 UpstreamUnavailable 上浮：结果未知，
// 调用方不得为该资源注册补偿。
type FlightInventory interface {
	GetFlight(ctx context.Context, flightID uint64) (FlightInfo, error)
	CheckAvailability(ctx context.Context, flightID uint64, seats int) (AvailabilityResult, error)
	Reserve(ctx context.Context, flightID uint64, seats int) error
	Release(ctx context.Context, flightID uint64, seats int) error
}

// HotelInventory 是房间台账的出站端口，语义与航班侧一致。
type HotelInventory interface {
	GetHotel(ctx context.Context, hotelID uint64) (HotelInfo, error)
	CheckAvailability(ctx context.Context, hotelID uint64, rooms int) (AvailabilityResult, error)
	Reserve(ctx context.Context, hotelID uint64, rooms int) error
	Release(ctx context.Context, hotelID uint64, rooms int) error
}

// IdentityService 是身份边界的出站端口。
type IdentityService interface {
	Validate(ctx context.Context, userID uint64) (bool, error)
}

// Notification 是投递给下游的事件负载。
type Notification struct {
	BookingID string    `json:"bookingId"`
	Reference string    `json:"reference"`
	UserID    uint64    `json:"userId"`
	Event     string    `json:"event"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationProducer 投递尽力而为的通知。失败由调用方吞掉。
type NotificationProducer interface {
	Produce(ctx context.Context, n Notification) error
}

// ReferenceSequencer 生成对外的预订参考号。
type ReferenceSequencer interface {
	Next(ctx context.Context) (string, error)
}

// PolicyInput 是预订资格规则的求值输入。
type PolicyInput struct {
	Passengers int
	Rooms      int
	Nights     int
	HasFlight  bool
	HasHotel   bool
}

// BookingPolicy 在任何预留副作用之前评估资格规则。
type BookingPolicy interface {
	Validate(ctx context.Context, in PolicyInput) error
}
