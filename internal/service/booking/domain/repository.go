// internal/service/booking/domain/repository.go
package domain

import "context"

// Repository 是预订记录的持久化接口。
type Repository interface {
	Save(ctx context.Context, booking *Booking) error
	Update(ctx context.Context, booking *Booking) error
	FindByID(ctx context.Context, id string) (*Booking, error)
	FindByReference(ctx context.Context, reference string) (*Booking, error)
	FindByUserID(ctx context.Context, userID uint64) ([]*Booking, error)
}
