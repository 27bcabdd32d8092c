// internal/service/booking/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"voyago/internal/service/booking/domain"
)

// BookingModel 是 bookings 表的 GORM 模型。主键用应用层生成的 uuid。
type BookingModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Reference string `gorm:"size:32;uniqueIndex;not null"`
	UserID    uint64 `gorm:"column:user_id;index;not null"`

	FlightID   uint64  `gorm:"column:flight_id"`
	Passengers int     `gorm:"not null;default:0"`
	FlightCost float64 `gorm:"column:flight_cost;not null;default:0"`

	HotelID   uint64     `gorm:"column:hotel_id"`
	Rooms     int        `gorm:"not null;default:0"`
	CheckIn   *time.Time `gorm:"column:check_in"`
	CheckOut  *time.Time `gorm:"column:check_out"`
	HotelCost float64    `gorm:"column:hotel_cost;not null;default:0"`

	TotalCost        float64 `gorm:"column:total_cost;not null"`
	Status           string  `gorm:"size:16;not null;index"`
	PaymentReference string  `gorm:"column:payment_reference;size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BookingModel) TableName() string { return "bookings" }

func toModel(b *domain.Booking) *BookingModel {
	model := &BookingModel{
		ID:               b.ID,
		Reference:        b.Reference,
		UserID:           b.UserID,
		FlightID:         b.FlightID,
		Passengers:       b.Passengers,
		FlightCost:       b.FlightCost,
		HotelID:          b.HotelID,
		Rooms:            b.Rooms,
		HotelCost:        b.HotelCost,
		TotalCost:        b.TotalCost,
		Status:           string(b.Status),
		PaymentReference: b.PaymentReference,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
	if !b.CheckIn.IsZero() {
		checkIn := b.CheckIn
		model.CheckIn = &checkIn
	}
	if !b.CheckOut.IsZero() {
		checkOut := b.CheckOut
		model.CheckOut = &checkOut
	}
	return model
}

func toDomain(m *BookingModel) *domain.Booking {
	booking := &domain.Booking{
		ID:               m.ID,
		Reference:        m.Reference,
		UserID:           m.UserID,
		FlightID:         m.FlightID,
		Passengers:       m.Passengers,
		FlightCost:       m.FlightCost,
		HotelID:          m.HotelID,
		Rooms:            m.Rooms,
		HotelCost:        m.HotelCost,
		TotalCost:        m.TotalCost,
		Status:           domain.Status(m.Status),
		PaymentReference: m.PaymentReference,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.CheckIn != nil {
		booking.CheckIn = *m.CheckIn
	}
	if m.CheckOut != nil {
		booking.CheckOut = *m.CheckOut
	}
	return booking
}
