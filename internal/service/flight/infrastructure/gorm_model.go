// internal/service/flight/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"voyago/internal/service/flight/domain"
)

// FlightModel 是 flights 表的 GORM 模型。
type FlightModel struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	FlightNumber   string    `gorm:"column:flight_number;size:16;uniqueIndex;not null"`
	Airline        string    `gorm:"size:64"`
	Origin         string    `gorm:"size:64;index:idx_route"`
	Destination    string    `gorm:"size:64;index:idx_route"`
	DepartureTime  time.Time `gorm:"column:departure_time"`
	ArrivalTime    time.Time `gorm:"column:arrival_time"`
	Price          float64   `gorm:"not null"`
	TotalSeats     int       `gorm:"column:total_seats;not null"`
	AvailableSeats int       `gorm:"column:available_seats;not null"`
	Status         string    `gorm:"size:16;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (FlightModel) TableName() string { return "flights" }

func toModel(f *domain.Flight) *FlightModel {
	return &FlightModel{
		ID:             f.ID,
		FlightNumber:   f.FlightNumber,
		Airline:        f.Airline,
		Origin:         f.Origin,
		Destination:    f.Destination,
		DepartureTime:  f.DepartureTime,
		ArrivalTime:    f.ArrivalTime,
		Price:          f.Price,
		TotalSeats:     f.TotalSeats,
		AvailableSeats: f.AvailableSeats,
		Status:         string(f.Status),
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

func toDomain(m *FlightModel) *domain.Flight {
	return &domain.Flight{
		ID:             m.ID,
		FlightNumber:   m.FlightNumber,
		Airline:        m.Airline,
		Origin:         m.Origin,
		Destination:    m.Destination,
		DepartureTime:  m.DepartureTime,
		ArrivalTime:    m.ArrivalTime,
		Price:          m.Price,
		TotalSeats:     m.TotalSeats,
		AvailableSeats: m.AvailableSeats,
		Status:         domain.Status(m.Status),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
