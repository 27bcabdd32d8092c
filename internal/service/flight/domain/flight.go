// internal/service/flight/domain/flight.go
package domain

import (
	"fmt"
	"time"

	"voyago/internal/pkg/apperr"
)

// Status 定义航班的生命周期状态，只有 SCHEDULED 可以被预订。
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusDelayed   Status = "DELAYED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// Flight 是座位台账的聚合根。
// 不变量：0 <= AvailableSeats <= TotalSeats，由存储层的条件更新保证。
type Flight struct {
	ID             uint64
	FlightNumber   string
	Airline        string
	Origin         string
	Destination    string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	Price          float64
	TotalSeats     int
	AvailableSeats int
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewFlight 创建一个新航班，可用座位等于总座位。
func NewFlight(number, airline, origin, destination string, dep, arr time.Time, price float64, totalSeats int) (*Flight, error) {
	if number == "" {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "flight number is required")
	}
	if totalSeats <= 0 {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "total seats must be positive")
	}
	if price < 0 {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "price must not be negative")
	}
	now := time.Now()
	return &Flight{
		FlightNumber:   number,
		Airline:        airline,
		Origin:         origin,
		Destination:    destination,
		DepartureTime:  dep,
		ArrivalTime:    arr,
		Price:          price,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		Status:         StatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Bookable 返回 nil 当且仅当航班处于可预订状态。
func (f *Flight) Bookable() error {
	if f.Status != StatusScheduled {
		return apperr.Newf(apperr.KindBusinessRejection, apperr.CodeResourceNotBookable,
			"cannot book seats on a %s flight", f.Status)
	}
	return nil
}

// Availability 是只读可用性检查的结果。
type Availability struct {
	Available bool
	Remaining int
	Reason    string
}

// CheckAvailability 只读判定：状态可订且剩余座位足够。
func (f *Flight) CheckAvailability(requiredSeats int) Availability {
	if f.Status != StatusScheduled {
		return Availability{
			Available: false,
			Remaining: f.AvailableSeats,
			Reason:    fmt.Sprintf("flight is %s", f.Status),
		}
	}
	if f.AvailableSeats < requiredSeats {
		return Availability{
			Available: false,
			Remaining: f.AvailableSeats,
			Reason:    fmt.Sprintf("only %d seats available", f.AvailableSeats),
		}
	}
	return Availability{
		Available: true,
		Remaining: f.AvailableSeats,
		Reason:    fmt.Sprintf("flight is available with %d seats", f.AvailableSeats),
	}
}

// ReservedSeats 当前被占用的座位数。
func (f *Flight) ReservedSeats() int {
	return f.TotalSeats - f.AvailableSeats
}

// ValidateNewCapacity 校验总座位数调整：不能低于已被占用的座位数。
func (f *Flight) ValidateNewCapacity(newTotal int) error {
	if newTotal <= 0 {
		return apperr.New(apperr.KindValidation, apperr.CodeValidation, "total seats must be positive")
	}
	if newTotal < f.ReservedSeats() {
		return apperr.Newf(apperr.KindValidation, apperr.CodeValidation,
			"cannot reduce total seats below %d already reserved", f.ReservedSeats())
	}
	return nil
}
