// internal/service/booking/domain/booking.go
package domain

import (
	"time"

	"voyago/internal/pkg/apperr"

	"github.com/google/uuid"
)

// Status 是预订记录的状态机。
// CONFIRMED / CANCELLED / COMPLETED / FAILED 都是终态的候选，
// 其中 CANCELLED 和 COMPLETED 拒绝一切后续迁移。
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Booking 是一次组合预订的记录。航段和酒店段都可选，但至少要有一个。
type Booking struct {
	ID        string
	Reference string
	UserID    uint64

	FlightID   uint64 // 0 表示无航段
	Passengers int
	FlightCost float64

	HotelID   uint64 // 0 表示无酒店段
	Rooms     int
	CheckIn   time.Time
	CheckOut  time.Time
	HotelCost float64

	TotalCost        float64
	Status           Status
	PaymentReference string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBooking 只做结构校验；容量、身份、价格都在编排流程里解决。
func NewBooking(userID uint64, flightID uint64, passengers int, hotelID uint64, rooms int, checkIn, checkOut time.Time) (*Booking, error) {
	if userID == 0 {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "user id is required")
	}
	if flightID == 0 && hotelID == 0 {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "booking must include a flight or a hotel")
	}
	if flightID != 0 && passengers <= 0 {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "passengers must be positive")
	}
	if hotelID != 0 {
		if rooms <= 0 {
			return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "rooms must be positive")
		}
		if checkIn.IsZero() || checkOut.IsZero() || !checkOut.After(checkIn) {
			return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "check-out must be after check-in")
		}
	}
	now := time.Now()
	return &Booking{
		ID:         uuid.NewString(),
		UserID:     userID,
		FlightID:   flightID,
		Passengers: passengers,
		HotelID:    hotelID,
		Rooms:      rooms,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (b *Booking) HasFlight() bool { return b.FlightID != 0 }
func (b *Booking) HasHotel() bool  { return b.HotelID != 0 }

// Nights 计算计费的住宿晚数，当天往返按一晚计。
func (b *Booking) Nights() int {
	nights := int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
	if nights < 1 {
		return 1
	}
	return nights
}

// SetCosts 记账并维持 total = flight + hotel 不变量。
func (b *Booking) SetCosts(flightCost, hotelCost float64) {
	b.FlightCost = flightCost
	b.HotelCost = hotelCost
	b.TotalCost = flightCost + hotelCost
}

// Confirm 只接受 PENDING 起点。
func (b *Booking) Confirm() error {
	if b.Status != StatusPending {
		return apperr.Newf(apperr.KindStateConflict, apperr.CodeStateConflict,
			"cannot confirm booking in status %s", b.Status)
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = time.Now()
	return nil
}

// Cancel 拒绝已取消和已完成的记录；PENDING、CONFIRMED、FAILED 都可取消。
func (b *Booking) Cancel() error {
	if b.Status == StatusCancelled || b.Status == StatusCompleted {
		return apperr.Newf(apperr.KindStateConflict, apperr.CodeStateConflict,
			"cannot cancel booking in status %s", b.Status)
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// AttachPayment 记录支付凭据并确认，只接受 PENDING 起点。
func (b *Booking) AttachPayment(paymentRef string) error {
	if paymentRef == "" {
		return apperr.New(apperr.KindValidation, apperr.CodeValidation, "payment reference is required")
	}
	if b.Status != StatusPending {
		return apperr.Newf(apperr.KindStateConflict, apperr.CodeStateConflict,
			"cannot attach payment to booking in status %s", b.Status)
	}
	b.PaymentReference = paymentRef
	b.Status = StatusConfirmed
	b.UpdatedAt = time.Now()
	return nil
}

// MarkFailed 由编排流程在补偿后调用，只用于上报，不落库。
func (b *Booking) MarkFailed() {
	b.Status = StatusFailed
	b.UpdatedAt = time.Now()
}
