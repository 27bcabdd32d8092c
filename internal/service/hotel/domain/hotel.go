// internal/service/hotel/domain/hotel.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"voyago/internal/pkg/apperr"
)

// Hotel 表示房间台账的一行。
// AvailableRooms 只会被原子条件更新修改，领域对象不直接改它。
type Hotel struct {
	ID             uint64
	Name           string
	City           string
	Address        string
	Rating         float64
	PricePerNight  float64
	TotalRooms     int
	AvailableRooms int
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewHotel(name, city, address string, rating, pricePerNight float64, totalRooms int) (*Hotel, error) {
	switch {
	case strings.TrimSpace(name) == "":
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "hotel name is required")
	case strings.TrimSpace(city) == "":
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "hotel city is required")
	case pricePerNight <= 0:
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "price per night must be positive")
	case totalRooms <= 0:
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "total rooms must be positive")
	case rating < 0 || rating > 5:
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "rating must be between 0 and 5")
	}
	now := time.Now()
	return &Hotel{
		Name:           name,
		City:           city,
		Address:        address,
		Rating:         rating,
		PricePerNight:  pricePerNight,
		TotalRooms:     totalRooms,
		AvailableRooms: totalRooms,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Bookable 检查是否接受新预留。停业酒店拒绝新预留，但释放不受此限制。
func (h *Hotel) Bookable() error {
	if !h.Active {
		return apperr.New(apperr.KindBusinessRejection, apperr.CodeResourceNotBookable, "hotel is not active")
	}
	return nil
}

// Availability 是只读可用性检查的结果。
type Availability struct {
	Available bool
	Remaining int
	Reason    string
}

func (h *Hotel) CheckAvailability(requiredRooms int) Availability {
	if !h.Active {
		return Availability{Available: false, Remaining: h.AvailableRooms, Reason: "hotel is not active"}
	}
	if h.AvailableRooms < requiredRooms {
		return Availability{
			Available: false,
			Remaining: h.AvailableRooms,
			Reason:    fmt.Sprintf("only %d rooms available", h.AvailableRooms),
		}
	}
	return Availability{
		Available: true,
		Remaining: h.AvailableRooms,
		Reason:    fmt.Sprintf("hotel is available with %d rooms", h.AvailableRooms),
	}
}

// ReservedRooms 推导当前被占用的房间数。
func (h *Hotel) ReservedRooms() int { return h.TotalRooms - h.AvailableRooms }

// ValidateNewCapacity 拒绝把总量缩到在途预留之下。
func (h *Hotel) ValidateNewCapacity(newTotal int) error {
	if newTotal <= 0 {
		return apperr.New(apperr.KindValidation, apperr.CodeValidation, "total rooms must be positive")
	}
	if reserved := h.ReservedRooms(); newTotal < reserved {
		return apperr.Newf(apperr.KindValidation, apperr.CodeValidation,
			"cannot reduce total rooms below %d already reserved", reserved)
	}
	return nil
}
