// internal/service/hotel/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"voyago/internal/service/hotel/domain"
)

// HotelModel 是 hotels 表的 GORM 模型。
type HotelModel struct {
	ID             uint64  `gorm:"primaryKey;autoIncrement"`
	Name           string  `gorm:"size:128;not null"`
	City           string  `gorm:"size:64;index"`
	Address        string  `gorm:"size:256"`
	Rating         float64 `gorm:"not null;default:0"`
	PricePerNight  float64 `gorm:"column:price_per_night;not null"`
	TotalRooms     int     `gorm:"column:total_rooms;not null"`
	AvailableRooms int     `gorm:"column:available_rooms;not null"`
	IsActive       bool    `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (HotelModel) TableName() string { return "hotels" }

func toModel(h *domain.Hotel) *HotelModel {
	return &HotelModel{
		ID:             h.ID,
		Name:           h.Name,
		City:           h.City,
		Address:        h.Address,
		Rating:         h.Rating,
		PricePerNight:  h.PricePerNight,
		TotalRooms:     h.TotalRooms,
		AvailableRooms: h.AvailableRooms,
		IsActive:       h.Active,
		CreatedAt:      h.CreatedAt,
		UpdatedAt:      h.UpdatedAt,
	}
}

func toDomain(m *HotelModel) *domain.Hotel {
	return &domain.Hotel{
		ID:             m.ID,
		Name:           m.Name,
		City:           m.City,
		Address:        m.Address,
		Rating:         m.Rating,
		PricePerNight:  m.PricePerNight,
		TotalRooms:     m.TotalRooms,
		AvailableRooms: m.AvailableRooms,
		Active:         m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
