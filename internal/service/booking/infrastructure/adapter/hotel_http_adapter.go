// internal/service/booking/infrastructure/adapter/hotel_http_adapter.go
package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"voyago/internal/pkg/httpclient"
	"voyago/internal/service/booking/domain/port"
)

const hotelServiceName = "hotel-service"

// HotelHTTPAdapter 通过 HTTP 实现 port.HotelInventory。
type HotelHTTPAdapter struct {
	client *httpclient.Client
}

func NewHotelHTTPAdapter(client *httpclient.Client) *HotelHTTPAdapter {
	return &HotelHTTPAdapter{client: client}
}

type hotelDTO struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	PricePerNight  float64 `json:"pricePerNight"`
	AvailableRooms int     `json:"availableRooms"`
	Active         bool    `json:"active"`
}

type hotelAvailabilityDTO struct {
	Available bool   `json:"available"`
	Remaining int    `json:"remainingRooms"`
	Reason    string `json:"reason"`
}

func (a *HotelHTTPAdapter) GetHotel(ctx context.Context, hotelID uint64) (port.HotelInfo, error) {
	var dto hotelDTO
	path := fmt.Sprintf("/hotels/%d", hotelID)
	if err := a.client.GetJSON(ctx, hotelServiceName, path, nil, &dto); err != nil {
		return port.HotelInfo{}, err
	}
	return port.HotelInfo{
		ID:            dto.ID,
		Name:          dto.Name,
		PricePerNight: dto.PricePerNight,
		Available:     dto.AvailableRooms,
		Active:        dto.Active,
	}, nil
}

func (a *HotelHTTPAdapter) CheckAvailability(ctx context.Context, hotelID uint64, rooms int) (port.AvailabilityResult, error) {
	var dto hotelAvailabilityDTO
	path := fmt.Sprintf("/hotels/%d/availability", hotelID)
	params := url.Values{"rooms": []string{strconv.Itoa(rooms)}}
	if err := a.client.GetJSON(ctx, hotelServiceName, path, params, &dto); err != nil {
		return port.AvailabilityResult{}, err
	}
	return port.AvailabilityResult{Available: dto.Available, Remaining: dto.Remaining, Reason: dto.Reason}, nil
}

func (a *HotelHTTPAdapter) Reserve(ctx context.Context, hotelID uint64, rooms int) error {
	path := fmt.Sprintf("/hotels/%d/reserve", hotelID)
	params := url.Values{"rooms": []string{strconv.Itoa(rooms)}}
	return a.client.PostJSON(ctx, hotelServiceName, path, params, nil)
}

func (a *HotelHTTPAdapter) Release(ctx context.Context, hotelID uint64, rooms int) error {
	path := fmt.Sprintf("/hotels/%d/release", hotelID)
	params := url.Values{"rooms": []string{strconv.Itoa(rooms)}}
	return a.client.PostJSON(ctx, hotelServiceName, path, params, nil)
}
