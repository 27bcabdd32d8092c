// internal/service/booking/infrastructure/adapter/flight_http_adapter.go
package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"voyago/internal/pkg/httpclient"
	"voyago/internal/service/booking/domain/port"
)

const flightServiceName = "flight-service"

// FlightHTTPAdapter 通过 HTTP 实现 port.FlightInventory。
// 传输层错误由 httpclient 归类成 UpstreamUnavailable，带码的业务错误
// 会被还原成对应的 Kind，编排层据此决定是否补偿。
type FlightHTTPAdapter struct {
	client *httpclient.Client
}

func NewFlightHTTPAdapter(client *httpclient.Client) *FlightHTTPAdapter {
	return &FlightHTTPAdapter{client: client}
}

type flightDTO struct {
	ID             uint64  `json:"id"`
	FlightNumber   string  `json:"flightNumber"`
	Price          float64 `json:"price"`
	AvailableSeats int     `json:"availableSeats"`
	Status         string  `json:"status"`
}

type flightAvailabilityDTO struct {
	Available bool   `json:"available"`
	Remaining int    `json:"remainingSeats"`
	Reason    string `json:"reason"`
}

func (a *FlightHTTPAdapter) GetFlight(ctx context.Context, flightID uint64) (port.FlightInfo, error) {
	var dto flightDTO
	path := fmt.Sprintf("/flights/%d", flightID)
	if err := a.client.GetJSON(ctx, flightServiceName, path, nil, &dto); err != nil {
		return port.FlightInfo{}, err
	}
	return port.FlightInfo{
		ID:        dto.ID,
		Number:    dto.FlightNumber,
		Price:     dto.Price,
		Available: dto.AvailableSeats,
		Status:    dto.Status,
	}, nil
}

func (a *FlightHTTPAdapter) CheckAvailability(ctx context.Context, flightID uint64, seats int) (port.AvailabilityResult, error) {
	var dto flightAvailabilityDTO
	path := fmt.Sprintf("/flights/%d/availability", flightID)
	params := url.Values{"seats": []string{strconv.Itoa(seats)}}
	if err := a.client.GetJSON(ctx, flightServiceName, path, params, &dto); err != nil {
		return port.AvailabilityResult{}, err
	}
	return port.AvailabilityResult{Available: dto.Available, Remaining: dto.Remaining, Reason: dto.Reason}, nil
}

func (a *FlightHTTPAdapter) Reserve(ctx context.Context, flightID uint64, seats int) error {
	path := fmt.Sprintf("/flights/%d/reserve", flightID)
	params := url.Values{"seats": []string{strconv.Itoa(seats)}}
	return a.client.PostJSON(ctx, flightServiceName, path, params, nil)
}

func (a *FlightHTTPAdapter) Release(ctx context.Context, flightID uint64, seats int) error {
	path := fmt.Sprintf("/flights/%d/release", flightID)
	params := url.Values{"seats": []string{strconv.Itoa(seats)}}
	return a.client.PostJSON(ctx, flightServiceName, path, params, nil)
}
