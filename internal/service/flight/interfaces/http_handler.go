// internal/service/flight/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"voyago/internal/pkg/apperr"
	"voyago/internal/pkg/httpx"
	"voyago/internal/service/flight/application"
	"voyago/internal/service/flight/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "flight-service"

// FlightHandler 封装 flight 服务的 HTTP 处理器。
type FlightHandler struct {
	service *application.FlightService
}

func NewFlightHandler(service *application.FlightService) *FlightHandler {
	return &FlightHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *FlightHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("POST /flights", h.createFlight)
	mux.HandleFunc("GET /flights/{id}", h.getFlight)
	mux.HandleFunc("GET /flights/{id}/availability", h.checkAvailability)
	mux.HandleFunc("POST /flights/{id}/reserve", h.reserveSeats)
	mux.HandleFunc("POST /flights/{id}/release", h.releaseSeats)
	mux.HandleFunc("POST /flights/{id}/capacity", h.adjustCapacity)
}

type createFlightRequest struct {
	FlightNumber  string    `json:"flightNumber"`
	Airline       string    `json:"airline"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	Price         float64   `json:"price"`
	TotalSeats    int       `json:"totalSeats"`
}

type flightResponse struct {
	ID             uint64    `json:"id"`
	FlightNumber   string    `json:"flightNumber"`
	Airline        string    `json:"airline"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departureTime"`
	ArrivalTime    time.Time `json:"arrivalTime"`
	Price          float64   `json:"price"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	Status         string    `json:"status"`
}

type availabilityResponse struct {
	FlightID  uint64 `json:"flightId"`
	Available bool   `json:"available"`
	Remaining int    `json:"remainingSeats"`
	Reason    string `json:"reason"`
}

type capacityResponse struct {
	FlightID  uint64 `json:"flightId"`
	Remaining int    `json:"remainingSeats"`
}

func toResponse(f *domain.Flight) flightResponse {
	return flightResponse{
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
	}
}

func (h *FlightHandler) createFlight(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "flight-service.CreateFlight")
	defer span.End()

	var req createFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, apperr.Wrap(err, apperr.KindValidation, apperr.CodeValidation, "invalid request body"))
		return
	}

	flight, err := h.service.CreateFlight(ctx, application.CreateFlightCommand{
		FlightNumber:  req.FlightNumber,
		Airline:       req.Airline,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Price:         req.Price,
		TotalSeats:    req.TotalSeats,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toResponse(flight))
}

func (h *FlightHandler) getFlight(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "flight-service.GetFlight")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	flight, err := h.service.GetFlight(ctx, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(flight))
}

func (h *FlightHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "flight-service.CheckAvailability")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	seats, _ := strconv.Atoi(r.URL.Query().Get("seats"))

	av, err := h.service.CheckAvailability(ctx, id, seats)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, availabilityResponse{
		FlightID:  id,
		Available: av.Available,
		Remaining: av.Remaining,
		Reason:    av.Reason,
	})
}

func (h *FlightHandler) reserveSeats(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "flight-service.ReserveSeats")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	seats, _ := strconv.Atoi(r.URL.Query().Get("seats"))

	remaining, err := h.service.ReserveSeats(ctx, id, seats)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, capacityResponse{FlightID: id, Remaining: remaining})
}

func (h *FlightHandler) releaseSeats(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "flight-service.ReleaseSeats")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	seats, _ := strconv.Atoi(r.URL.Query().Get("seats"))

	remaining, err := h.service.ReleaseSeats(ctx, id, seats)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, capacityResponse{FlightID: id, Remaining: remaining})
}

func (h *FlightHandler) adjustCapacity(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "flight-service.AdjustCapacity")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	total, _ := strconv.Atoi(r.URL.Query().Get("total"))

	flight, err := h.service.AdjustCapacity(ctx, id, total)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(flight))
}

func extract(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func pathID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.KindValidation, apperr.CodeValidation, "invalid resource id")
	}
	return id, nil
}
