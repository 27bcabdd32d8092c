// internal/service/hotel/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"voyago/internal/pkg/apperr"
	"voyago/internal/pkg/httpx"
	"voyago/internal/service/hotel/application"
	"voyago/internal/service/hotel/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "hotel-service"

// HotelHandler 封装 hotel 服务的 HTTP 处理器。
type HotelHandler struct {
	service *application.HotelService
}

func NewHotelHandler(service *application.HotelService) *HotelHandler {
	return &HotelHandler{service: service}
}

func (h *HotelHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("POST /hotels", h.createHotel)
	mux.HandleFunc("GET /hotels/{id}", h.getHotel)
	mux.HandleFunc("GET /hotels/{id}/availability", h.checkAvailability)
	mux.HandleFunc("POST /hotels/{id}/reserve", h.reserveRooms)
	mux.HandleFunc("POST /hotels/{id}/release", h.releaseRooms)
	mux.HandleFunc("POST /hotels/{id}/capacity", h.adjustCapacity)
	mux.HandleFunc("POST /hotels/{id}/activate", h.activate)
	mux.HandleFunc("POST /hotels/{id}/deactivate", h.deactivate)
}

type createHotelRequest struct {
	Name          string  `json:"name"`
	City          string  `json:"city"`
	Address       string  `json:"address"`
	Rating        float64 `json:"rating"`
	PricePerNight float64 `json:"pricePerNight"`
	TotalRooms    int     `json:"totalRooms"`
}

type hotelResponse struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	City           string  `json:"city"`
	Address        string  `json:"address"`
	Rating         float64 `json:"rating"`
	PricePerNight  float64 `json:"pricePerNight"`
	TotalRooms     int     `json:"totalRooms"`
	AvailableRooms int     `json:"availableRooms"`
	Active         bool    `json:"active"`
}

type availabilityResponse struct {
	HotelID   uint64 `json:"hotelId"`
	Available bool   `json:"available"`
	Remaining int    `json:"remainingRooms"`
	Reason    string `json:"reason"`
}

type capacityResponse struct {
	HotelID   uint64 `json:"hotelId"`
	Remaining int    `json:"remainingRooms"`
}

func toResponse(h *domain.Hotel) hotelResponse {
	return hotelResponse{
		ID:             h.ID,
		Name:           h.Name,
		City:           h.City,
		Address:        h.Address,
		Rating:         h.Rating,
		PricePerNight:  h.PricePerNight,
		TotalRooms:     h.TotalRooms,
		AvailableRooms: h.AvailableRooms,
		Active:         h.Active,
	}
}

func (h *HotelHandler) createHotel(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "hotel-service.CreateHotel")
	defer span.End()

	var req createHotelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, apperr.Wrap(err, apperr.KindValidation, apperr.CodeValidation, "invalid request body"))
		return
	}

	hotel, err := h.service.CreateHotel(ctx, application.CreateHotelCommand{
		Name:          req.Name,
		City:          req.City,
		Address:       req.Address,
		Rating:        req.Rating,
		PricePerNight: req.PricePerNight,
		TotalRooms:    req.TotalRooms,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toResponse(hotel))
}

func (h *HotelHandler) getHotel(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "hotel-service.GetHotel")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	hotel, err := h.service.GetHotel(ctx, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(hotel))
}

func (h *HotelHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "hotel-service.CheckAvailability")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	rooms, _ := strconv.Atoi(r.URL.Query().Get("rooms"))

	av, err := h.service.CheckAvailability(ctx, id, rooms)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, availabilityResponse{
		HotelID:   id,
		Available: av.Available,
		Remaining: av.Remaining,
		Reason:    av.Reason,
	})
}

func (h *HotelHandler) reserveRooms(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "hotel-service.ReserveRooms")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	rooms, _ := strconv.Atoi(r.URL.Query().Get("rooms"))

	remaining, err := h.service.ReserveRooms(ctx, id, rooms)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, capacityResponse{HotelID: id, Remaining: remaining})
}

func (h *HotelHandler) releaseRooms(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "hotel-service.ReleaseRooms")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	rooms, _ := strconv.Atoi(r.URL.Query().Get("rooms"))

	remaining, err := h.service.ReleaseRooms(ctx, id, rooms)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, capacityResponse{HotelID: id, Remaining: remaining})
}

func (h *HotelHandler) adjustCapacity(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "hotel-service.AdjustCapacity")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	total, _ := strconv.Atoi(r.URL.Query().Get("total"))

	hotel, err := h.service.AdjustCapacity(ctx, id, total)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(hotel))
}

func (h *HotelHandler) activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true, "hotel-service.Activate")
}

func (h *HotelHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false, "hotel-service.Deactivate")
}

func (h *HotelHandler) setActive(w http.ResponseWriter, r *http.Request, active bool, spanName string) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, spanName)
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	hotel, err := h.service.SetActive(ctx, id, active)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(hotel))
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
