// internal/service/booking/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"voyago/internal/pkg/apperr"
	"voyago/internal/pkg/httpx"
	"voyago/internal/service/booking/application"
	"voyago/internal/service/booking/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "booking-service"

// BookingHandler 封装 booking 服务的 HTTP 处理器。
type BookingHandler struct {
	service *application.BookingService
}

func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("POST /bookings", h.createBooking)
	mux.HandleFunc("GET /bookings", h.queryBookings)
	mux.HandleFunc("GET /bookings/{id}", h.getBooking)
	mux.HandleFunc("POST /bookings/{id}/confirm", h.confirmBooking)
	mux.HandleFunc("POST /bookings/{id}/cancel", h.cancelBooking)
	mux.HandleFunc("POST /bookings/{id}/payment", h.updatePayment)
}

type createBookingRequest struct {
	UserID     uint64     `json:"userId"`
	FlightID   uint64     `json:"flightId"`
	Passengers int        `json:"passengers"`
	HotelID    uint64     `json:"hotelId"`
	Rooms      int        `json:"rooms"`
	CheckIn    *time.Time `json:"checkIn"`
	CheckOut   *time.Time `json:"checkOut"`
}

type paymentRequest struct {
	PaymentReference string `json:"paymentReference"`
}

type bookingResponse struct {
	ID               string     `json:"id"`
	Reference        string     `json:"reference"`
	UserID           uint64     `json:"userId"`
	FlightID         uint64     `json:"flightId,omitempty"`
	Passengers       int        `json:"passengers,omitempty"`
	FlightCost       float64    `json:"flightCost"`
	HotelID          uint64     `json:"hotelId,omitempty"`
	Rooms            int        `json:"rooms,omitempty"`
	CheckIn          *time.Time `json:"checkIn,omitempty"`
	CheckOut         *time.Time `json:"checkOut,omitempty"`
	HotelCost        float64    `json:"hotelCost"`
	TotalCost        float64    `json:"totalCost"`
	Status           string     `json:"status"`
	PaymentReference string     `json:"paymentReference,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func toResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
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
	}
	if !b.CheckIn.IsZero() {
		checkIn := b.CheckIn
		resp.CheckIn = &checkIn
	}
	if !b.CheckOut.IsZero() {
		checkOut := b.CheckOut
		resp.CheckOut = &checkOut
	}
	return resp
}

func (h *BookingHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "booking-service.CreateBooking")
	defer span.End()

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, apperr.Wrap(err, apperr.KindValidation, apperr.CodeValidation, "invalid request body"))
		return
	}

	cmd := application.CreateBookingCommand{
		UserID:     req.UserID,
		FlightID:   req.FlightID,
		Passengers: req.Passengers,
		HotelID:    req.HotelID,
		Rooms:      req.Rooms,
	}
	if req.CheckIn != nil {
		cmd.CheckIn = *req.CheckIn
	}
	if req.CheckOut != nil {
		cmd.CheckOut = *req.CheckOut
	}

	booking, err := h.service.CreateBooking(ctx, cmd)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toResponse(booking))
}

// queryBookings 支持 ?reference=BK... 和 ?userId=N 两种过滤。
func (h *BookingHandler) queryBookings(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "booking-service.QueryBookings")
	defer span.End()

	if ref := r.URL.Query().Get("reference"); ref != "" {
		booking, err := h.service.GetBookingByReference(ctx, ref)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponse(booking))
		return
	}

	if rawUserID := r.URL.Query().Get("userId"); rawUserID != "" {
		userID, err := strconv.ParseUint(rawUserID, 10, 64)
		if err != nil {
			httpx.WriteError(w, apperr.New(apperr.KindValidation, apperr.CodeValidation, "invalid userId"))
			return
		}
		bookings, err := h.service.ListBookingsByUser(ctx, userID)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		resp := make([]bookingResponse, 0, len(bookings))
		for _, b := range bookings {
			resp = append(resp, toResponse(b))
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
		return
	}

	httpx.WriteError(w, apperr.New(apperr.KindValidation, apperr.CodeValidation,
		"either reference or userId query parameter is required"))
}

func (h *BookingHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "booking-service.GetBooking")
	defer span.End()

	booking, err := h.service.GetBooking(ctx, r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(booking))
}

func (h *BookingHandler) confirmBooking(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "booking-service.ConfirmBooking")
	defer span.End()

	booking, err := h.service.ConfirmBooking(ctx, r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(booking))
}

func (h *BookingHandler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "booking-service.CancelBooking")
	defer span.End()

	booking, err := h.service.CancelBooking(ctx, r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(booking))
}

func (h *BookingHandler) updatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "booking-service.UpdatePayment")
	defer span.End()

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, apperr.Wrap(err, apperr.KindValidation, apperr.CodeValidation, "invalid request body"))
		return
	}
	booking, err := h.service.UpdatePayment(ctx, r.PathValue("id"), req.PaymentReference)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(booking))
}

func extract(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}
