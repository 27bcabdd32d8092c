// internal/service/user/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"voyago/internal/pkg/apperr"
	"voyago/internal/pkg/httpx"
	"voyago/internal/pkg/logger"
	"voyago/internal/service/user/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "user-service"

// UserHandler 身份边界很薄，直接在处理器里调仓储。
type UserHandler struct {
	repo domain.Repository
}

func NewUserHandler(repo domain.Repository) *UserHandler {
	return &UserHandler{repo: repo}
}

func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("POST /users", h.createUser)
	mux.HandleFunc("GET /users/{id}", h.getUser)
	mux.HandleFunc("GET /users/{id}/validate", h.validateUser)
}

type createUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type userResponse struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Active    bool   `json:"active"`
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "user-service.CreateUser")
	defer span.End()

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, apperr.Wrap(err, apperr.KindValidation, apperr.CodeValidation, "invalid request body"))
		return
	}
	user, err := domain.NewUser(req.Email, req.FirstName, req.LastName)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.repo.Create(ctx, user); err != nil {
		httpx.WriteError(w, err)
		return
	}
	logger.Ctx(ctx).Info().Uint64("user_id", user.ID).Msg("user created")
	httpx.WriteJSON(w, http.StatusCreated, toResponse(user))
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "user-service.GetUser")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	user, err := h.repo.FindByID(ctx, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(user))
}

// validateUser 对不存在的用户返回 404，对存在的用户回告 active 标记。
func (h *UserHandler) validateUser(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "user-service.ValidateUser")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	user, err := h.repo.FindByID(ctx, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"valid": user.Active})
}

func toResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Active:    u.Active,
	}
}

func extract(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func pathID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.KindValidation, apperr.CodeValidation, "invalid user id")
	}
	return id, nil
}
