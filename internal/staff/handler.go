package staff

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tavern-pos/tavern-pos/internal/platform/httpx"
)

type loginRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	PIN  string `json:"pin" validate:"required,min=4,max=12"`
}

type registerRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Role string `json:"role" validate:"required,oneof=admin cashier"`
	PIN  string `json:"pin" validate:"required,min=4,max=12"`
}

// Handler wires HTTP endpoints for staff auth.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the staff handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	token, member, err := h.service.Login(r.Context(), req.Name, req.PIN)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Login Failed", "invalid name or pin")
			return
		}
		h.logger.Error("login failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token": token, "staff": member})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), bearerToken(r)); err != nil {
		h.logger.Warn("logout failed", slog.Any("error", err))
	}
	httpx.NoContent(w)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	member, ok := FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	httpx.JSON(w, http.StatusOK, member)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	member, err := h.service.Register(r.Context(), req.Name, Role(req.Role), req.PIN)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateName):
			httpx.Problem(w, http.StatusConflict, "Duplicate Name", err.Error())
		case errors.Is(err, ErrInvalidCredentials):
			httpx.Problem(w, http.StatusBadRequest, "Invalid Input", err.Error())
		default:
			h.logger.Error("register staff failed", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, member)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list staff failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"staff": members})
}
