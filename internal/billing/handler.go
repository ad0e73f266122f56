package billing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tavern-pos/tavern-pos/internal/catalog"
	"github.com/tavern-pos/tavern-pos/internal/ledger"
	"github.com/tavern-pos/tavern-pos/internal/platform/httpx"
	"github.com/tavern-pos/tavern-pos/internal/staff"
)

// Handler wires HTTP endpoints for billing.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the billing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrLineNotFound), errors.Is(err, catalog.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidType), errors.Is(err, ErrInvalidPayment),
		errors.Is(err, ErrTableRequired), errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrEmptyBill):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, ErrBillNotOpen):
		httpx.Problem(w, http.StatusConflict, "Bill Closed", err.Error())
	case errors.Is(err, ledger.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Counter Stock", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func (h *Handler) billID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	bill, err := h.service.Open(r.Context(), req, staff.IDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := h.billID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "bill id must be numeric")
		return
	}
	bill, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.Pending(r.Context())
	if err != nil {
		h.logger.Error("list pending bills failed", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, err := h.billID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "bill id must be numeric")
		return
	}
	var req AddLineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	bill, err := h.service.AddLine(r.Context(), id, req, staff.IDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) VoidLine(w http.ResponseWriter, r *http.Request) {
	id, err := h.billID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "bill id must be numeric")
		return
	}
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "line id must be numeric")
		return
	}
	bill, err := h.service.VoidLine(r.Context(), id, lineID, staff.IDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	id, err := h.billID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "bill id must be numeric")
		return
	}
	var req SettleBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	bill, err := h.service.Settle(r.Context(), id, req, staff.IDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := h.billID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "bill id must be numeric")
		return
	}
	bill, err := h.service.Cancel(r.Context(), id, staff.IDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}
