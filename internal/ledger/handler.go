package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tavern-pos/tavern-pos/internal/platform/httpx"
	"github.com/tavern-pos/tavern-pos/internal/shared"
	"github.com/tavern-pos/tavern-pos/internal/staff"
)

// Handler wires HTTP endpoints for the stock ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Product Not Found", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrInvalidLocation), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrNegativeStock):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Stock Operation", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func productIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	return id, err == nil
}

func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be numeric")
		return
	}
	level, err := h.service.GetStock(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, level)
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be numeric")
		return
	}
	var req TransferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	level, err := h.service.Transfer(r.Context(), TransferInput{
		ProductID: id,
		Quantity:  req.Quantity,
		From:      Location(req.From),
		To:        Location(req.To),
		Note:      req.Note,
		RefModule: "LEDGER",
		StaffID:   staff.IDFromContext(r.Context()),
	})
	if err != nil {
		h.logger.Error("stock transfer failed", slog.Any("error", err), slog.Int64("product_id", id))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, level)
}

func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be numeric")
		return
	}
	var req UpdateStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	level, err := h.service.UpdateStock(r.Context(), id, req.GodownStock, req.CounterStock, req.Note, staff.IDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("stock update failed", slog.Any("error", err), slog.Int64("product_id", id))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, level)
}

func (h *Handler) Movements(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be numeric")
		return
	}
	q := r.URL.Query()
	rng := shared.DateRange{}
	if fromStr := q.Get("from"); fromStr != "" {
		from, err := shared.ParseDate(fromStr)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
			return
		}
		rng.From = shared.DayStart(from)
	}
	if toStr := q.Get("to"); toStr != "" {
		to, err := shared.ParseDate(toStr)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
			return
		}
		rng.To = shared.DayEnd(to)
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	movements, err := h.service.Movements(r.Context(), id, rng.From, rng.To, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": movements})
}
