package transfer

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tavern-pos/tavern-pos/internal/catalog"
	"github.com/tavern-pos/tavern-pos/internal/ledger"
	"github.com/tavern-pos/tavern-pos/internal/platform/httpx"
	"github.com/tavern-pos/tavern-pos/internal/shared"
	"github.com/tavern-pos/tavern-pos/internal/staff"
)

// Handler wires HTTP endpoints for the transfer workflow.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	exporter *Exporter
	validate *validator.Validate
}

// NewHandler constructs the transfer handler.
func NewHandler(logger *slog.Logger, service *Service, exporter *Exporter) *Handler {
	return &Handler{logger: logger, service: service, exporter: exporter, validate: validator.New()}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrEntryNotFound), errors.Is(err, catalog.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrEmptyTransfer), errors.Is(err, ErrZeroQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Transfer Not Ready", err.Error())
	case errors.Is(err, ledger.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Already Committed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.StartSession(r.Context())
	if err != nil {
		h.logger.Error("start staging session failed", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sess)
}

func (h *Handler) ShowSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sess)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sess, err := h.service.AddToStaging(r.Context(), chi.URLParam(r, "sessionID"), req.ProductID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sess)
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be numeric")
		return
	}
	var req SetQuantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	sess, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "sessionID"), productID, req.Quantity)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sess)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be numeric")
		return
	}
	sess, err := h.service.RemoveFromStaging(r.Context(), chi.URLParam(r, "sessionID"), productID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sess)
}

func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.ClearStaging(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sess)
}

func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	rec, err := h.service.Commit(r.Context(), chi.URLParam(r, "sessionID"), staff.IDFromContext(r.Context()), req.IdempotencyKey)
	if err != nil {
		h.logger.Error("transfer commit failed", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := time.Now()
	from, to := now, now
	var err error
	if fromStr := q.Get("from"); fromStr != "" {
		if from, err = shared.ParseDate(fromStr); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
			return
		}
	}
	if toStr := q.Get("to"); toStr != "" {
		if to, err = shared.ParseDate(toStr); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
			return
		}
	}
	records, err := h.service.History(r.Context(), shared.NewDateRange(from, to))
	if err != nil {
		h.logger.Error("transfer history failed", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "record id must be numeric")
		return
	}
	rec, err := h.service.GetRecord(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	path, err := h.exporter.ExportPDF(rec)
	if err != nil {
		h.logger.Error("transfer export failed", slog.Any("error", err), slog.Int64("record", id))
		httpx.JSON(w, http.StatusOK, ExportResult{Success: false, Error: err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, ExportResult{Success: true, FilePath: path})
}
