package reporting

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tavern-pos/tavern-pos/internal/platform/httpx"
	"github.com/tavern-pos/tavern-pos/internal/shared"
	"github.com/tavern-pos/tavern-pos/internal/staff"
)

// Handler wires HTTP endpoints for reporting.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	exporter *Exporter
	validate *validator.Validate
}

// NewHandler constructs the reporting handler.
func NewHandler(logger *slog.Logger, service *Service, exporter *Exporter) *Handler {
	return &Handler{logger: logger, service: service, exporter: exporter, validate: validator.New()}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSpendingNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, shared.ErrInvalidDate):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func dayParam(r *http.Request) (time.Time, error) {
	if d := r.URL.Query().Get("date"); d != "" {
		return shared.ParseDate(d)
	}
	return time.Now(), nil
}

func rangeParams(r *http.Request) (shared.DateRange, error) {
	q := r.URL.Query()
	now := time.Now()
	from, to := now, now
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = shared.ParseDate(v); err != nil {
			return shared.DateRange{}, err
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = shared.ParseDate(v); err != nil {
			return shared.DateRange{}, err
		}
	}
	return shared.NewDateRange(from, to), nil
}

func (h *Handler) AddSpending(w http.ResponseWriter, r *http.Request) {
	var req CreateSpendingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sp, err := h.service.AddSpending(r.Context(), req, staff.IDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sp)
}

func (h *Handler) DeleteSpending(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "spending id must be numeric")
		return
	}
	if err := h.service.DeleteSpending(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) ListSpendings(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
		return
	}
	spendings, err := h.service.Spendings(r.Context(), rng)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"spendings": spendings})
}

func (h *Handler) SetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	var req SetOpeningBalanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ob, err := h.service.SetOpeningBalance(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ob)
}

func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
		return
	}
	report, err := h.service.Daily(r.Context(), day)
	if err != nil {
		h.logger.Error("daily report failed", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
		return
	}
	summary, err := h.service.Summary(r.Context(), rng)
	if err != nil {
		h.logger.Error("range summary failed", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
		return
	}
	report, err := h.service.Daily(r.Context(), day)
	if err != nil {
		h.respondError(w, err)
		return
	}
	path, err := h.exporter.ExportPDF(report)
	if err != nil {
		h.logger.Error("report export failed", slog.Any("error", err))
		httpx.JSON(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "file_path": path})
}

func (h *Handler) Email(w http.ResponseWriter, r *http.Request) {
	var req EmailReportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	day, err := shared.ParseDate(req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
		return
	}
	if err := h.service.EmailReport(r.Context(), day, req.To); err != nil {
		h.logger.Error("report email failed", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"queued": true})
}
