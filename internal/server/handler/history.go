package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alanyoungcy/sportsarb/internal/domain"
	"github.com/alanyoungcy/sportsarb/internal/service"
)

// HistoryService defines the methods that the history handler requires.
type HistoryService interface {
	Recent(ctx context.Context, limit int) ([]domain.ScanRecord, error)
	Opportunities(ctx context.Context, scanID int64) ([]domain.Opportunity, error)
}

// HistoryHandler serves stored scan history.
type HistoryHandler struct {
	history HistoryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(history HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logHandler(logger, "history")}
}

// ListScans returns the most recent scans.
// GET /api/history?limit=10
func (h *HistoryHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > service.MaxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	recs, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list scans failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list scan history")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// ListOpportunities returns the opportunities recorded by one scan.
// GET /api/history/{id}/opportunities
func (h *HistoryHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid scan id")
		return
	}

	opps, err := h.history.Opportunities(r.Context(), id)
	if err != nil {
		if code := statusFor(err, http.StatusInternalServerError); code == http.StatusNotFound {
			writeError(w, code, "scan not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "list opportunities failed",
			slog.Int64("scan_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	writeJSON(w, http.StatusOK, opps)
}
