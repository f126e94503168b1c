package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/sportsarb/internal/service"
)

// UsageService defines the methods that the usage handler requires.
type UsageService interface {
	Usage(ctx context.Context) (service.UsageReport, error)
}

// UsageHandler serves odds provider usage accounting.
type UsageHandler struct {
	usage  UsageService
	logger *slog.Logger
}

// NewUsageHandler creates a UsageHandler.
func NewUsageHandler(usage UsageService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{usage: usage, logger: logHandler(logger, "usage")}
}

// GetUsage returns today's and this month's provider usage.
// GET /api/usage
func (h *UsageHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	rep, err := h.usage.Usage(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "usage failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to read API usage")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
