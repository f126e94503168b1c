package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// CatalogService lists what can be scanned.
type CatalogService interface {
	Sports(ctx context.Context, activeOnly bool) ([]domain.Sport, error)
	Bookmakers() []domain.Bookmaker
}

// SportsHandler serves the sport and bookmaker catalogues.
type SportsHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

// NewSportsHandler creates a SportsHandler.
func NewSportsHandler(catalog CatalogService, logger *slog.Logger) *SportsHandler {
	return &SportsHandler{catalog: catalog, logger: logHandler(logger, "sports")}
}

// ListSports returns the provider's sports. Only active sports are listed
// unless active_only=false.
// GET /api/sports?active_only=true
func (h *SportsHandler) ListSports(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") != "false"

	sports, err := h.catalog.Sports(r.Context(), activeOnly)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list sports failed", slog.String("error", err.Error()))
		writeError(w, statusFor(err, http.StatusBadGateway), errorMessage(err))
		return
	}
	if sports == nil {
		sports = []domain.Sport{}
	}
	writeJSON(w, http.StatusOK, sports)
}

// ListBookmakers returns the configured bookmakers.
// GET /api/bookmakers
func (h *SportsHandler) ListBookmakers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Bookmakers())
}
