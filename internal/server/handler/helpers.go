package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/alanyoungcy/sportsarb/internal/arbitrage"
	"github.com/alanyoungcy/sportsarb/internal/domain"
	"github.com/alanyoungcy/sportsarb/internal/platform/oddsapi"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors to HTTP status codes. Errors from the odds
// provider that match nothing else map to fallback.
func statusFor(err error, fallback int) int {
	var apiErr *oddsapi.APIError
	switch {
	case errors.Is(err, domain.ErrInvalidStake), errors.Is(err, domain.ErrUnknownSport):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLockHeld):
		return http.StatusConflict
	case errors.Is(err, domain.ErrQuotaExhausted), errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrUnauthorized):
		// The provider rejected our key; the caller did nothing wrong.
		return http.StatusBadGateway
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return fallback
}

// errorMessage is the client-facing text for err.
func errorMessage(err error) string {
	var stakeErr *arbitrage.InvalidStakeError
	switch {
	case errors.As(err, &stakeErr):
		return stakeErr.Error()
	case errors.Is(err, domain.ErrUnknownSport):
		return "unknown sport"
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case errors.Is(err, domain.ErrLockHeld):
		return "a scan for this sport is already running"
	case errors.Is(err, domain.ErrQuotaExhausted):
		return "odds provider quota exhausted"
	case errors.Is(err, domain.ErrRateLimited):
		return "odds provider call budget spent, retry later"
	case errors.Is(err, domain.ErrUnauthorized):
		return "odds provider rejected the API key"
	}
	return "odds provider request failed"
}

// parseMinProfit reads min_profit from the query string. A missing value
// yields def; values outside [0, 1] are rejected.
func parseMinProfit(r *http.Request, def float64) (float64, bool) {
	v := r.URL.Query().Get("min_profit")
	if v == "" {
		return def, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

// logHandler is a convenience to attach slog fields in handler code.
func logHandler(logger *slog.Logger, handler string) *slog.Logger {
	return logger.With(slog.String("handler", handler))
}
