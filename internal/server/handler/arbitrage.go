package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/sportsarb/internal/arbitrage"
	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// ScanService defines the methods that the arbitrage handler requires.
type ScanService interface {
	ScanSport(ctx context.Context, sportKey string, minMargin float64) (domain.ScanResult, error)
	ScanAll(ctx context.Context, minMargin float64) ([]domain.ScanResult, error)
	MinProfitMargin() float64
}

// ArbHandler serves scanning and stake calculation endpoints.
type ArbHandler struct {
	scans        ScanService
	defaultStake float64
	logger       *slog.Logger
}

// NewArbHandler creates an ArbHandler. defaultStake is used by Calculate when
// the request omits total_stake.
func NewArbHandler(scans ScanService, defaultStake float64, logger *slog.Logger) *ArbHandler {
	return &ArbHandler{scans: scans, defaultStake: defaultStake, logger: logHandler(logger, "arbitrage")}
}

// ScanSport scans one sport for arbitrage.
// GET /api/scan/{sport}?min_profit=0.001
func (h *ArbHandler) ScanSport(w http.ResponseWriter, r *http.Request) {
	minProfit, ok := parseMinProfit(r, h.scans.MinProfitMargin())
	if !ok {
		writeError(w, http.StatusBadRequest, "min_profit must be a number between 0 and 1")
		return
	}
	sport := r.PathValue("sport")

	res, err := h.scans.ScanSport(r.Context(), sport, minProfit)
	if err != nil {
		h.logger.WarnContext(r.Context(), "scan failed",
			slog.String("sport", sport),
			slog.String("error", err.Error()),
		)
		writeError(w, statusFor(err, http.StatusBadGateway), errorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ScanAll scans every active configured sport. When the batch aborts the
// error status carries the scans that completed before it:
// {"error": "...", "results": [...]}.
// GET /api/scan/all?min_profit=0.001
func (h *ArbHandler) ScanAll(w http.ResponseWriter, r *http.Request) {
	minProfit, ok := parseMinProfit(r, h.scans.MinProfitMargin())
	if !ok {
		writeError(w, http.StatusBadRequest, "min_profit must be a number between 0 and 1")
		return
	}

	results, err := h.scans.ScanAll(r.Context(), minProfit)
	if err != nil {
		h.logger.WarnContext(r.Context(), "scan all aborted",
			slog.Int("completed", len(results)),
			slog.String("error", err.Error()),
		)
		if results == nil {
			results = []domain.ScanResult{}
		}
		writeJSON(w, statusFor(err, http.StatusBadGateway), map[string]any{
			"error":   errorMessage(err),
			"results": results,
		})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type calcOutcome struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Bookmaker string  `json:"bookmaker"`
}

type calcRequest struct {
	TotalStake *float64      `json:"total_stake"`
	Outcomes   []calcOutcome `json:"outcomes"`
}

// Calculate allocates a stake across the given outcomes.
// POST /api/calculate
func (h *ArbHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req calcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	stake := h.defaultStake
	if req.TotalStake != nil {
		stake = *req.TotalStake
	}
	picks := make([]domain.Pick, len(req.Outcomes))
	for i, o := range req.Outcomes {
		picks[i] = domain.Pick{Outcome: o.Name, Bookmaker: o.Bookmaker, Odds: o.Price}
	}

	plan, err := arbitrage.Allocate(picks, stake)
	if err != nil {
		var stakeErr *arbitrage.InvalidStakeError
		if errors.As(err, &stakeErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":  stakeErr.Error(),
				"reason": stakeErr.Reason,
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "allocate failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "stake calculation failed")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
