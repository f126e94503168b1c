package handler

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// QuotaSource reports the odds provider quota.
type QuotaSource interface {
	Quota() domain.Quota
}

// StatusInfo is the static part of the status response.
type StatusInfo struct {
	Mode            string
	ScanCron        string
	Sports          []string
	MinProfitMargin float64
	StartedAt       time.Time
}

// StatusHandler serves the backend status for the dashboard.
type StatusHandler struct {
	info  StatusInfo
	quota QuotaSource
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(info StatusInfo, quota QuotaSource) *StatusHandler {
	if info.StartedAt.IsZero() {
		info.StartedAt = time.Now().UTC()
	}
	return &StatusHandler{info: info, quota: quota}
}

// GetStatus responds with the run mode, scanner settings and live quota.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	scheduled := h.info.Mode == "scanner" || h.info.Mode == "full"
	scanner := map[string]any{
		"scheduled":         scheduled,
		"sports":            h.info.Sports,
		"min_profit_margin": h.info.MinProfitMargin,
	}
	if scheduled {
		scanner["cron"] = h.info.ScanCron
	}

	var q domain.Quota
	if h.quota != nil {
		q = h.quota.Quota()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":           h.info.Mode,
		"uptime_seconds": int64(time.Since(h.info.StartedAt).Seconds()),
		"scanner":        scanner,
		"quota":          q,
	})
}
