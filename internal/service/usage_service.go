package service

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// QuotaSource reports the provider quota seen on the latest response.
type QuotaSource interface {
	Quota() domain.Quota
}

// UsageReport summarises provider consumption.
type UsageReport struct {
	Today            domain.UsageSummary `json:"today"`
	Month            domain.UsageSummary `json:"month"`
	CurrentRemaining *int                `json:"current_remaining"`
}

// UsageService reads API usage accounting.
type UsageService struct {
	store domain.UsageStore
	quota QuotaSource
}

// NewUsageService creates a UsageService. A nil store reports zero usage.
func NewUsageService(store domain.UsageStore, quota QuotaSource) *UsageService {
	return &UsageService{store: store, quota: quota}
}

// Usage returns today's and this month's totals plus the live quota.
func (s *UsageService) Usage(ctx context.Context) (UsageReport, error) {
	var rep UsageReport
	if s.quota != nil {
		rep.CurrentRemaining = s.quota.Quota().Remaining
	}
	if s.store == nil {
		return rep, nil
	}

	today, err := s.store.Today(ctx)
	if err != nil {
		return UsageReport{}, fmt.Errorf("usage_service: today: %w", err)
	}
	month, err := s.store.Month(ctx)
	if err != nil {
		return UsageReport{}, fmt.Errorf("usage_service: month: %w", err)
	}
	rep.Today = today
	rep.Month = month
	return rep, nil
}
