package service

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// History page bounds.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryService reads stored scans.
type HistoryService struct {
	store domain.ScanStore
}

// NewHistoryService creates a HistoryService. A nil store yields empty
// history.
func NewHistoryService(store domain.ScanStore) *HistoryService {
	return &HistoryService{store: store}
}

// Recent returns the newest scans first. limit is clamped to
// [1, MaxHistoryLimit]; zero selects DefaultHistoryLimit.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	switch {
	case limit == 0:
		limit = DefaultHistoryLimit
	case limit < 1:
		limit = 1
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	if s.store == nil {
		return []domain.ScanRecord{}, nil
	}
	recs, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history_service: recent: %w", err)
	}
	if recs == nil {
		recs = []domain.ScanRecord{}
	}
	return recs, nil
}

// Opportunities returns the opportunities stored with a scan, or
// domain.ErrNotFound when the scan does not exist.
func (s *HistoryService) Opportunities(ctx context.Context, scanID int64) ([]domain.Opportunity, error) {
	if s.store == nil {
		return nil, fmt.Errorf("history_service: scan %d: %w", scanID, domain.ErrNotFound)
	}
	opps, err := s.store.ListOpportunities(ctx, scanID)
	if err != nil {
		return nil, fmt.Errorf("history_service: scan %d: %w", scanID, err)
	}
	if opps == nil {
		opps = []domain.Opportunity{}
	}
	return opps, nil
}
