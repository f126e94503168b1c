package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// ScanStore persists scan history and the opportunities each scan found.
type ScanStore interface {
	Save(ctx context.Context, result ScanResult) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]ScanRecord, error)
	ListOpportunities(ctx context.Context, scanID int64) ([]Opportunity, error)
	ListBefore(ctx context.Context, before time.Time, limit int) ([]ScanRecord, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// UsageStore persists odds provider request usage.
type UsageStore interface {
	Log(ctx context.Context, rec UsageRecord) error
	Today(ctx context.Context) (UsageSummary, error)
	Month(ctx context.Context) (UsageSummary, error)
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Event     string         `json:"event"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
