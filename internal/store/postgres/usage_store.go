package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// UsageStore implements domain.UsageStore using PostgreSQL.
type UsageStore struct {
	pool *pgxpool.Pool
}

// NewUsageStore creates a new UsageStore backed by the given connection pool.
func NewUsageStore(pool *pgxpool.Pool) *UsageStore {
	return &UsageStore{pool: pool}
}

// Log records one provider call.
func (s *UsageStore) Log(ctx context.Context, rec domain.UsageRecord) error {
	const query = `
		INSERT INTO api_usage (endpoint, requests_used, requests_remaining, created_at)
		VALUES ($1, $2, $3, COALESCE($4, NOW()))`

	_, err := s.pool.Exec(ctx, query, rec.Endpoint, rec.RequestsUsed, rec.RequestsRemaining, nullTime(rec.Timestamp))
	if err != nil {
		return fmt.Errorf("postgres: log usage %s: %w", rec.Endpoint, err)
	}
	return nil
}

// Today summarises usage since midnight UTC.
func (s *UsageStore) Today(ctx context.Context) (domain.UsageSummary, error) {
	return s.since(ctx, "day")
}

// Month summarises usage since the first of the month UTC.
func (s *UsageStore) Month(ctx context.Context) (domain.UsageSummary, error) {
	return s.since(ctx, "month")
}

// since sums usage from the start of the given date_trunc unit and reports
// the most recently seen remaining quota in that period.
func (s *UsageStore) since(ctx context.Context, unit string) (domain.UsageSummary, error) {
	const query = `
		SELECT
			COALESCE(SUM(requests_used), 0),
			(SELECT requests_remaining FROM api_usage
				WHERE created_at >= date_trunc($1, NOW() AT TIME ZONE 'UTC') AT TIME ZONE 'UTC'
				AND requests_remaining IS NOT NULL
				ORDER BY created_at DESC LIMIT 1)
		FROM api_usage
		WHERE created_at >= date_trunc($1, NOW() AT TIME ZONE 'UTC') AT TIME ZONE 'UTC'`

	var sum domain.UsageSummary
	if err := s.pool.QueryRow(ctx, query, unit).Scan(&sum.TotalUsed, &sum.RequestsRemaining); err != nil {
		return domain.UsageSummary{}, fmt.Errorf("postgres: usage since %s: %w", unit, err)
	}
	return sum, nil
}

// Compile-time interface check.
var _ domain.UsageStore = (*UsageStore)(nil)
