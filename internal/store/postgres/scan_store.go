package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// ScanStore implements domain.ScanStore using PostgreSQL.
type ScanStore struct {
	pool *pgxpool.Pool
}

// NewScanStore creates a new ScanStore backed by the given connection pool.
func NewScanStore(pool *pgxpool.Pool) *ScanStore {
	return &ScanStore{pool: pool}
}

const scanSelectCols = `id, sport_key, sport_title, scan_time,
	events_scanned, opportunities_found, api_requests_used`

// Save stores a scan and its opportunities in one transaction and returns
// the new scan id.
func (s *ScanStore) Save(ctx context.Context, r domain.ScanResult) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin save scan: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertScan = `
		INSERT INTO scan_history (
			sport_key, sport_title, scan_time, events_scanned, ineligible_events,
			opportunities_found, api_requests_used, api_requests_remaining
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int64
	err = tx.QueryRow(ctx, insertScan,
		r.SportKey, r.SportTitle, r.ScanTime, r.EventsScanned, r.IneligibleEvents,
		r.OpportunitiesFound, r.APIRequestsUsed, r.APIRequestsRemaining,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert scan %s: %w", r.SportKey, err)
	}

	if len(r.Opportunities) > 0 {
		const insertOpp = `
			INSERT INTO opportunities (
				id, scan_id, event_id, sport_key, sport_title, home_team, away_team,
				commence_time, market_key, line, total_implied_probability,
				profit_margin, picks, detected_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

		batch := &pgx.Batch{}
		for _, o := range r.Opportunities {
			picks, err := json.Marshal(o.Picks)
			if err != nil {
				return 0, fmt.Errorf("postgres: marshal picks %s: %w", o.ID, err)
			}
			batch.Queue(insertOpp,
				o.ID, id, o.Event.ID, o.Event.SportKey, o.Event.SportTitle,
				o.Event.HomeTeam, o.Event.AwayTeam, nullTime(o.Event.CommenceTime),
				o.Event.MarketKey, o.Event.Line, o.TotalImpliedProbability,
				o.ProfitMargin, picks, o.DetectedAt,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("postgres: insert opportunities for scan %d: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit scan %d: %w", id, err)
	}
	return id, nil
}

// ListRecent returns the latest scans, newest first.
func (s *ScanStore) ListRecent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	query := `SELECT ` + scanSelectCols + ` FROM scan_history ORDER BY scan_time DESC, id DESC LIMIT $1`
	return s.listScans(ctx, query, limit)
}

// ListBefore returns up to limit scans older than before, oldest first.
func (s *ScanStore) ListBefore(ctx context.Context, before time.Time, limit int) ([]domain.ScanRecord, error) {
	query := `SELECT ` + scanSelectCols + ` FROM scan_history WHERE scan_time < $1 ORDER BY scan_time ASC, id ASC LIMIT $2`
	return s.listScans(ctx, query, before, limit)
}

func (s *ScanStore) listScans(ctx context.Context, query string, args ...any) ([]domain.ScanRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scans: %w", err)
	}
	defer rows.Close()

	var out []domain.ScanRecord
	for rows.Next() {
		var r domain.ScanRecord
		if err := rows.Scan(
			&r.ID, &r.SportKey, &r.SportTitle, &r.ScanTime,
			&r.EventsScanned, &r.OpportunitiesFound, &r.APIRequestsUsed,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list scans rows: %w", err)
	}
	return out, nil
}

// ListOpportunities returns the opportunities of a scan, best margin first.
// It returns domain.ErrNotFound when the scan does not exist.
func (s *ScanStore) ListOpportunities(ctx context.Context, scanID int64) ([]domain.Opportunity, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM scan_history WHERE id = $1)", scanID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("postgres: check scan %d: %w", scanID, err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	const query = `
		SELECT id, event_id, sport_key, sport_title, home_team, away_team,
			commence_time, market_key, line, total_implied_probability,
			profit_margin, picks, detected_at
		FROM opportunities
		WHERE scan_id = $1
		ORDER BY profit_margin DESC, commence_time ASC, event_id ASC, market_key ASC, line ASC`

	rows, err := s.pool.Query(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities for scan %d: %w", scanID, err)
	}
	defer rows.Close()

	out := []domain.Opportunity{}
	for rows.Next() {
		var (
			o        domain.Opportunity
			commence *time.Time
			picks    []byte
		)
		if err := rows.Scan(
			&o.ID, &o.Event.ID, &o.Event.SportKey, &o.Event.SportTitle,
			&o.Event.HomeTeam, &o.Event.AwayTeam, &commence, &o.Event.MarketKey,
			&o.Event.Line, &o.TotalImpliedProbability, &o.ProfitMargin, &picks, &o.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		if commence != nil {
			o.Event.CommenceTime = commence.UTC()
		}
		if err := json.Unmarshal(picks, &o.Picks); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal picks %s: %w", o.ID, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list opportunities rows: %w", err)
	}
	return out, nil
}

// DeleteBefore removes scans older than before together with their
// opportunities and returns how many scans were deleted.
func (s *ScanStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scan_history WHERE scan_time < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete scans before %s: %w", before.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Compile-time interface check.
var _ domain.ScanStore = (*ScanStore)(nil)
