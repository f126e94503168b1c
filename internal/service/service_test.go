package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/sportsarb/internal/domain"
	"github.com/alanyoungcy/sportsarb/internal/platform/oddsapi"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(n int) *int { return &n }

type fakeProvider struct {
	mu        sync.Mutex
	sports    []domain.Sport
	events    map[string][]domain.Event
	errs      map[string]error
	remaining *int
	sportsN   int
	oddsN     int
	params    oddsapi.OddsParams
}

func (f *fakeProvider) GetSports(context.Context) ([]domain.Sport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sportsN++
	return f.sports, nil
}

func (f *fakeProvider) GetOdds(_ context.Context, sportKey string, p oddsapi.OddsParams) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oddsN++
	f.params = p
	if err := f.errs[sportKey]; err != nil {
		return nil, err
	}
	return f.events[sportKey], nil
}

func (f *fakeProvider) Quota() domain.Quota {
	return domain.Quota{Remaining: f.remaining}
}

type fakeScanStore struct {
	saved  []domain.ScanResult
	recent []domain.ScanRecord
	opps   map[int64][]domain.Opportunity
	limit  int
	err    error
}

func (f *fakeScanStore) Save(_ context.Context, r domain.ScanResult) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, r)
	return int64(len(f.saved)), nil
}

func (f *fakeScanStore) ListRecent(_ context.Context, limit int) ([]domain.ScanRecord, error) {
	f.limit = limit
	return f.recent, f.err
}

func (f *fakeScanStore) ListOpportunities(_ context.Context, id int64) ([]domain.Opportunity, error) {
	opps, ok := f.opps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return opps, nil
}

func (f *fakeScanStore) ListBefore(context.Context, time.Time, int) ([]domain.ScanRecord, error) {
	return nil, nil
}

func (f *fakeScanStore) DeleteBefore(context.Context, time.Time) (int64, error) { return 0, nil }

type fakeUsageStore struct {
	logged []domain.UsageRecord
	today  domain.UsageSummary
	month  domain.UsageSummary
}

func (f *fakeUsageStore) Log(_ context.Context, rec domain.UsageRecord) error {
	f.logged = append(f.logged, rec)
	return nil
}

func (f *fakeUsageStore) Today(context.Context) (domain.UsageSummary, error) { return f.today, nil }
func (f *fakeUsageStore) Month(context.Context) (domain.UsageSummary, error) { return f.month, nil }

type fakeCache struct {
	sports []domain.Sport
	events map[string][]domain.Event
}

func (f *fakeCache) SetSports(_ context.Context, s []domain.Sport) error {
	f.sports = s
	return nil
}

func (f *fakeCache) GetSports(context.Context) ([]domain.Sport, error) {
	if f.sports == nil {
		return nil, domain.ErrNotFound
	}
	return f.sports, nil
}

func (f *fakeCache) SetEvents(_ context.Context, key string, ev []domain.Event) error {
	if f.events == nil {
		f.events = make(map[string][]domain.Event)
	}
	f.events[key] = ev
	return nil
}

func (f *fakeCache) GetEvents(_ context.Context, key string) ([]domain.Event, error) {
	ev, ok := f.events[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

type fakeBus struct {
	mu        sync.Mutex
	published map[string]int
}

func (f *fakeBus) Publish(_ context.Context, channel string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.published == nil {
		f.published = make(map[string]int)
	}
	f.published[channel]++
	return nil
}

func (f *fakeBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return make(chan []byte), nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, nil
}

type recordingSender struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recordingSender) Name() string { return "recording" }

func arbEvent(id string) domain.Event {
	return domain.Event{
		EventRef: domain.EventRef{
			ID: id, SportKey: "basketball_nba", HomeTeam: "Lakers", AwayTeam: "Celtics",
			CommenceTime: time.Date(2026, 1, 1, 19, 0, 0, 0, time.UTC), MarketKey: "h2h",
		},
		Quotes: []domain.Quote{
			{Bookmaker: "fanduel", Outcome: "Lakers", Odds: 2.10},
			{Bookmaker: "draftkings", Outcome: "Celtics", Odds: 2.05},
			{Bookmaker: "draftkings", Outcome: "Lakers", Odds: 1.90},
		},
	}
}

func fairEvent(id string) domain.Event {
	ev := arbEvent(id)
	ev.Quotes = []domain.Quote{
		{Bookmaker: "fanduel", Outcome: "Lakers", Odds: 1.90},
		{Bookmaker: "draftkings", Outcome: "Celtics", Odds: 1.90},
	}
	return ev
}
