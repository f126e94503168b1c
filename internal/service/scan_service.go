// Package service holds the application services that glue the detection
// engine to the odds provider, persistence, cache and alerting.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/sportsarb/internal/arbitrage"
	"github.com/alanyoungcy/sportsarb/internal/domain"
	"github.com/alanyoungcy/sportsarb/internal/metrics"
	"github.com/alanyoungcy/sportsarb/internal/notify"
	"github.com/alanyoungcy/sportsarb/internal/platform/oddsapi"
)

// OddsProvider is the odds feed the scanner reads from.
type OddsProvider interface {
	GetSports(ctx context.Context) ([]domain.Sport, error)
	GetOdds(ctx context.Context, sportKey string, p oddsapi.OddsParams) ([]domain.Event, error)
	Quota() domain.Quota
}

// ScanConfig holds the tunable parameters of the scan service.
type ScanConfig struct {
	Regions    []string
	Markets    []string
	Bookmakers []string

	MinProfitMargin float64
	Concurrency     int

	// SportTitles maps configured sport keys to display names. ScanAll
	// covers ScanSports, or every key of SportTitles when empty.
	SportTitles     map[string]string
	ScanSports      []string
	BookmakerTitles map[string]string

	QuotaAlertThreshold int
	LockTTL             time.Duration
	RateLimit           int
	RateWindow          time.Duration
}

// ScanDeps are the collaborators of the scan service. Only Provider is
// required; nil stores, cache, bus and notifier are skipped.
type ScanDeps struct {
	Provider OddsProvider
	Shapes   *arbitrage.Shapes
	Scans    domain.ScanStore
	Usage    domain.UsageStore
	Cache    domain.OddsCache
	Locks    domain.LockManager
	Limiter  domain.RateLimiter
	Bus      domain.SignalBus
	Notifier *notify.Notifier
}

// ScanService fetches odds, runs detection and records the results.
type ScanService struct {
	deps   ScanDeps
	cfg    ScanConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewScanService creates a ScanService.
func NewScanService(deps ScanDeps, cfg ScanConfig, logger *slog.Logger) *ScanService {
	if deps.Shapes == nil {
		deps.Shapes = arbitrage.NewShapes()
	}
	if deps.Locks == nil {
		deps.Locks = NewLocalLocks()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	return &ScanService{
		deps:   deps,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "scan_service")),
		now:    time.Now,
	}
}

var sportKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// MinProfitMargin returns the configured default threshold.
func (s *ScanService) MinProfitMargin() float64 {
	return s.cfg.MinProfitMargin
}

// ExpectedOutcomes is the market shape used for detection.
func (s *ScanService) ExpectedOutcomes(sportKey, marketKey string) int {
	return s.deps.Shapes.Outcomes(sportKey, marketKey)
}

// Quota returns the provider quota last reported.
func (s *ScanService) Quota() domain.Quota {
	return s.deps.Provider.Quota()
}

// Sports lists the provider's sports, titled from configuration and sorted
// by title. The provider response is cached.
func (s *ScanService) Sports(ctx context.Context, activeOnly bool) ([]domain.Sport, error) {
	sports, err := s.providerSports(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Sport, 0, len(sports))
	for _, sp := range sports {
		if activeOnly && !sp.Active {
			continue
		}
		if title, ok := s.cfg.SportTitles[sp.Key]; ok && title != "" {
			sp.Title = title
		}
		out = append(out, sp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (s *ScanService) providerSports(ctx context.Context) ([]domain.Sport, error) {
	if s.deps.Cache != nil {
		sports, err := s.deps.Cache.GetSports(ctx)
		if err == nil {
			return sports, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "sports cache read failed", slog.String("error", err.Error()))
		}
	}

	if err := s.allowProviderCall(ctx); err != nil {
		return nil, err
	}
	sports, err := s.deps.Provider.GetSports(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan_service: sports: %w", err)
	}
	s.logUsage(ctx, "/sports")

	if s.deps.Cache != nil {
		if err := s.deps.Cache.SetSports(ctx, sports); err != nil {
			s.logger.WarnContext(ctx, "sports cache write failed", slog.String("error", err.Error()))
		}
	}
	return sports, nil
}

// Bookmakers returns the configured bookmakers sorted by key.
func (s *ScanService) Bookmakers() []domain.Bookmaker {
	out := make([]domain.Bookmaker, 0, len(s.cfg.BookmakerTitles))
	for k, title := range s.cfg.BookmakerTitles {
		out = append(out, domain.Bookmaker{Key: k, Title: title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ScanSport fetches fresh odds for one sport and detects arbitrage at
// minMargin. Only one scan per sport runs at a time; a concurrent request
// gets domain.ErrLockHeld.
func (s *ScanService) ScanSport(ctx context.Context, sportKey string, minMargin float64) (domain.ScanResult, error) {
	if !sportKeyPattern.MatchString(sportKey) {
		return domain.ScanResult{}, fmt.Errorf("scan_service: %q: %w", sportKey, domain.ErrUnknownSport)
	}

	unlock, err := s.deps.Locks.Acquire(ctx, "scan:"+sportKey, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			metrics.ObserveFailure(sportKey, metrics.ResultLocked)
		}
		return domain.ScanResult{}, fmt.Errorf("scan_service: lock %s: %w", sportKey, err)
	}
	defer unlock()

	start := s.now()
	result, err := s.scan(ctx, sportKey, minMargin)
	if err != nil {
		metrics.ObserveFailure(sportKey, metrics.ResultError)
		s.logger.WarnContext(ctx, "scan failed",
			slog.String("sport", sportKey),
			slog.String("error", err.Error()),
		)
		_ = s.deps.Notifier.Notify(ctx, notify.EventScanFailed,
			"Scan failed: "+sportKey, err.Error())
		return domain.ScanResult{}, err
	}
	metrics.ObserveScan(result, s.now().Sub(start))

	s.logger.InfoContext(ctx, "scan completed",
		slog.String("sport", sportKey),
		slog.Int("events", result.EventsScanned),
		slog.Int("ineligible", result.IneligibleEvents),
		slog.Int("opportunities", result.OpportunitiesFound),
		slog.Duration("took", s.now().Sub(start)),
	)

	s.record(ctx, &result)
	s.checkQuota(ctx, result.APIRequestsRemaining)
	return result, nil
}

func (s *ScanService) scan(ctx context.Context, sportKey string, minMargin float64) (domain.ScanResult, error) {
	if err := s.allowProviderCall(ctx); err != nil {
		return domain.ScanResult{}, err
	}

	events, err := s.deps.Provider.GetOdds(ctx, sportKey, oddsapi.OddsParams{
		Regions:    s.cfg.Regions,
		Markets:    s.cfg.Markets,
		Bookmakers: s.cfg.Bookmakers,
	})
	quota := s.deps.Provider.Quota()
	s.logUsage(ctx, "/sports/"+sportKey+"/odds")
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("scan_service: fetch odds %s: %w", sportKey, err)
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.SetEvents(ctx, s.eventsKey(sportKey), events); err != nil {
			s.logger.WarnContext(ctx, "events cache write failed", slog.String("error", err.Error()))
		}
	}

	summary := arbitrage.Scan(ctx, events, s.deps.Shapes.Outcomes, minMargin, s.cfg.Concurrency)
	if err := ctx.Err(); err != nil {
		return domain.ScanResult{}, fmt.Errorf("scan_service: scan %s: %w", sportKey, err)
	}

	now := s.now().UTC()
	for i := range summary.Opportunities {
		summary.Opportunities[i].ID = uuid.NewString()
		summary.Opportunities[i].DetectedAt = now
	}

	unique := make(map[string]struct{}, len(events))
	for _, ev := range events {
		unique[ev.ID] = struct{}{}
	}

	opps := summary.Opportunities
	if opps == nil {
		opps = []domain.Opportunity{}
	}
	return domain.ScanResult{
		SportKey:             sportKey,
		SportTitle:           s.sportTitle(sportKey),
		ScanTime:             now,
		EventsScanned:        len(unique),
		IneligibleEvents:     summary.Ineligible,
		OpportunitiesFound:   len(opps),
		Opportunities:        opps,
		APIRequestsUsed:      1,
		APIRequestsRemaining: quota.Remaining,
	}, nil
}

// record persists the scan and fans it out to the bus and notifier. Failures
// here are logged; the scan itself succeeded.
func (s *ScanService) record(ctx context.Context, result *domain.ScanResult) {
	if s.deps.Scans != nil {
		id, err := s.deps.Scans.Save(ctx, *result)
		if err != nil {
			s.logger.ErrorContext(ctx, "save scan failed",
				slog.String("sport", result.SportKey),
				slog.String("error", err.Error()),
			)
		} else {
			result.ID = id
		}
	}

	if s.deps.Bus != nil {
		evt, _ := json.Marshal(map[string]any{
			"event":               "scan_completed",
			"scan_id":             result.ID,
			"sport_key":           result.SportKey,
			"events_scanned":      result.EventsScanned,
			"opportunities_found": result.OpportunitiesFound,
			"scan_time":           result.ScanTime,
		})
		if err := s.deps.Bus.Publish(ctx, domain.ChannelScans, evt); err != nil {
			s.logger.WarnContext(ctx, "publish scan failed", slog.String("error", err.Error()))
		}
		for _, o := range result.Opportunities {
			payload, _ := json.Marshal(o)
			if err := s.deps.Bus.Publish(ctx, domain.ChannelArb, payload); err != nil {
				s.logger.WarnContext(ctx, "publish opportunity failed",
					slog.String("opp_id", o.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if len(result.Opportunities) > 0 {
		title, msg := notify.FormatScan(*result, 5)
		_ = s.deps.Notifier.Notify(ctx, notify.EventArbDetected, title, msg)
	}
}

func (s *ScanService) checkQuota(ctx context.Context, remaining *int) {
	if remaining == nil || s.cfg.QuotaAlertThreshold <= 0 || *remaining >= s.cfg.QuotaAlertThreshold {
		return
	}
	s.logger.WarnContext(ctx, "provider quota low",
		slog.Int("remaining", *remaining),
		slog.Int("threshold", s.cfg.QuotaAlertThreshold),
	)
	_ = s.deps.Notifier.Notify(ctx, notify.EventQuotaLow, "Odds API quota low",
		fmt.Sprintf("%d requests remaining (alert threshold %d)", *remaining, s.cfg.QuotaAlertThreshold))
}

// ScanAll scans every active provider sport that is configured. Sports that
// fail are skipped, except for auth and quota failures which abort the batch
// and are returned with the results gathered so far.
func (s *ScanService) ScanAll(ctx context.Context, minMargin float64) ([]domain.ScanResult, error) {
	sports, err := s.providerSports(ctx)
	if err != nil {
		return nil, err
	}
	active := make(map[string]bool, len(sports))
	for _, sp := range sports {
		active[sp.Key] = sp.Active
	}

	results := []domain.ScanResult{}
	for _, key := range s.scanSports() {
		if !active[key] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := s.ScanSport(ctx, key, minMargin)
		if err != nil {
			if errors.Is(err, domain.ErrQuotaExhausted) || errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrRateLimited) {
				return results, err
			}
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *ScanService) scanSports() []string {
	if len(s.cfg.ScanSports) > 0 {
		return s.cfg.ScanSports
	}
	keys := make([]string, 0, len(s.cfg.SportTitles))
	for k := range s.cfg.SportTitles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *ScanService) sportTitle(key string) string {
	if t, ok := s.cfg.SportTitles[key]; ok && t != "" {
		return t
	}
	return key
}

func (s *ScanService) eventsKey(sportKey string) string {
	return sportKey + ":" + strings.Join(s.cfg.Regions, ",") + ":" + strings.Join(s.cfg.Markets, ",")
}

func (s *ScanService) allowProviderCall(ctx context.Context) error {
	if s.deps.Limiter == nil || s.cfg.RateLimit <= 0 {
		return nil
	}
	ok, err := s.deps.Limiter.Allow(ctx, "oddsapi", s.cfg.RateLimit, s.cfg.RateWindow)
	if err != nil {
		// Fail open; the provider enforces its own quota.
		s.logger.WarnContext(ctx, "rate limiter unavailable", slog.String("error", err.Error()))
		return nil
	}
	if !ok {
		return fmt.Errorf("scan_service: provider call budget spent: %w", domain.ErrRateLimited)
	}
	return nil
}

func (s *ScanService) logUsage(ctx context.Context, endpoint string) {
	if s.deps.Usage == nil {
		return
	}
	rec := domain.UsageRecord{
		Endpoint:          endpoint,
		RequestsUsed:      1,
		RequestsRemaining: s.deps.Provider.Quota().Remaining,
		Timestamp:         s.now().UTC(),
	}
	if err := s.deps.Usage.Log(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "log usage failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
	}
}
