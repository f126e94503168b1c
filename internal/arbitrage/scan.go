package arbitrage

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// ShapeFunc returns how many mutually exclusive outcomes a market has.
type ShapeFunc func(sportKey, marketKey string) int

// ScanSummary is the result of running detection over a batch of events.
type ScanSummary struct {
	EventsScanned int
	Ineligible    int
	Opportunities []domain.Opportunity
}

type scanSlot struct {
	scanned    bool
	ineligible bool
	opp        *domain.Opportunity
}

// Scan runs Normalize and Detect over every event with at most concurrency
// workers. Events not yet started when ctx is cancelled are skipped. The
// returned opportunities are sorted by margin descending, then commence time,
// event id and market key.
func Scan(ctx context.Context, events []domain.Event, shape ShapeFunc, minProfitMargin float64, concurrency int) ScanSummary {
	if concurrency < 1 {
		concurrency = 1
	}
	slots := make([]scanSlot, len(events))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range events {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			ev := events[i]
			slots[i].scanned = true
			best, err := Normalize(ev, shape(ev.SportKey, ev.MarketKey))
			if err != nil {
				slots[i].ineligible = errors.Is(err, domain.ErrIneligibleMarket)
				return nil
			}
			if opp, ok := Detect(ev, best, minProfitMargin); ok {
				slots[i].opp = &opp
			}
			return nil
		})
	}
	_ = g.Wait()

	var sum ScanSummary
	for _, s := range slots {
		if !s.scanned {
			continue
		}
		sum.EventsScanned++
		if s.ineligible {
			sum.Ineligible++
		}
		if s.opp != nil {
			sum.Opportunities = append(sum.Opportunities, *s.opp)
		}
	}
	SortOpportunities(sum.Opportunities)
	return sum
}

// SortOpportunities orders opportunities best margin first. Ties are broken by
// commence time, event id and market key so the order is deterministic.
func SortOpportunities(opps []domain.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := opps[i], opps[j]
		if a.ProfitMargin != b.ProfitMargin {
			return a.ProfitMargin > b.ProfitMargin
		}
		if !a.Event.CommenceTime.Equal(b.Event.CommenceTime) {
			return a.Event.CommenceTime.Before(b.Event.CommenceTime)
		}
		if a.Event.ID != b.Event.ID {
			return a.Event.ID < b.Event.ID
		}
		if a.Event.MarketKey != b.Event.MarketKey {
			return a.Event.MarketKey < b.Event.MarketKey
		}
		return a.Event.Line < b.Event.Line
	})
}
