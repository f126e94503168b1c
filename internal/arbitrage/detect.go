package arbitrage

import (
	"math"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// Epsilon is the dead band around the profit threshold. A margin closer than
// Epsilon to the threshold is rejected.
const Epsilon = 1e-9

// ImpliedProbability returns 1/odds.
func ImpliedProbability(odds float64) float64 {
	if odds <= 0 {
		return 0
	}
	return 1 / odds
}

// Detect applies the implied-probability test to an event's best prices. It
// returns an opportunity only when margin = 1 - sum(1/odds) clears
// minProfitMargin by at least Epsilon. Negative or NaN thresholds count as 0.
func Detect(ev domain.Event, best domain.BestPrice, minProfitMargin float64) (domain.Opportunity, bool) {
	if best.Len() < 2 || len(best.Prices) != best.Len() {
		return domain.Opportunity{}, false
	}
	if math.IsNaN(minProfitMargin) || minProfitMargin < 0 {
		minProfitMargin = 0
	}

	picks := make([]domain.Pick, 0, best.Len())
	var total float64
	for _, outcome := range best.Outcomes {
		p, ok := best.Prices[outcome]
		if !ok || !validOdds(p.Odds) {
			return domain.Opportunity{}, false
		}
		total += ImpliedProbability(p.Odds)
		picks = append(picks, domain.Pick{Outcome: outcome, Bookmaker: p.Bookmaker, Odds: p.Odds})
	}

	opp, ok := newOpportunity(ev.EventRef, picks, total)
	if !ok {
		return domain.Opportunity{}, false
	}
	if opp.ProfitMargin-minProfitMargin < Epsilon {
		return domain.Opportunity{}, false
	}
	return opp, true
}

// newOpportunity is the only constructor of domain.Opportunity in the engine;
// it refuses totals that leave no positive margin.
func newOpportunity(ref domain.EventRef, picks []domain.Pick, total float64) (domain.Opportunity, bool) {
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return domain.Opportunity{}, false
	}
	margin := 1 - total
	if margin <= 0 {
		return domain.Opportunity{}, false
	}
	return domain.Opportunity{
		Event:                   ref,
		Picks:                   picks,
		TotalImpliedProbability: total,
		ProfitMargin:            margin,
	}, true
}
