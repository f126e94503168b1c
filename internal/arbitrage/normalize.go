package arbitrage

import (
	"fmt"
	"math"
	"sort"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// Normalize reduces an event's quotes to the best price per outcome. The event
// is ineligible unless exactly `outcomes` distinct outcomes carry at least one
// valid quote. Quotes with non-finite odds, odds <= 1 or no outcome name are
// not prices and are skipped. When several bookmakers share the best odds the
// lexicographically smallest bookmaker id wins.
func Normalize(ev domain.Event, outcomes int) (domain.BestPrice, error) {
	if outcomes < 2 {
		return domain.BestPrice{}, &IneligibleMarketError{
			EventID: ev.ID,
			Reason:  fmt.Sprintf("market shape of %d outcomes cannot be hedged", outcomes),
		}
	}

	prices := make(map[string]domain.Price, outcomes)
	for _, q := range ev.Quotes {
		if !validOdds(q.Odds) || q.Outcome == "" {
			continue
		}
		cur, ok := prices[q.Outcome]
		if !ok || better(q, cur) {
			prices[q.Outcome] = domain.Price{Bookmaker: q.Bookmaker, Odds: q.Odds}
		}
	}

	if len(prices) == 0 {
		return domain.BestPrice{}, &IneligibleMarketError{EventID: ev.ID, Reason: "no valid quotes"}
	}
	if len(prices) != outcomes {
		return domain.BestPrice{}, &IneligibleMarketError{
			EventID: ev.ID,
			Reason:  fmt.Sprintf("expected %d quoted outcomes, got %d", outcomes, len(prices)),
		}
	}

	return domain.BestPrice{
		Outcomes: canonicalOrder(ev.EventRef, prices),
		Prices:   prices,
	}, nil
}

// better reports whether q beats the current best price.
func better(q domain.Quote, cur domain.Price) bool {
	if q.Odds != cur.Odds {
		return q.Odds > cur.Odds
	}
	return q.Bookmaker < cur.Bookmaker
}

func validOdds(odds float64) bool {
	return !math.IsNaN(odds) && !math.IsInf(odds, 0) && odds > 1
}

// canonicalOrder lists the home team first, then the away team, then every
// other outcome sorted by name.
func canonicalOrder(ref domain.EventRef, prices map[string]domain.Price) []string {
	order := make([]string, 0, len(prices))
	rest := make([]string, 0, len(prices))

	_, hasHome := prices[ref.HomeTeam]
	_, hasAway := prices[ref.AwayTeam]
	if hasHome {
		order = append(order, ref.HomeTeam)
	}
	if hasAway && ref.AwayTeam != ref.HomeTeam {
		order = append(order, ref.AwayTeam)
	}
	for name := range prices {
		if (hasHome && name == ref.HomeTeam) || (hasAway && name == ref.AwayTeam) {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)
	return append(order, rest...)
}
