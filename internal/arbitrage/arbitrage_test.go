package arbitrage

import (
	"math"
	"time"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

const tol = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < tol
}

func twoWayEvent(id string, quotes ...domain.Quote) domain.Event {
	return domain.Event{
		EventRef: domain.EventRef{
			ID:           id,
			SportKey:     "basketball_nba",
			SportTitle:   "NBA",
			HomeTeam:     "Team A",
			AwayTeam:     "Team B",
			CommenceTime: time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC),
			MarketKey:    "h2h",
		},
		Quotes: quotes,
	}
}

func q(bookmaker, outcome string, odds float64) domain.Quote {
	return domain.Quote{Bookmaker: bookmaker, Outcome: outcome, Odds: odds}
}
