package arbitrage

import (
	"errors"
	"math"
	"testing"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

func TestNormalizeBestPrice(t *testing.T) {
	ev := twoWayEvent("ev1",
		q("X", "Team A", 2.10),
		q("X", "Team B", 1.80),
		q("Y", "Team A", 1.95),
		q("Y", "Team B", 2.05),
	)
	best, err := Normalize(ev, 2)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := best.Outcomes; len(got) != 2 || got[0] != "Team A" || got[1] != "Team B" {
		t.Fatalf("outcomes = %v, want [Team A Team B]", got)
	}
	if p := best.Prices["Team A"]; p.Bookmaker != "X" || p.Odds != 2.10 {
		t.Errorf("Team A = %+v, want X@2.10", p)
	}
	if p := best.Prices["Team B"]; p.Bookmaker != "Y" || p.Odds != 2.05 {
		t.Errorf("Team B = %+v, want Y@2.05", p)
	}
}

func TestNormalizeTieBreak(t *testing.T) {
	quotes := []domain.Quote{
		q("zeta", "Team A", 2.00),
		q("alpha", "Team A", 2.00),
		q("mid", "Team A", 2.00),
		q("alpha", "Team B", 1.90),
	}
	want := "alpha"
	// Same result whatever the input order.
	for _, perm := range [][]int{{0, 1, 2, 3}, {2, 1, 0, 3}, {3, 0, 2, 1}} {
		ordered := make([]domain.Quote, 0, len(quotes))
		for _, i := range perm {
			ordered = append(ordered, quotes[i])
		}
		best, err := Normalize(twoWayEvent("ev", ordered...), 2)
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if got := best.Prices["Team A"].Bookmaker; got != want {
			t.Errorf("perm %v: bookmaker = %q, want %q", perm, got, want)
		}
	}
}

func TestNormalizeCanonicalOrder(t *testing.T) {
	ev := twoWayEvent("ev",
		q("b1", "Draw", 3.4),
		q("b1", "Team B", 2.9),
		q("b1", "Team A", 2.5),
	)
	best, err := Normalize(ev, 3)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []string{"Team A", "Team B", "Draw"}
	for i, name := range want {
		if best.Outcomes[i] != name {
			t.Fatalf("outcomes = %v, want %v", best.Outcomes, want)
		}
	}

	totals := twoWayEvent("ev2", q("b1", "Under 45.5", 1.9), q("b1", "Over 45.5", 1.95))
	best, err = Normalize(totals, 2)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if best.Outcomes[0] != "Over 45.5" || best.Outcomes[1] != "Under 45.5" {
		t.Errorf("outcomes = %v, want lexicographic", best.Outcomes)
	}
}

func TestNormalizeIneligible(t *testing.T) {
	tests := []struct {
		name     string
		quotes   []domain.Quote
		outcomes int
	}{
		{"no quotes", nil, 2},
		{"single outcome shape", []domain.Quote{q("X", "Team A", 2)}, 1},
		{"missing leg", []domain.Quote{q("X", "Team A", 2.1), q("Y", "Team A", 2.0)}, 2},
		{"missing draw", []domain.Quote{q("X", "Team A", 2.5), q("Y", "Team B", 3.6)}, 3},
		{"extra outcome", []domain.Quote{q("X", "Team A", 2.5), q("Y", "Team B", 3.6), q("Y", "Draw", 3.1)}, 2},
		{"only invalid odds", []domain.Quote{q("X", "Team A", 1.0), q("Y", "Team B", math.NaN())}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(twoWayEvent("ev", tt.quotes...), tt.outcomes)
			if !errors.Is(err, domain.ErrIneligibleMarket) {
				t.Fatalf("err = %v, want ErrIneligibleMarket", err)
			}
			var ie *IneligibleMarketError
			if !errors.As(err, &ie) || ie.EventID != "ev" || ie.Reason == "" {
				t.Errorf("err = %#v, want IneligibleMarketError with event id and reason", err)
			}
		})
	}
}

func TestNormalizeSkipsMalformedQuotes(t *testing.T) {
	ev := twoWayEvent("ev",
		q("X", "Team A", math.Inf(1)),
		q("Y", "Team A", 2.2),
		q("X", "Team B", 0.5),
		q("Z", "Team B", 1.9),
		q("Z", "", 9.0),
	)
	best, err := Normalize(ev, 2)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p := best.Prices["Team A"]; p.Bookmaker != "Y" {
		t.Errorf("Team A = %+v, want Y", p)
	}
	if p := best.Prices["Team B"]; p.Bookmaker != "Z" {
		t.Errorf("Team B = %+v, want Z", p)
	}
}
