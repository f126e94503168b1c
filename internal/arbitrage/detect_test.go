package arbitrage

import (
	"math"
	"testing"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

func scenarioEvent() domain.Event {
	return twoWayEvent("ev1",
		q("X", "Team A", 2.10),
		q("X", "Team B", 1.80),
		q("Y", "Team A", 1.95),
		q("Y", "Team B", 2.05),
	)
}

func TestDetectOpportunity(t *testing.T) {
	ev := scenarioEvent()
	best, err := Normalize(ev, 2)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	opp, ok := Detect(ev, best, 0.001)
	if !ok {
		t.Fatal("expected an opportunity")
	}
	if !approx(opp.TotalImpliedProbability, 0.9639953542392568) {
		t.Errorf("T = %v", opp.TotalImpliedProbability)
	}
	if !approx(opp.ProfitMargin, 0.03600464576074325) {
		t.Errorf("margin = %v", opp.ProfitMargin)
	}
	if len(opp.Picks) != 2 {
		t.Fatalf("picks = %d, want 2", len(opp.Picks))
	}
	if p := opp.Picks[0]; p.Outcome != "Team A" || p.Bookmaker != "X" || p.Odds != 2.10 {
		t.Errorf("pick 0 = %+v", p)
	}
	if p := opp.Picks[1]; p.Outcome != "Team B" || p.Bookmaker != "Y" || p.Odds != 2.05 {
		t.Errorf("pick 1 = %+v", p)
	}
	if opp.Event.ID != "ev1" || opp.ID != "" || !opp.DetectedAt.IsZero() {
		t.Errorf("engine must not stamp id or time: %+v", opp)
	}
}

func TestDetectThreshold(t *testing.T) {
	ev := scenarioEvent()
	best, _ := Normalize(ev, 2)
	margin := 0.03600464576074325

	tests := []struct {
		name      string
		threshold float64
		want      bool
	}{
		{"zero", 0, true},
		{"negative treated as zero", -0.5, true},
		{"nan treated as zero", math.NaN(), true},
		{"below margin", 0.03, true},
		{"above margin", 0.05, false},
		{"exact margin", margin, false},
		{"inside epsilon band", margin - Epsilon/2, false},
		{"outside epsilon band", margin - 2*Epsilon, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Detect(ev, best, tt.threshold)
			if ok != tt.want {
				t.Errorf("Detect(threshold=%v) = %v, want %v", tt.threshold, ok, tt.want)
			}
		})
	}
}

func TestDetectNoArbitrage(t *testing.T) {
	tests := []struct {
		name   string
		quotes []domain.Quote
	}{
		{"bookmaker margin", []domain.Quote{q("X", "Team A", 1.9), q("Y", "Team B", 1.9)}},
		{"fair odds", []domain.Quote{q("X", "Team A", 2.0), q("Y", "Team B", 2.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := twoWayEvent("ev", tt.quotes...)
			best, err := Normalize(ev, 2)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if opp, ok := Detect(ev, best, 0); ok {
				t.Errorf("unexpected opportunity %+v", opp)
			}
		})
	}
}

func TestDetectInconsistentBestPrice(t *testing.T) {
	ev := scenarioEvent()
	cases := []domain.BestPrice{
		{},
		{Outcomes: []string{"Team A"}, Prices: map[string]domain.Price{"Team A": {Bookmaker: "X", Odds: 5}}},
		{Outcomes: []string{"Team A", "Team B"}, Prices: map[string]domain.Price{"Team A": {Bookmaker: "X", Odds: 5}}},
		{Outcomes: []string{"Team A", "Team B"}, Prices: map[string]domain.Price{
			"Team A": {Bookmaker: "X", Odds: 5},
			"Team B": {Bookmaker: "Y", Odds: 0.9},
		}},
	}
	for i, best := range cases {
		if _, ok := Detect(ev, best, 0); ok {
			t.Errorf("case %d: expected no opportunity", i)
		}
	}
}

func TestDetectDeterministic(t *testing.T) {
	ev := scenarioEvent()
	best, _ := Normalize(ev, 2)
	first, _ := Detect(ev, best, 0)
	for i := 0; i < 20; i++ {
		best, _ := Normalize(ev, 2)
		got, _ := Detect(ev, best, 0)
		if got.ProfitMargin != first.ProfitMargin || got.Picks[0] != first.Picks[0] || got.Picks[1] != first.Picks[1] {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}
