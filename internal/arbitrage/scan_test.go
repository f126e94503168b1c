package arbitrage

import (
	"context"
	"testing"
	"time"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

func twoWay(string, string) int { return 2 }

func TestScan(t *testing.T) {
	small := twoWayEvent("small", q("X", "Team A", 2.02), q("Y", "Team B", 2.02))
	big := twoWayEvent("big", q("X", "Team A", 2.10), q("Y", "Team B", 2.05))
	none := twoWayEvent("none", q("X", "Team A", 1.9), q("Y", "Team B", 1.9))
	partial := twoWayEvent("partial", q("X", "Team A", 3.0))

	sum := Scan(context.Background(), []domain.Event{small, none, partial, big}, twoWay, 0, 2)
	if sum.EventsScanned != 4 {
		t.Errorf("scanned = %d, want 4", sum.EventsScanned)
	}
	if sum.Ineligible != 1 {
		t.Errorf("ineligible = %d, want 1", sum.Ineligible)
	}
	if len(sum.Opportunities) != 2 {
		t.Fatalf("opportunities = %d, want 2", len(sum.Opportunities))
	}
	if sum.Opportunities[0].Event.ID != "big" || sum.Opportunities[1].Event.ID != "small" {
		t.Errorf("order = %s, %s", sum.Opportunities[0].Event.ID, sum.Opportunities[1].Event.ID)
	}
}

func TestScanThreshold(t *testing.T) {
	ev := twoWayEvent("ev", q("X", "Team A", 2.10), q("Y", "Team B", 2.05))
	sum := Scan(context.Background(), []domain.Event{ev}, twoWay, 0.05, 4)
	if len(sum.Opportunities) != 0 {
		t.Errorf("opportunities = %d, want 0", len(sum.Opportunities))
	}
}

func TestScanTieOrder(t *testing.T) {
	early := twoWayEvent("b", q("X", "Team A", 2.10), q("Y", "Team B", 2.05))
	late := twoWayEvent("a", q("X", "Team A", 2.10), q("Y", "Team B", 2.05))
	late.CommenceTime = early.CommenceTime.Add(time.Hour)
	sameTime := twoWayEvent("c", q("X", "Team A", 2.10), q("Y", "Team B", 2.05))

	sum := Scan(context.Background(), []domain.Event{late, sameTime, early}, twoWay, 0, 3)
	var ids []string
	for _, o := range sum.Opportunities {
		ids = append(ids, o.Event.ID)
	}
	want := []string{"b", "c", "a"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := twoWayEvent("ev", q("X", "Team A", 2.10), q("Y", "Team B", 2.05))
	sum := Scan(ctx, []domain.Event{ev, ev, ev}, twoWay, 0, 1)
	if sum.EventsScanned != 0 || len(sum.Opportunities) != 0 {
		t.Errorf("cancelled scan = %+v, want empty", sum)
	}
}

func TestShapes(t *testing.T) {
	s := NewShapes()
	s.Register("boxing_boxing", 3)
	s.Register("tennis_atp_french_open", 1)

	tests := []struct {
		sport, market string
		want          int
	}{
		{"basketball_nba", "h2h", 2},
		{"soccer_epl", "h2h", 3},
		{"soccer_epl", "totals", 2},
		{"soccer_epl", "", 3},
		{"boxing_boxing", "h2h", 3},
		{"boxing_boxing", "spreads", 2},
		{"tennis_atp_french_open", "h2h", 2},
	}
	for _, tt := range tests {
		if got := s.Outcomes(tt.sport, tt.market); got != tt.want {
			t.Errorf("Outcomes(%q, %q) = %d, want %d", tt.sport, tt.market, got, tt.want)
		}
	}
	if got := s.List(); len(got) != 1 || got[0] != "boxing_boxing" {
		t.Errorf("List = %v", got)
	}
}
