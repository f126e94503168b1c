package oddsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alanyoungcy/sportsarb/internal/arbitrage"
	"github.com/alanyoungcy/sportsarb/internal/domain"
)

const oddsFixture = `[
  {
    "id": "ev1",
    "sport_key": "basketball_nba",
    "sport_title": "NBA",
    "commence_time": "2026-03-01T19:30:00Z",
    "home_team": "Team A",
    "away_team": "Team B",
    "bookmakers": [
      {"key": "draftkings", "title": "DraftKings", "markets": [
        {"key": "h2h", "outcomes": [{"name": "Team A", "price": 2.10}, {"name": "Team B", "price": 1.80}]},
        {"key": "totals", "outcomes": [{"name": "Over", "price": 1.91, "point": 220.5}, {"name": "Under", "price": 1.91, "point": 220.5}]}
      ]},
      {"key": "fanduel", "title": "FanDuel", "markets": [
        {"key": "h2h", "outcomes": [{"name": "Team A", "price": 1.95}, {"name": "Team B", "price": 2.05}]}
      ]}
    ]
  },
  {
    "id": "ev2",
    "sport_key": "basketball_nba",
    "sport_title": "NBA",
    "commence_time": "not a time",
    "home_team": "Team C",
    "away_team": "Team D",
    "bookmakers": []
  }
]`

func TestGetOdds(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sports/basketball_nba/odds" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("x-requests-remaining", "480")
		w.Header().Set("x-requests-used", "20")
		w.Write([]byte(oddsFixture))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	events, err := c.GetOdds(context.Background(), "basketball_nba", OddsParams{
		Regions: []string{"us", "uk"},
		Markets: []string{"h2h", "totals"},
	})
	if err != nil {
		t.Fatalf("GetOdds: %v", err)
	}

	for _, want := range []string{"apiKey=secret", "regions=us%2Cuk", "markets=h2h%2Ctotals", "oddsFormat=decimal"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if strings.Contains(gotQuery, "bookmakers") {
		t.Errorf("query %q should not filter bookmakers", gotQuery)
	}

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (h2h + totals)", len(events))
	}
	h2h := events[0]
	if h2h.MarketKey != "h2h" || len(h2h.Quotes) != 4 {
		t.Errorf("h2h = %+v", h2h)
	}
	if !h2h.CommenceTime.Equal(time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)) {
		t.Errorf("commence = %v", h2h.CommenceTime)
	}
	if h2h.Quotes[3] != (domain.Quote{Bookmaker: "fanduel", Outcome: "Team B", Odds: 2.05}) {
		t.Errorf("quote = %+v", h2h.Quotes[3])
	}
	totals := events[1]
	if totals.MarketKey != "totals" || totals.Line != "220.5" || totals.Quotes[0].Outcome != "Over 220.5" {
		t.Errorf("totals = %+v", totals)
	}

	q := c.Quota()
	if q.Remaining == nil || *q.Remaining != 480 || q.Used == nil || *q.Used != 20 {
		t.Errorf("quota = %+v", q)
	}
}

func TestGetOddsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrUnauthorized},
		{"quota", http.StatusTooManyRequests, domain.ErrQuotaExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("x-requests-remaining", "0")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "k")
			_, err := c.GetOdds(context.Background(), "soccer_epl", OddsParams{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if r := c.Quota().Remaining; r == nil || *r != 0 {
				t.Errorf("quota not tracked on error")
			}
		})
	}
}

func TestGetOddsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown sport", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").GetOdds(context.Background(), "nope", OddsParams{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Body != "unknown sport" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestMissingKey(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:0", "").GetSports(context.Background())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestGetSports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"key":"soccer_epl","group":"Soccer","title":"EPL","description":"English Premier League","active":true,"has_outrights":false}]`))
	}))
	defer srv.Close()

	sports, err := NewClient(srv.URL, "k").GetSports(context.Background())
	if err != nil {
		t.Fatalf("GetSports: %v", err)
	}
	if len(sports) != 1 || sports[0].Key != "soccer_epl" || !sports[0].Active {
		t.Errorf("sports = %+v", sports)
	}
}

func TestOutcomeName(t *testing.T) {
	pt := func(f float64) *float64 { return &f }
	tests := []struct {
		market string
		in     APIOutcome
		want   string
	}{
		{"h2h", APIOutcome{Name: "Team A"}, "Team A"},
		{"totals", APIOutcome{Name: "Over", Point: pt(45.5)}, "Over 45.5"},
		{"spreads", APIOutcome{Name: "Team A", Point: pt(3.5)}, "Team A +3.5"},
		{"spreads", APIOutcome{Name: "Team B", Point: pt(-3.5)}, "Team B -3.5"},
		{"spreads", APIOutcome{Name: "Team B", Point: pt(0)}, "Team B 0"},
	}
	for _, tt := range tests {
		if got := OutcomeName(tt.market, tt.in); got != tt.want {
			t.Errorf("OutcomeName(%s, %+v) = %q, want %q", tt.market, tt.in, got, tt.want)
		}
	}
}

func TestToEventsSplitsLines(t *testing.T) {
	pt := func(f float64) *float64 { return &f }
	market := func(key string, outcomes ...APIOutcome) []APIMarket {
		return []APIMarket{{Key: key, Outcomes: outcomes}}
	}
	events := []APIEvent{{
		ID:           "e1",
		SportKey:     "americanfootball_nfl",
		CommenceTime: "2026-09-10T00:20:00Z",
		HomeTeam:     "Team A",
		AwayTeam:     "Team B",
		Bookmakers: []APIBookmaker{
			{Key: "x", Markets: market("totals",
				APIOutcome{Name: "Over", Price: 1.95, Point: pt(45.5)},
				APIOutcome{Name: "Under", Price: 1.90, Point: pt(45.5)})},
			{Key: "y", Markets: market("totals",
				APIOutcome{Name: "Over", Price: 2.05, Point: pt(46.5)},
				APIOutcome{Name: "Under", Price: 1.80, Point: pt(46.5)})},
			{Key: "x", Markets: market("spreads",
				APIOutcome{Name: "Team A", Price: 1.90, Point: pt(-3.5)},
				APIOutcome{Name: "Team B", Price: 1.95, Point: pt(3.5)})},
			{Key: "y", Markets: market("spreads",
				APIOutcome{Name: "Team B", Price: 2.10, Point: pt(3.5)},
				APIOutcome{Name: "Team A", Price: 1.85, Point: pt(-3.5)},
				APIOutcome{Name: "Team A", Price: 2.40, Point: pt(3.5)},
				APIOutcome{Name: "Team B", Price: 1.60, Point: pt(-3.5)})},
		},
	}}

	out := ToEvents("americanfootball_nfl", events)
	type want struct {
		market, line string
		quotes       int
	}
	wants := []want{
		{"totals", "45.5", 2},
		{"totals", "46.5", 2},
		{"spreads", "-3.5", 4},
		{"spreads", "+3.5", 2},
	}
	if len(out) != len(wants) {
		t.Fatalf("events = %d, want %d: %+v", len(out), len(wants), out)
	}
	for i, w := range wants {
		ev := out[i]
		if ev.MarketKey != w.market || ev.Line != w.line || len(ev.Quotes) != w.quotes {
			t.Errorf("event %d = %s %q with %d quotes, want %s %q with %d",
				i, ev.MarketKey, ev.Line, len(ev.Quotes), w.market, w.line, w.quotes)
			continue
		}
		if _, err := arbitrage.Normalize(ev, arbitrage.TwoWay); err != nil {
			t.Errorf("event %d: Normalize: %v", i, err)
		}
	}

	best, err := arbitrage.Normalize(out[2], arbitrage.TwoWay)
	if err != nil {
		t.Fatalf("Normalize spreads: %v", err)
	}
	if got := best.Prices["Team B +3.5"]; got.Bookmaker != "y" || got.Odds != 2.10 {
		t.Errorf("best Team B +3.5 = %+v", got)
	}
}

func TestLine(t *testing.T) {
	pt := func(f float64) *float64 { return &f }
	tests := []struct {
		market string
		in     APIOutcome
		want   string
	}{
		{"h2h", APIOutcome{Name: "Team A"}, ""},
		{"totals", APIOutcome{Name: "Over", Point: pt(45.5)}, "45.5"},
		{"totals", APIOutcome{Name: "Under", Point: pt(45.5)}, "45.5"},
		{"spreads", APIOutcome{Name: "Team A", Point: pt(-3.5)}, "-3.5"},
		{"spreads", APIOutcome{Name: "Team B", Point: pt(3.5)}, "-3.5"},
		{"spreads", APIOutcome{Name: "Team B", Point: pt(-3.5)}, "+3.5"},
		{"spreads", APIOutcome{Name: "Team B", Point: pt(0)}, "0"},
	}
	for _, tt := range tests {
		if got := Line(tt.market, "Team A", "Team B", tt.in); got != tt.want {
			t.Errorf("Line(%s, %+v) = %q, want %q", tt.market, tt.in, got, tt.want)
		}
	}
}
