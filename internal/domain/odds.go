package domain

import "time"

// Quote is a single bookmaker price for one outcome of an event, in decimal
// odds (payout multiple including the stake).
type Quote struct {
	Bookmaker string  `json:"bookmaker"`
	Outcome   string  `json:"outcome"`
	Odds      float64 `json:"odds"`
}

// EventRef identifies an event and the market its quotes belong to.
type EventRef struct {
	ID           string    `json:"event_id"`
	SportKey     string    `json:"sport_key"`
	SportTitle   string    `json:"sport_title"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
	MarketKey    string    `json:"market_key"`
	// Line is the handicap or total a spreads/totals market is priced at,
	// empty for h2h. For spreads it is the home team's handicap.
	Line string `json:"line,omitempty"`
}

// Name returns the display name of the event ("Away @ Home").
func (r EventRef) Name() string {
	return r.AwayTeam + " @ " + r.HomeTeam
}

// Event is one market of one fixture with quotes merged across bookmakers.
type Event struct {
	EventRef
	Quotes []Quote `json:"quotes"`
}

// Ref returns the event metadata without its quotes.
func (e Event) Ref() EventRef {
	return e.EventRef
}

// Price is the best available price for an outcome and who offers it.
type Price struct {
	Bookmaker string  `json:"bookmaker"`
	Odds      float64 `json:"odds"`
}

// BestPrice maps each outcome of an event to its best price. Outcomes holds
// the canonical outcome order.
type BestPrice struct {
	Outcomes []string         `json:"outcomes"`
	Prices   map[string]Price `json:"prices"`
}

// Len returns the number of outcomes.
func (b BestPrice) Len() int {
	return len(b.Outcomes)
}

// Pick is one leg of an arbitrage: an outcome backed at a bookmaker's price.
type Pick struct {
	Outcome   string  `json:"name"`
	Bookmaker string  `json:"bookmaker"`
	Odds      float64 `json:"price"`
}

// ImpliedProbability returns 1/odds, or 0 for non-positive odds.
func (p Pick) ImpliedProbability() float64 {
	if p.Odds <= 0 {
		return 0
	}
	return 1 / p.Odds
}

// Sport is a sport offered by the odds provider.
type Sport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// Bookmaker is a sportsbook known to the scanner.
type Bookmaker struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}
