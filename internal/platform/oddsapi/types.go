package oddsapi

// --------------------------------------------------------------------------
// The Odds API v4 DTOs
// --------------------------------------------------------------------------

// APISport is a sport as returned by GET /sports.
type APISport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// APIEvent is one fixture with every bookmaker's markets, as returned by
// GET /sports/{sport}/odds.
type APIEvent struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	SportTitle   string         `json:"sport_title"`
	CommenceTime string         `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []APIBookmaker `json:"bookmakers"`
}

// APIBookmaker is one sportsbook's markets for an event.
type APIBookmaker struct {
	Key        string      `json:"key"`
	Title      string      `json:"title"`
	LastUpdate string      `json:"last_update"`
	Markets    []APIMarket `json:"markets"`
}

// APIMarket is a market (h2h, spreads, totals) offered by one bookmaker.
type APIMarket struct {
	Key      string       `json:"key"`
	Outcomes []APIOutcome `json:"outcomes"`
}

// APIOutcome is a priced outcome. Point is set for spreads and totals.
type APIOutcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// OddsParams narrows an odds request.
type OddsParams struct {
	Regions    []string
	Markets    []string
	Bookmakers []string
}
