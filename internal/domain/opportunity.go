package domain

import "time"

// Opportunity is a detected arbitrage: best prices across bookmakers whose
// implied probabilities sum below one. ProfitMargin is always positive.
type Opportunity struct {
	ID                      string    `json:"id,omitempty"`
	Event                   EventRef  `json:"event"`
	Picks                   []Pick    `json:"picks"`
	TotalImpliedProbability float64   `json:"total_implied_probability"`
	ProfitMargin            float64   `json:"profit_margin"`
	DetectedAt              time.Time `json:"detected_at,omitempty"`
}

// ProfitPercentage returns the margin as a percentage.
func (o Opportunity) ProfitPercentage() float64 {
	return o.ProfitMargin * 100
}

// Allocation is the stake placed on one outcome of a StakePlan.
type Allocation struct {
	Outcome         string  `json:"outcome_name"`
	Bookmaker       string  `json:"bookmaker"`
	Odds            float64 `json:"odds"`
	Stake           float64 `json:"stake"`
	PotentialPayout float64 `json:"potential_return"`
}

// StakePlan splits a total stake across outcomes so that every outcome pays
// (approximately) the same. Stakes are in cents precision and sum exactly to
// TotalStake.
type StakePlan struct {
	TotalStake              float64      `json:"total_stake"`
	TotalImpliedProbability float64      `json:"total_implied_probability"`
	Allocations             []Allocation `json:"stakes"`
	GuaranteedReturn        float64      `json:"guaranteed_return"`
	GuaranteedProfit        float64      `json:"guaranteed_profit"`
	ProfitPercentage        float64      `json:"profit_percentage"`
}

// ScanResult is the outcome of scanning one sport.
type ScanResult struct {
	ID                   int64         `json:"scan_id,omitempty"`
	SportKey             string        `json:"sport_key"`
	SportTitle           string        `json:"sport_title"`
	ScanTime             time.Time     `json:"scan_time"`
	EventsScanned        int           `json:"events_scanned"`
	IneligibleEvents     int           `json:"ineligible_events"`
	OpportunitiesFound   int           `json:"opportunities_found"`
	Opportunities        []Opportunity `json:"opportunities"`
	APIRequestsUsed      int           `json:"api_requests_used"`
	APIRequestsRemaining *int          `json:"api_requests_remaining"`
}

// ScanRecord is a persisted scan without its opportunities.
type ScanRecord struct {
	ID                 int64     `json:"id"`
	SportKey           string    `json:"sport_key"`
	SportTitle         string    `json:"sport_title"`
	ScanTime           time.Time `json:"scan_time"`
	EventsScanned      int       `json:"events_scanned"`
	OpportunitiesFound int       `json:"opportunities_found"`
	APIRequestsUsed    int       `json:"api_requests_used"`
}
