package notify

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// FormatOpportunity renders an opportunity as a plain-text summary.
//
//	Event: Team B @ Team A
//	Sport: NBA
//	Profit Margin: 3.60%
//	Start Time: 2026-03-01 19:30 UTC
//	Best Odds:
//	  Team A: 2.10 @ draftkings
func FormatOpportunity(o domain.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\n", o.Event.Name())
	fmt.Fprintf(&b, "Sport: %s\n", o.Event.SportTitle)
	if o.Event.MarketKey != "" && o.Event.MarketKey != "h2h" {
		if o.Event.Line != "" {
			fmt.Fprintf(&b, "Market: %s %s\n", o.Event.MarketKey, o.Event.Line)
		} else {
			fmt.Fprintf(&b, "Market: %s\n", o.Event.MarketKey)
		}
	}
	fmt.Fprintf(&b, "Profit Margin: %.2f%%\n", o.ProfitPercentage())
	if !o.Event.CommenceTime.IsZero() {
		fmt.Fprintf(&b, "Start Time: %s\n", o.Event.CommenceTime.UTC().Format("2006-01-02 15:04 UTC"))
	}
	b.WriteString("Best Odds:")
	for _, p := range o.Picks {
		fmt.Fprintf(&b, "\n  %s: %.2f @ %s", p.Outcome, p.Odds, p.Bookmaker)
	}
	return b.String()
}

// FormatScan renders the opportunities of one scan, best first, capped at
// limit entries.
func FormatScan(r domain.ScanResult, limit int) (title, message string) {
	title = fmt.Sprintf("%d arbitrage opportunit%s in %s", len(r.Opportunities), plural(len(r.Opportunities)), sportName(r))
	parts := make([]string, 0, limit)
	for i, o := range r.Opportunities {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... and %d more", len(r.Opportunities)-limit))
			break
		}
		parts = append(parts, FormatOpportunity(o))
	}
	return title, strings.Join(parts, "\n\n")
}

func sportName(r domain.ScanResult) string {
	if r.SportTitle != "" {
		return r.SportTitle
	}
	return r.SportKey
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
