package oddsapi

import (
	"strconv"
	"time"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// ToSport converts an API sport.
func ToSport(s APISport) domain.Sport {
	return domain.Sport{
		Key:          s.Key,
		Group:        s.Group,
		Title:        s.Title,
		Description:  s.Description,
		Active:       s.Active,
		HasOutrights: s.HasOutrights,
	}
}

// ToEvents flattens API events into one domain.Event per (event, market key,
// line) with the quotes of every bookmaker merged. Books quoting a spreads or
// totals market at different lines produce separate events, since only
// outcomes priced at the same line hedge each other. Order follows the
// response.
func ToEvents(sportKey string, events []APIEvent) []domain.Event {
	type key struct{ id, market, line string }

	var out []domain.Event
	index := make(map[key]int)
	for _, ev := range events {
		commence, err := time.Parse(time.RFC3339, ev.CommenceTime)
		if err != nil {
			commence = time.Time{}
		}
		sport := ev.SportKey
		if sport == "" {
			sport = sportKey
		}

		for _, bm := range ev.Bookmakers {
			for _, m := range bm.Markets {
				marketKey := m.Key
				if marketKey == "" {
					marketKey = "h2h"
				}
				for _, o := range m.Outcomes {
					line := Line(marketKey, ev.HomeTeam, ev.AwayTeam, o)
					k := key{ev.ID, marketKey, line}
					i, ok := index[k]
					if !ok {
						i = len(out)
						index[k] = i
						out = append(out, domain.Event{EventRef: domain.EventRef{
							ID:           ev.ID,
							SportKey:     sport,
							SportTitle:   ev.SportTitle,
							HomeTeam:     ev.HomeTeam,
							AwayTeam:     ev.AwayTeam,
							CommenceTime: commence.UTC(),
							MarketKey:    marketKey,
							Line:         line,
						}})
					}
					out[i].Quotes = append(out[i].Quotes, domain.Quote{
						Bookmaker: bm.Key,
						Outcome:   OutcomeName(marketKey, o),
						Odds:      o.Price,
					})
				}
			}
		}
	}
	return out
}

// Line returns the line an outcome is priced at. Totals use the point itself
// ("45.5" for both Over and Under). Spreads use the home team's handicap, so
// "Home -3.5" and "Away +3.5" share the line "-3.5". Outcomes without a point
// have no line.
func Line(marketKey, homeTeam, awayTeam string, o APIOutcome) string {
	if o.Point == nil {
		return ""
	}
	p := *o.Point
	if marketKey == "spreads" && o.Name == awayTeam && o.Name != homeTeam {
		p = -p
	}
	return formatPoint(marketKey, p)
}

func formatPoint(marketKey string, p float64) string {
	if p == 0 {
		p = 0 // normalises -0
	}
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if marketKey != "totals" && p > 0 {
		s = "+" + s
	}
	return s
}

// OutcomeName qualifies an outcome with its point: "Over 45.5", "Team A +3.5".
func OutcomeName(marketKey string, o APIOutcome) string {
	if o.Point == nil {
		return o.Name
	}
	return o.Name + " " + formatPoint(marketKey, *o.Point)
}
