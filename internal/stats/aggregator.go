// Package stats computes per-team win/goal aggregates from rain-enriched
// matches. This is the canonical aggregation path; the SQL variant in
// internal/repository exists for parity checks only.
package stats

import (
	"math"
	"sort"

	"rainball/etl/internal/models"
)

// DefaultRoundDigits is the precision applied to rain-win percentages
const DefaultRoundDigits = 3

// JoinRain inner-joins matches with rain observations on the date key.
// Matches whose date has no observation are dropped. Joining the result
// again with the same observations is a no-op.
func JoinRain(matches []*models.Match, observations []models.RainObservation) []models.EnrichedMatch {
	rainByDate := make(map[string]bool, len(observations))
	for _, obs := range observations {
		rainByDate[obs.Date] = obs.Rain
	}

	enriched := make([]models.EnrichedMatch, 0, len(matches))
	for _, match := range matches {
		rain, ok := rainByDate[match.Date]
		if !ok {
			continue
		}
		enriched = append(enriched, models.EnrichedMatch{Match: *match, Rain: rain})
	}

	return enriched
}

// sideTotals accumulates one side (home or away) of a team's appearances
type sideTotals struct {
	wins      int
	rainWins  int
	rainGames int
	goalsFor  int
	maxSeason int
	maxDiv    string
}

// Aggregate computes one record per team: total wins, total goals scored
// and the fraction of rainy-day matches won, rounded to digits. Teams are
// returned in name order.
//
// A team needs at least one home and one away appearance to survive the
// merge; teams appearing on only one side are dropped. A team with no
// rainy-day matches carries a nil RainWinPct. Season and division are the
// maximum values observed among the team's home appearances.
func Aggregate(enriched []models.EnrichedMatch, digits int) []*models.TeamAggregate {
	home := make(map[string]*sideTotals)
	away := make(map[string]*sideTotals)

	for _, m := range enriched {
		h := home[m.HomeTeam]
		if h == nil {
			h = &sideTotals{}
			home[m.HomeTeam] = h
		}
		h.goalsFor += m.FTHG
		if m.HomeWin() {
			h.wins++
			if m.Rain {
				h.rainWins++
			}
		}
		if m.Rain {
			h.rainGames++
		}
		if m.Season > h.maxSeason {
			h.maxSeason = m.Season
		}
		if m.Div > h.maxDiv {
			h.maxDiv = m.Div
		}

		a := away[m.AwayTeam]
		if a == nil {
			a = &sideTotals{}
			away[m.AwayTeam] = a
		}
		a.goalsFor += m.FTAG
		if m.AwayWin() {
			a.wins++
			if m.Rain {
				a.rainWins++
			}
		}
		if m.Rain {
			a.rainGames++
		}
	}

	aggregates := make([]*models.TeamAggregate, 0, len(home))
	for team, h := range home {
		a, ok := away[team]
		if !ok {
			continue
		}

		agg := &models.TeamAggregate{
			TeamName: team,
			Wins:     h.wins + a.wins,
			Goals:    h.goalsFor + a.goalsFor,
			Season:   h.maxSeason,
			Division: h.maxDiv,
		}

		if rainGames := h.rainGames + a.rainGames; rainGames > 0 {
			pct := Round(float64(h.rainWins+a.rainWins)/float64(rainGames), digits)
			agg.RainWinPct = &pct
		}

		aggregates = append(aggregates, agg)
	}

	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].TeamName < aggregates[j].TeamName
	})

	return aggregates
}

// Round rounds x to the given number of decimal digits
func Round(x float64, digits int) float64 {
	shift := math.Pow(10, float64(digits))
	return math.Round(x*shift) / shift
}
