package models

// TeamAggregate is the per-team output record of one aggregation run.
// Computed fresh per run, never mutated, optionally forwarded to the
// document sink as a transient document.
type TeamAggregate struct {
	TeamName string `json:"team_name" bson:"team_name"`
	Wins     int    `json:"wins" bson:"wins"`
	Goals    int    `json:"goals" bson:"goals"`

	// RainWinPct is nil for a team that played no rainy-day matches:
	// the fraction is undefined, not zero.
	RainWinPct *float64 `json:"rain_win_pct" bson:"rain_win_pct"`

	Season   int    `json:"season" bson:"season"`
	Division string `json:"division" bson:"division"`
}

// HasRainGames reports whether the rain-win percentage is defined
func (a *TeamAggregate) HasRainGames() bool {
	return a.RainWinPct != nil
}
