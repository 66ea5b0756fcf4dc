package models

// DateLayout is the wire format for match and observation dates.
// Dates are joined on exact string equality in this form.
const DateLayout = "2006-01-02"

// Match represents a single historical soccer match as stored in the
// relational store. Immutable once read.
type Match struct {
	Div      string `db:"div"`
	Season   int    `db:"season"`
	Date     string `db:"date"` // YYYY-MM-DD
	HomeTeam string `db:"home_team"`
	AwayTeam string `db:"away_team"`
	FTHG     int    `db:"fthg"` // full-time home goals
	FTAG     int    `db:"ftag"` // full-time away goals
}

// HomeWin returns true if the home side won
func (m *Match) HomeWin() bool {
	return m.FTHG > m.FTAG
}

// AwayWin returns true if the away side won
func (m *Match) AwayWin() bool {
	return m.FTAG > m.FTHG
}

// Draw returns true if the match ended level
func (m *Match) Draw() bool {
	return m.FTHG == m.FTAG
}

// EnrichedMatch is a match joined with the rain observation for its date
type EnrichedMatch struct {
	Match
	Rain bool
}
