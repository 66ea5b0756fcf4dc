package repository

import (
	"context"
	"fmt"
	"strings"

	"rainball/etl/internal/models"

	"github.com/rs/zerolog/log"
)

// MatchRepository handles match database operations
type MatchRepository struct {
	db *Database
}

// matchColumns are the columns a usable Matches table must carry
var matchColumns = []string{"Div", "Season", "Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG"}

// ValidateSchema fails fast with a schema-mismatch error if the Matches
// table is missing any expected column
func (r *MatchRepository) ValidateSchema(ctx context.Context) error {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = 'Matches'
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to inspect Matches schema: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan column name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating columns: %w", err)
	}

	var missing []string
	for _, col := range matchColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema mismatch: Matches table is missing columns %s", strings.Join(missing, ", "))
	}

	return nil
}

// GetBySeason retrieves all matches for a season restricted to the given
// division codes. Row order is whatever the store returns; callers must
// not rely on it.
func (r *MatchRepository) GetBySeason(ctx context.Context, season int, divisions []string) ([]*models.Match, error) {
	if err := r.ValidateSchema(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT "Div", "Season", "Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG"
		FROM "Matches"
		WHERE "Season" = $1 AND "Div" = ANY($2)
	`

	rows, err := r.db.Pool.Query(ctx, query, season, divisions)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var match models.Match
		err := rows.Scan(
			&match.Div, &match.Season, &match.Date,
			&match.HomeTeam, &match.AwayTeam,
			&match.FTHG, &match.FTAG,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, &match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	log.Debug().
		Int("season", season).
		Strs("divisions", divisions).
		Int("count", len(matches)).
		Msg("Matches loaded")

	return matches, nil
}

// Count returns the number of matches for a season and division set
func (r *MatchRepository) Count(ctx context.Context, season int, divisions []string) (int, error) {
	query := `SELECT COUNT(*) FROM "Matches" WHERE "Season" = $1 AND "Div" = ANY($2)`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, season, divisions).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}

	return count, nil
}
