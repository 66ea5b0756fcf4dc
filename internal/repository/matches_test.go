package repository

import (
	"context"
	"testing"

	"rainball/etl/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMatches(t *testing.T, db *Database, ctx context.Context, matches []*models.Match) {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS "Matches" (
			"Div"      TEXT NOT NULL,
			"Season"   INT  NOT NULL,
			"Date"     TEXT NOT NULL,
			"HomeTeam" TEXT NOT NULL,
			"AwayTeam" TEXT NOT NULL,
			"FTHG"     INT  NOT NULL,
			"FTAG"     INT  NOT NULL
		)
	`)
	require.NoError(t, err, "Should create Matches table")

	_, err = db.Pool.Exec(ctx, `TRUNCATE "Matches"`)
	require.NoError(t, err, "Should truncate Matches table")

	for _, m := range matches {
		_, err := db.Pool.Exec(ctx, `
			INSERT INTO "Matches" ("Div", "Season", "Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG")
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, m.Div, m.Season, m.Date, m.HomeTeam, m.AwayTeam, m.FTHG, m.FTAG)
		require.NoError(t, err, "Should insert match")
	}
}

func TestMatchRepository_GetBySeason(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	seedMatches(t, db, ctx, []*models.Match{
		{Div: "D1", Season: 2020, Date: "2020-01-01", HomeTeam: "A", AwayTeam: "B", FTHG: 2, FTAG: 1},
		{Div: "E0", Season: 2020, Date: "2020-01-02", HomeTeam: "C", AwayTeam: "D", FTHG: 0, FTAG: 0},
		{Div: "SP1", Season: 2020, Date: "2020-01-03", HomeTeam: "E", AwayTeam: "F", FTHG: 1, FTAG: 3},
		{Div: "D1", Season: 2019, Date: "2019-05-01", HomeTeam: "A", AwayTeam: "B", FTHG: 1, FTAG: 1},
	})

	matches, err := db.Matches.GetBySeason(ctx, 2020, []string{"D1", "E0"})
	require.NoError(t, err)
	require.Len(t, matches, 2, "Other divisions and seasons are filtered out")

	teams := []string{matches[0].HomeTeam, matches[1].HomeTeam}
	assert.ElementsMatch(t, []string{"A", "C"}, teams, "Row order is unspecified; content must match")
}

func TestMatchRepository_GetBySeasonEmpty(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	seedMatches(t, db, ctx, nil)

	matches, err := db.Matches.GetBySeason(ctx, 2020, []string{"D1", "E0"})
	require.NoError(t, err, "An empty table is not an error")
	assert.Empty(t, matches)
}

func TestMatchRepository_Count(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	seedMatches(t, db, ctx, []*models.Match{
		{Div: "D1", Season: 2020, Date: "2020-01-01", HomeTeam: "A", AwayTeam: "B", FTHG: 2, FTAG: 1},
		{Div: "D1", Season: 2020, Date: "2020-01-04", HomeTeam: "B", AwayTeam: "A", FTHG: 0, FTAG: 1},
	})

	count, err := db.Matches.Count(ctx, 2020, []string{"D1", "E0"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMatchRepository_ValidateSchema(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	seedMatches(t, db, ctx, nil)

	assert.NoError(t, db.Matches.ValidateSchema(ctx), "Seeded table carries all expected columns")
}
