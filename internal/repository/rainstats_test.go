package repository

import (
	"testing"

	"rainball/etl/internal/models"
	"rainball/etl/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrichedFixture() []models.EnrichedMatch {
	m := func(div string, season int, date, home, away string, fthg, ftag int, rain bool) models.EnrichedMatch {
		return models.EnrichedMatch{
			Match: models.Match{
				Div: div, Season: season, Date: date,
				HomeTeam: home, AwayTeam: away, FTHG: fthg, FTAG: ftag,
			},
			Rain: rain,
		}
	}

	// Every team appears home and away and plays at least one rainy match
	return []models.EnrichedMatch{
		m("D1", 2020, "2020-01-01", "A", "B", 2, 1, true),
		m("D1", 2020, "2020-01-04", "B", "A", 0, 3, false),
		m("D1", 2020, "2020-01-08", "A", "C", 1, 1, true),
		m("D1", 2020, "2020-01-11", "C", "A", 2, 0, true),
		m("D1", 2020, "2020-01-15", "B", "C", 4, 2, true),
		m("D1", 2020, "2020-01-18", "C", "B", 1, 0, false),
	}
}

func TestRainStatsRepository_AggregateMatchesInMemoryVariant(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	enriched := enrichedFixture()
	digits := 3

	fromSQL, err := db.RainStats.Aggregate(ctx, enriched, digits)
	require.NoError(t, err)

	fromMemory := stats.Aggregate(enriched, digits)
	require.Len(t, fromSQL, len(fromMemory), "Both variants aggregate the same team set")

	bySQLTeam := make(map[string]*models.TeamAggregate, len(fromSQL))
	for _, agg := range fromSQL {
		bySQLTeam[agg.TeamName] = agg
	}

	for _, want := range fromMemory {
		got, ok := bySQLTeam[want.TeamName]
		require.True(t, ok, "Team %s missing from SQL aggregation", want.TeamName)

		assert.Equal(t, want.Wins, got.Wins, "Wins must agree for %s", want.TeamName)
		assert.Equal(t, want.Goals, got.Goals, "Goals must agree for %s", want.TeamName)
		assert.Equal(t, want.Season, got.Season, "Season must agree for %s", want.TeamName)
		assert.Equal(t, want.Division, got.Division, "Division must agree for %s", want.TeamName)

		require.NotNil(t, want.RainWinPct)
		require.NotNil(t, got.RainWinPct)
		assert.InDelta(t, *want.RainWinPct, *got.RainWinPct, 0.001, "Rain win pct may differ by rounding only")
	}
}

func TestRainStatsRepository_AggregateOrdersByGoals(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	fromSQL, err := db.RainStats.Aggregate(ctx, enrichedFixture(), 3)
	require.NoError(t, err)
	require.NotEmpty(t, fromSQL)

	for i := 1; i < len(fromSQL); i++ {
		assert.GreaterOrEqual(t, fromSQL[i-1].Goals, fromSQL[i].Goals, "Output is ordered by goals descending")
	}
}

func TestRainStatsRepository_AggregateEmptyInput(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	fromSQL, err := db.RainStats.Aggregate(ctx, nil, 3)
	require.NoError(t, err, "Empty input is not an error")
	assert.Empty(t, fromSQL)
}

func TestRainStatsRepository_NoRainGamesYieldsNull(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	dry := []models.EnrichedMatch{
		{Match: models.Match{Div: "D1", Season: 2020, Date: "2020-01-01", HomeTeam: "A", AwayTeam: "B", FTHG: 1, FTAG: 0}, Rain: false},
		{Match: models.Match{Div: "D1", Season: 2020, Date: "2020-01-04", HomeTeam: "B", AwayTeam: "A", FTHG: 2, FTAG: 2}, Rain: false},
	}

	fromSQL, err := db.RainStats.Aggregate(ctx, dry, 3)
	require.NoError(t, err)
	require.NotEmpty(t, fromSQL)

	for _, agg := range fromSQL {
		assert.Nil(t, agg.RainWinPct, "NULLIF leaves the pct undefined when no rain games were played")
	}
}
