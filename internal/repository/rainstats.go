package repository

import (
	"context"
	"fmt"

	"rainball/etl/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RainStatsRepository computes team aggregates with a SQL query over a
// staging table. The in-memory aggregator in internal/stats is the
// canonical production path; this variant is kept as its relational twin
// for parity checks.
type RainStatsRepository struct {
	db *Database
}

// aggregateQuery merges the home-side and away-side groupings on team
// name. A team must appear on both sides to survive the join. NULLIF
// leaves rain_win_pct NULL for teams with no rainy-day matches.
const aggregateQuery = `
	SELECT h.team,
	       h.div,
	       h.season,
	       (h.h_win + a.a_win) AS wins,
	       (h.h_goals_for + a.a_goals_for) AS goals,
	       ROUND(
	           (h.h_rain_win + a.a_rain_win)::numeric
	           / NULLIF(h.h_rain_games + a.a_rain_games, 0),
	           $1
	       ) AS rain_win_pct
	FROM (
	    SELECT home_team AS team,
	           SUM(CASE WHEN fthg > ftag THEN 1 ELSE 0 END) AS h_win,
	           SUM(CASE WHEN fthg > ftag AND rain THEN 1 ELSE 0 END) AS h_rain_win,
	           SUM(CASE WHEN rain THEN 1 ELSE 0 END) AS h_rain_games,
	           SUM(fthg) AS h_goals_for,
	           MAX(div) AS div,
	           MAX(season) AS season
	    FROM temp_rain_stats
	    GROUP BY home_team
	) h
	JOIN (
	    SELECT away_team AS team,
	           SUM(CASE WHEN ftag > fthg THEN 1 ELSE 0 END) AS a_win,
	           SUM(CASE WHEN ftag > fthg AND rain THEN 1 ELSE 0 END) AS a_rain_win,
	           SUM(CASE WHEN rain THEN 1 ELSE 0 END) AS a_rain_games,
	           SUM(ftag) AS a_goals_for
	    FROM temp_rain_stats
	    GROUP BY away_team
	) a ON h.team = a.team
	ORDER BY goals DESC
`

// Aggregate computes per-team wins, goals scored and rain-day win
// percentage (rounded to digits) from enriched matches, ordered by goals
// descending. The staging table lives on a single pooled connection and
// is dropped before the connection is released, whether or not the
// aggregation succeeds.
func (r *RainStatsRepository) Aggregate(ctx context.Context, enriched []models.EnrichedMatch, digits int) ([]*models.TeamAggregate, error) {
	// Temp tables are session-scoped, so everything must run on one connection
	conn, err := r.db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
		CREATE TEMP TABLE temp_rain_stats (
			div       TEXT    NOT NULL,
			season    INT     NOT NULL,
			date      TEXT    NOT NULL,
			home_team TEXT    NOT NULL,
			away_team TEXT    NOT NULL,
			fthg      INT     NOT NULL,
			ftag      INT     NOT NULL,
			rain      BOOLEAN NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging table: %w", err)
	}
	defer func() {
		if _, dropErr := conn.Exec(ctx, `DROP TABLE IF EXISTS temp_rain_stats`); dropErr != nil {
			log.Warn().Err(dropErr).Msg("Failed to drop staging table")
		}
	}()

	_, err = conn.CopyFrom(
		ctx,
		pgx.Identifier{"temp_rain_stats"},
		[]string{"div", "season", "date", "home_team", "away_team", "fthg", "ftag", "rain"},
		pgx.CopyFromSlice(len(enriched), func(i int) ([]any, error) {
			m := enriched[i]
			return []any{m.Div, m.Season, m.Date, m.HomeTeam, m.AwayTeam, m.FTHG, m.FTAG, m.Rain}, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load staging table: %w", err)
	}

	rows, err := conn.Query(ctx, aggregateQuery, digits)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate team stats: %w", err)
	}
	defer rows.Close()

	var aggregates []*models.TeamAggregate
	for rows.Next() {
		var agg models.TeamAggregate
		err := rows.Scan(
			&agg.TeamName, &agg.Division, &agg.Season,
			&agg.Wins, &agg.Goals, &agg.RainWinPct,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team aggregate: %w", err)
		}
		aggregates = append(aggregates, &agg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team aggregates: %w", err)
	}

	log.Debug().
		Int("teams", len(aggregates)).
		Int("matches", len(enriched)).
		Msg("SQL aggregation complete")

	return aggregates, nil
}
