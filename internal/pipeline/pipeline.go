// Package pipeline wires the ETL stages together: extract matches from
// the relational store, enrich match dates with rain observations,
// aggregate per-team stats and optionally forward them to the document
// sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rainball/etl/internal/client"
	"rainball/etl/internal/config"
	"rainball/etl/internal/metrics"
	"rainball/etl/internal/models"
	"rainball/etl/internal/sink"
	"rainball/etl/internal/stats"
	"rainball/etl/internal/weather"

	"github.com/rs/zerolog/log"
)

// MatchSource yields the season's matches from the relational store
type MatchSource interface {
	GetBySeason(ctx context.Context, season int, divisions []string) ([]*models.Match, error)
}

// Sink receives the final team aggregates
type Sink interface {
	InsertTeamStats(ctx context.Context, stats []*models.TeamAggregate, returnIDs bool) ([]string, *sink.PartialFailure, error)
}

// RunReport summarizes one pipeline run
type RunReport struct {
	Season        int
	Divisions     []string
	Matches       int
	DistinctDates int
	Observations  int
	SkippedDates  []string
	Enriched      int
	Teams         int
	InsertedIDs   []string
	SinkFailures  int
	Duration      time.Duration
}

// Pipeline runs the full extract-enrich-aggregate-load sequence.
// Execution is strictly sequential; there is no concurrency between
// stages or within the weather fetch loop.
type Pipeline struct {
	cfg     *config.Config
	matches MatchSource
	weather *weather.Aggregator
	sink    Sink // nil when the sink is disabled
}

// New creates a pipeline. sink may be nil.
func New(cfg *config.Config, matches MatchSource, wx *weather.Aggregator, s Sink) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		matches: matches,
		weather: wx,
		sink:    s,
	}
}

// Run executes one pipeline run and returns its report. An empty match
// table yields an empty report, not an error. A partial sink failure is
// recorded on the report and wrapped as ErrSinkPartialFailure; the
// aggregates for the remaining documents are still persisted.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{
		Season:    p.cfg.Season,
		Divisions: p.cfg.DivisionList(),
	}

	log.Info().
		Int("season", report.Season).
		Strs("divisions", report.Divisions).
		Msg("Pipeline run starting")

	// Extract
	matches, err := p.matches.GetBySeason(ctx, report.Season, report.Divisions)
	if err != nil {
		metrics.RecordDBQuery("get_matches", "error")
		metrics.RecordError("store", "query")
		return p.finish(report, start, fmt.Errorf("%w: %w", ErrStoreQueryFailed, err))
	}
	metrics.RecordDBQuery("get_matches", "success")
	report.Matches = len(matches)

	if len(matches) == 0 {
		log.Warn().Int("season", report.Season).Msg("No matches found; nothing to aggregate")
		return p.finish(report, start, nil)
	}

	// Enrich
	dates := make([]string, 0, len(matches))
	for _, m := range matches {
		dates = append(dates, m.Date)
	}
	report.DistinctDates = len(weather.UniqueDates(dates, p.cfg.WeatherCallLimit))

	observations, skipped, err := p.weather.Collect(ctx, dates, p.cfg.WeatherCallLimit)
	if err != nil {
		metrics.RecordError("weather", "fetch")
		kind := ErrWeatherUnreachable
		if errors.Is(err, client.ErrMalformedResponse) {
			kind = ErrWeatherMalformed
		}
		return p.finish(report, start, fmt.Errorf("%w: %w", kind, err))
	}
	report.Observations = len(observations)
	report.SkippedDates = skipped

	enriched := stats.JoinRain(matches, observations)
	report.Enriched = len(enriched)
	if len(enriched) == 0 {
		metrics.RecordError("join", "empty")
		return p.finish(report, start, fmt.Errorf("%w: %d matches, %d observations", ErrEmptyJoin, len(matches), len(observations)))
	}

	// Aggregate
	aggregates := stats.Aggregate(enriched, p.cfg.RoundDigits)
	report.Teams = len(aggregates)

	log.Info().
		Int("matches", report.Matches).
		Int("enriched", report.Enriched).
		Int("teams", report.Teams).
		Msg("Aggregation complete")

	// Load
	if p.sink != nil && len(aggregates) > 0 {
		ids, partial, err := p.sink.InsertTeamStats(ctx, aggregates, p.cfg.SinkReturnIDs)
		if err != nil {
			metrics.RecordError("sink", "insert")
			return p.finish(report, start, fmt.Errorf("failed to persist team stats: %w", err))
		}
		report.InsertedIDs = ids

		if partial != nil {
			report.SinkFailures = len(partial.Failures)
			metrics.RecordSinkInserts(partial.Inserted, len(partial.Failures))
			metrics.RecordError("sink", "partial")
			return p.finish(report, start, fmt.Errorf("%w: %s", ErrSinkPartialFailure, partial))
		}
		metrics.RecordSinkInserts(len(aggregates), 0)
	}

	return p.finish(report, start, nil)
}

func (p *Pipeline) finish(report *RunReport, start time.Time, err error) (*RunReport, error) {
	report.Duration = time.Since(start)
	metrics.UpdateRunStats(report.Matches, report.Teams, len(report.SkippedDates))

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.RecordPipelineRun(status, report.Duration.Seconds())

	log.Info().
		Str("status", status).
		Dur("duration", report.Duration).
		Int("teams", report.Teams).
		Int("sink_failures", report.SinkFailures).
		Msg("Pipeline run finished")

	return report, err
}
