// Package weather collects one rain observation per distinct match date
// from the Darksky client, with an optional Redis read-through cache.
package weather

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rainball/etl/internal/metrics"
	"rainball/etl/internal/models"

	"github.com/rs/zerolog/log"
)

// Fetcher fetches a single daily rain observation
type Fetcher interface {
	DailyRain(ctx context.Context, date, lat, long string) (models.RainObservation, error)
}

// Aggregator deduplicates match dates and fetches a rain flag per
// distinct date, strictly one call at a time
type Aggregator struct {
	fetcher    Fetcher
	cache      *Cache // nil when caching is disabled
	lat        string
	long       string
	skipFailed bool
}

// NewAggregator creates a weather aggregator for a fixed reference location.
// cache may be nil. When skipFailed is true, a failed date is skipped and
// reported instead of aborting the whole collection.
func NewAggregator(fetcher Fetcher, cache *Cache, lat, long string, skipFailed bool) *Aggregator {
	return &Aggregator{
		fetcher:    fetcher,
		cache:      cache,
		lat:        lat,
		long:       long,
		skipFailed: skipFailed,
	}
}

// UniqueDates deduplicates the input dates and returns them sorted
// ascending. Sorting makes the subset selected by a call limit
// deterministic; set-extraction order would not be.
func UniqueDates(dates []string, limit int) []string {
	seen := make(map[string]struct{}, len(dates))
	unique := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}

	sort.Strings(unique)

	if limit >= 0 && limit < len(unique) {
		unique = unique[:limit]
	}
	return unique
}

// Collect returns one observation per distinct date, at most limit dates
// (limit < 0 means unlimited). The second return value lists dates that
// were skipped after a fetch failure; it is always empty in fail-fast
// mode.
func (a *Aggregator) Collect(ctx context.Context, dates []string, limit int) ([]models.RainObservation, []string, error) {
	unique := UniqueDates(dates, limit)

	observations := make([]models.RainObservation, 0, len(unique))
	var skipped []string

	for _, date := range unique {
		if a.cache != nil {
			if rain, ok, err := a.cache.Get(ctx, a.lat, a.long, date); err != nil {
				log.Warn().Err(err).Str("date", date).Msg("Weather cache read failed")
			} else if ok {
				metrics.RecordCacheHit()
				observations = append(observations, models.RainObservation{Date: date, Rain: rain})
				continue
			} else {
				metrics.RecordCacheMiss()
			}
		}

		start := time.Now()
		obs, err := a.fetcher.DailyRain(ctx, date, a.lat, a.long)
		if err != nil {
			metrics.RecordWeatherCall("error", time.Since(start).Seconds())
			if a.skipFailed && ctx.Err() == nil {
				log.Warn().Err(err).Str("date", date).Msg("Skipping date after weather fetch failure")
				skipped = append(skipped, date)
				continue
			}
			return nil, nil, fmt.Errorf("weather collection aborted at %s: %w", date, err)
		}
		metrics.RecordWeatherCall("success", time.Since(start).Seconds())

		if a.cache != nil {
			if err := a.cache.Set(ctx, a.lat, a.long, date, obs.Rain); err != nil {
				log.Warn().Err(err).Str("date", date).Msg("Weather cache write failed")
			}
		}

		observations = append(observations, obs)
	}

	log.Info().
		Int("dates", len(unique)).
		Int("observations", len(observations)).
		Int("skipped", len(skipped)).
		Msg("Rain observations collected")

	return observations, skipped, nil
}
