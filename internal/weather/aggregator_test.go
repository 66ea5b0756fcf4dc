package weather

import (
	"context"
	"errors"
	"testing"

	"rainball/etl/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher records calls and answers from a fixed rain table
type fakeFetcher struct {
	calls   []string
	rain    map[string]bool
	failOn  map[string]bool
	failErr error
}

func (f *fakeFetcher) DailyRain(_ context.Context, date, _, _ string) (models.RainObservation, error) {
	f.calls = append(f.calls, date)
	if f.failOn[date] {
		return models.RainObservation{}, f.failErr
	}
	return models.RainObservation{Date: date, Rain: f.rain[date]}, nil
}

func TestUniqueDates_DedupesAndSorts(t *testing.T) {
	dates := []string{"2020-01-03", "2020-01-01", "2020-01-03", "2020-01-02", "2020-01-01"}

	unique := UniqueDates(dates, -1)
	assert.Equal(t, []string{"2020-01-01", "2020-01-02", "2020-01-03"}, unique)
}

func TestUniqueDates_LimitIsDeterministic(t *testing.T) {
	dates := []string{"2020-01-03", "2020-01-01", "2020-01-02"}

	limited := UniqueDates(dates, 2)
	assert.Equal(t, []string{"2020-01-01", "2020-01-02"}, limited, "Limit applies after ascending sort")

	assert.Empty(t, UniqueDates(dates, 0), "A zero limit fetches nothing")
	assert.Len(t, UniqueDates(dates, 10), 3, "A limit beyond the input is a no-op")
}

func TestCollect_OneCallPerDistinctDate(t *testing.T) {
	fetcher := &fakeFetcher{rain: map[string]bool{"2020-01-01": true}}
	agg := NewAggregator(fetcher, nil, "52.5200", "13.4050", false)

	dates := []string{"2020-01-01", "2020-01-02", "2020-01-01", "2020-01-02", "2020-01-01"}
	observations, skipped, err := agg.Collect(context.Background(), dates, -1)

	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Len(t, fetcher.calls, 2, "Remote calls must equal the distinct date count, never more")
	require.Len(t, observations, 2)
	assert.True(t, observations[0].Rain)
	assert.False(t, observations[1].Rain)
}

func TestCollect_FailFastByDefault(t *testing.T) {
	wantErr := errors.New("boom")
	fetcher := &fakeFetcher{
		failOn:  map[string]bool{"2020-01-02": true},
		failErr: wantErr,
	}
	agg := NewAggregator(fetcher, nil, "52.5200", "13.4050", false)

	_, _, err := agg.Collect(context.Background(), []string{"2020-01-01", "2020-01-02", "2020-01-03"}, -1)
	require.Error(t, err, "A single failed fetch aborts the whole collection")
	assert.ErrorIs(t, err, wantErr)
	assert.Len(t, fetcher.calls, 2, "Collection stops at the failing date")
}

func TestCollect_SkipFailedDates(t *testing.T) {
	fetcher := &fakeFetcher{
		rain:    map[string]bool{"2020-01-03": true},
		failOn:  map[string]bool{"2020-01-02": true},
		failErr: errors.New("boom"),
	}
	agg := NewAggregator(fetcher, nil, "52.5200", "13.4050", true)

	observations, skipped, err := agg.Collect(context.Background(), []string{"2020-01-01", "2020-01-02", "2020-01-03"}, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020-01-02"}, skipped, "Failed date is reported, not fatal")
	assert.Len(t, observations, 2, "Remaining dates are still collected")
}

func TestCollect_RespectsLimit(t *testing.T) {
	fetcher := &fakeFetcher{}
	agg := NewAggregator(fetcher, nil, "52.5200", "13.4050", false)

	observations, _, err := agg.Collect(context.Background(), []string{"2020-01-03", "2020-01-01", "2020-01-02"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020-01-01", "2020-01-02"}, fetcher.calls)
	assert.Len(t, observations, 2)
}
