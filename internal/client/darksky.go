package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"rainball/etl/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrMalformedResponse indicates the weather service answered but the
// daily icon field could not be extracted.
var ErrMalformedResponse = errors.New("malformed weather response")

// rainIcon is the single-word daily icon value that counts as rain
const rainIcon = "rain"

// Client is the Darksky time-machine API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a new Darksky API client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// DailyRain asks the weather service whether it rained on the given date
// (YYYY-MM-DD) at the given coordinates. Rain is true if and only if the
// daily icon equals "rain".
func (c *Client) DailyRain(ctx context.Context, date, lat, long string) (models.RainObservation, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.RainObservation{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	// Documented time-machine request shape: /forecast/{key}/{lat},{long},{time}
	path := fmt.Sprintf("forecast/%s/%s,%s,%sT00:00:00", c.apiKey, lat, long, date)

	body, err := c.get(ctx, path, map[string]string{
		"exclude": "currently,minutely,hourly,alerts,flags",
	})
	if err != nil {
		return models.RainObservation{}, fmt.Errorf("failed to fetch weather for %s: %w", date, err)
	}

	var result models.DarkskyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return models.RainObservation{}, fmt.Errorf("failed to unmarshal weather for %s: %w (%w)", date, err, ErrMalformedResponse)
	}

	if len(result.Daily.Data) == 0 {
		return models.RainObservation{}, fmt.Errorf("weather response for %s has no daily data: %w", date, ErrMalformedResponse)
	}

	icon := result.Daily.Data[0].Icon
	log.Debug().
		Str("date", date).
		Str("icon", icon).
		Msg("Daily weather fetched")

	return models.RainObservation{Date: date, Rain: icon == rainIcon}, nil
}

// get performs a GET request to the Darksky API with retry logic
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying weather request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "rainball-etl/1.0")

		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("weather request failed: %w", err)
			// Retry on network errors
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Retryable errors
			lastErr = fmt.Errorf("weather service returned retryable status %d: %s", resp.StatusCode, string(body))
			if attempt < c.maxRetries {
				log.Warn().
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		case http.StatusUnauthorized, http.StatusForbidden:
			// Don't retry auth errors
			return nil, fmt.Errorf("weather service authentication failed (status %d): %s", resp.StatusCode, string(body))

		default:
			return nil, fmt.Errorf("weather service returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}
