// This file contains a Massive-backed SpotProvider that reads the previous
// trading day's aggregate bar of an underlying over the Massive HTTP API.
//
// Design notes:
//   - Uses raw HTTP calls instead of the official Massive SDK
//   - Retries on HTTP 429 after sleeping to the next minute boundary
//   - Logging stays at Debug/Trace so normal runs print prices only

package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/contactkeval/quantmc/internal/logger"
)

// maxRateLimitRetries bounds how often a 429 response is retried.
const maxRateLimitRetries = 3

// massiveDataProvider implements SpotProvider using Massive APIs.
type massiveDataProvider struct {
	// APIKey used for authenticating requests with Massive.
	APIKey string

	// Client is the HTTP client used to make API requests.
	Client *http.Client

	// BaseURL is the root endpoint for Massive APIs
	// (e.g., https://api.massive.com).
	BaseURL string

	// wait blocks until the rate limit window resets.
	wait func(ctx context.Context) error
}

// massivePrevResp models the previous-close aggregates response.
type massivePrevResp struct {
	Ticker       string `json:"ticker"`
	ResultsCount int    `json:"resultsCount"`
	Results      []struct {
		Open      float64 `json:"o"`
		Close     float64 `json:"c"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Volume    float64 `json:"v"`
		Timestamp int64   `json:"t"` // epoch millis
	} `json:"results"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewMassiveDataProvider constructs a Massive-backed spot provider.
func NewMassiveDataProvider(apiKey string) *massiveDataProvider {
	logger.Debugf("initializing Massive data provider")

	return &massiveDataProvider{
		APIKey: apiKey,
		Client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 20 * time.Second,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		BaseURL: "https://api.massive.com",
		wait:    waitNextMinute,
	}
}

// Spot returns the previous close of ticker.
func (massiveDataProv *massiveDataProvider) Spot(ctx context.Context, ticker string) (float64, error) {
	bar, err := massiveDataProv.PreviousClose(ctx, ticker)
	if err != nil {
		return 0, err
	}
	if bar.Close <= 0 {
		return 0, fmt.Errorf("massive returned non-positive close %v for %s", bar.Close, ticker)
	}
	return bar.Close, nil
}

// PreviousClose retrieves the previous trading day's bar for ticker.
func (massiveDataProv *massiveDataProvider) PreviousClose(ctx context.Context, ticker string) (Bar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Bar{}, fmt.Errorf("empty ticker")
	}
	if massiveDataProv.APIKey == "" {
		return Bar{}, fmt.Errorf("massive api key is not set")
	}

	u, err := url.Parse(massiveDataProv.BaseURL + "/v2/aggs/ticker/" + url.PathEscape(ticker) + "/prev")
	if err != nil {
		return Bar{}, err
	}
	query := u.Query()
	query.Set("adjusted", "true")
	query.Set("apiKey", massiveDataProv.APIKey)
	u.RawQuery = query.Encode()

	logger.Debugf("fetching previous close: %s", ticker)

	resp, err := massiveDataProv.processGetRequest(ctx, u.String())
	if err != nil {
		return Bar{}, fmt.Errorf("massive api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var dbg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &dbg)
		logger.Errorf("massive prev close API error status=%d message=%s", resp.StatusCode, dbg.Message)
		return Bar{}, fmt.Errorf("massive returned status %d: %s", resp.StatusCode, dbg.Message)
	}

	var body massivePrevResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Bar{}, fmt.Errorf("parsing massive response: %w", err)
	}
	if len(body.Results) == 0 {
		return Bar{}, fmt.Errorf("no previous close for %s", ticker)
	}

	r := body.Results[0]
	logger.Tracef("previous close %s: c=%.4f t=%d", ticker, r.Close, r.Timestamp)

	return Bar{
		Date:  time.UnixMilli(r.Timestamp).UTC(),
		Open:  r.Open,
		High:  r.High,
		Low:   r.Low,
		Close: r.Close,
		Vol:   r.Volume,
	}, nil
}

// processGetRequest executes a GET request with rate-limit handling.
//
// Behavior:
//   - Retries up to maxRateLimitRetries times on HTTP 429
//   - Waits until the next minute boundary between attempts
//   - Returns any other response to the caller unchanged
func (massiveDataProv *massiveDataProvider) processGetRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+massiveDataProv.APIKey)
		req.Header.Set("Accept", "application/json")

		resp, err := massiveDataProv.Client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		resp.Body.Close()

		if attempt >= maxRateLimitRetries {
			return nil, fmt.Errorf("rate limited after %d attempts", attempt+1)
		}
		logger.Infof("rate limit hit, waiting for the next window")
		if err := massiveDataProv.wait(ctx); err != nil {
			return nil, err
		}
	}
}

// waitNextMinute sleeps until the next minute boundary or until ctx is done.
func waitNextMinute(ctx context.Context) error {
	now := time.Now()
	timer := time.NewTimer(now.Truncate(time.Minute).Add(time.Minute).Sub(now))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
