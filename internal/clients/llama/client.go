// Package llama wraps the historical-USD-price API (spec.md §4.2,
// §4.6): batch lookups of a token's price at a list of timestamps,
// behind the shared retry/backoff policy.
package llama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/car-engine/internal/apperr"
	"github.com/aristath/car-engine/internal/retry"
)

const baseURL = "https://coins.llama.fi/batchHistorical"

// Client is a historical price API client, following the teacher's
// internal/clients/yahoo/client.go shape.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a new historical price client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("client", "llama").Logger(),
	}
}

// PricePoint is one (timestamp, price) observation for a token.
type PricePoint struct {
	Timestamp int64
	USD       string
}

type coinEntry struct {
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

type batchHistoricalResponse struct {
	Coins map[string]struct {
		Prices []coinEntry `json:"prices"`
	} `json:"coins"`
}

// BatchHistorical resolves, for each contract address in requests, the
// USD price at each requested daily timestamp (spec.md §4.6). The
// coinKey format is "ethereum:<address>" per the upstream API.
func (c *Client) BatchHistorical(ctx context.Context, requests map[string][]int64) (map[string][]PricePoint, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	coins := make(map[string][]int64, len(requests))
	for address, timestamps := range requests {
		coins["ethereum:"+strings.ToLower(address)] = timestamps
	}
	payload, err := json.Marshal(coins)
	if err != nil {
		return nil, fmt.Errorf("marshal coins: %w", err)
	}

	values := url.Values{"coins": {string(payload)}}

	out := make(map[string][]PricePoint, len(requests))
	var lastErr error
	err = retry.Do(ctx, func(ctx context.Context) error {
		resp, getErr := c.get(ctx, values)
		if getErr != nil {
			lastErr = getErr
			return getErr
		}
		for coinKey, entry := range resp.Coins {
			address := strings.TrimPrefix(coinKey, "ethereum:")
			points := make([]PricePoint, 0, len(entry.Prices))
			for _, p := range entry.Prices {
				points = append(points, PricePoint{
					Timestamp: p.Timestamp,
					USD:       strconv.FormatFloat(p.Price, 'f', -1, 64),
				})
			}
			out[address] = points
		}
		return nil
	})
	if err != nil {
		return nil, apperr.NewConnectionError(baseURL, retry.MaxAttempts, lastErr)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, values url.Values) (*batchHistoricalResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("non-2xx response: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out batchHistoricalResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &out, nil
}
