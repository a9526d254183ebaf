// Package etherscan wraps the block-explorer HTTP API (spec.md §4.2,
// §6): block-by-timestamp and address token-tx listing, both behind the
// shared retry/backoff policy.
package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/car-engine/internal/apperr"
	"github.com/aristath/car-engine/internal/domain"
	"github.com/aristath/car-engine/internal/retry"
)

const (
	baseURL  = "https://api.etherscan.io/api"
	pageSize = 10_000
)

// Client is a block-explorer API client, following the teacher's
// internal/clients/yahoo/client.go shape.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a new block-explorer client.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("client", "etherscan").Logger(),
	}
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// BlockAt returns the latest block with time <= ts (spec.md §4.2).
func (c *Client) BlockAt(ctx context.Context, ts int64) (int64, error) {
	values := url.Values{
		"module":    {"block"},
		"action":    {"getblocknobytime"},
		"timestamp": {strconv.FormatInt(ts, 10)},
		"closest":   {"before"},
		"apikey":    {c.apiKey},
	}

	var block int64
	var lastErr error
	err := retry.Do(ctx, func(ctx context.Context) error {
		resp, err := c.get(ctx, values)
		if err != nil {
			lastErr = err
			return err
		}
		var blockStr string
		if err := json.Unmarshal(resp.Result, &blockStr); err != nil {
			lastErr = err
			return err
		}
		n, err := strconv.ParseInt(blockStr, 10, 64)
		if err != nil {
			lastErr = err
			return err
		}
		block = n
		return nil
	})
	if err != nil {
		return 0, apperr.NewConnectionError(baseURL+"?action=getblocknobytime", retry.MaxAttempts, lastErr)
	}
	return block, nil
}

// TokenTransfers pages the token-tx list for address across
// [fromBlock, toBlock]. The caller drives pagination: when a full page
// (pageSize rows) comes back, advance fromBlock to the last tx's block
// number and call again (spec.md §4.2, §4.5 step 2).
func (c *Client) TokenTransfers(ctx context.Context, address string, fromBlock, toBlock int64) ([]domain.RawTx, error) {
	values := url.Values{
		"module":     {"account"},
		"action":     {"tokentx"},
		"address":    {address},
		"startblock": {strconv.FormatInt(fromBlock, 10)},
		"endblock":   {strconv.FormatInt(toBlock, 10)},
		"offset":     {strconv.Itoa(pageSize)},
		"sort":       {"asc"},
		"apikey":     {c.apiKey},
	}

	var txs []domain.RawTx
	var lastErr error
	err := retry.Do(ctx, func(ctx context.Context) error {
		resp, err := c.get(ctx, values)
		if err != nil {
			lastErr = err
			return err
		}
		if resp.Message == "No transactions found" {
			txs = nil
			return nil
		}
		if err := json.Unmarshal(resp.Result, &txs); err != nil {
			lastErr = err
			return err
		}
		return nil
	})
	if err != nil {
		return nil, apperr.NewConnectionError(baseURL+"?action=tokentx", retry.MaxAttempts, lastErr)
	}
	return txs, nil
}

// PageSize is the fixed page size used for token-tx pagination.
func PageSize() int { return pageSize }

func (c *Client) get(ctx context.Context, values url.Values) (*apiResponse, error) {
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

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	// Success iff status=="1" or message=="No transactions found" (spec.md §6).
	if out.Status != "1" && out.Message != "No transactions found" {
		return nil, fmt.Errorf("api error: status=%s message=%s", out.Status, out.Message)
	}

	return &out, nil
}
