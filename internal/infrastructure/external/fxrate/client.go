package fxrate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
)

// Config holds rate client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client looks up exchange rates from exchangerate-api. The contract is
// fail-open: any failure yields a 1.0 rate with the defaulted flag set, so an
// unreachable rate service degrades to 1:1 conversion instead of blocking
// submission.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new rate lookup client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Rate returns the multiplicative rate from one currency to another. Equal
// currencies short-circuit to 1.0 without the defaulted flag.
func (c *Client) Rate(ctx context.Context, from, to string) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), false
	}

	rates, err := c.Latest(ctx, from)
	if err != nil {
		c.logger.Warn("Rate lookup failed, defaulting to 1:1",
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err))
		return decimal.NewFromInt(1), true
	}

	rate, ok := rates[to]
	if !ok || rate <= 0 {
		c.logger.Warn("Rate not available, defaulting to 1:1",
			zap.String("from", from),
			zap.String("to", to))
		return decimal.NewFromInt(1), true
	}

	return decimal.NewFromFloat(rate), false
}

// Latest returns the full rate table for a base currency. Unlike Rate, this
// surfaces errors; the integration endpoint proxies them to the caller.
func (c *Client) Latest(ctx context.Context, base string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/v4/latest/%s", c.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate service returned status %d", resp.StatusCode)
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}
	return payload.Rates, nil
}

var _ port.RateProvider = (*Client)(nil)
