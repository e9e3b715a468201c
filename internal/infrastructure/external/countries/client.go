package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
)

// Config holds countries client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client lists countries and their currencies from restcountries. An
// unreachable upstream falls back to a static list so signup keeps working.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new countries client
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

type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	CCA2       string                     `json:"cca2"`
	Currencies map[string]json.RawMessage `json:"currencies"`
}

// Countries returns the country list, or the static fallback when the
// upstream is unavailable.
func (c *Client) Countries(ctx context.Context) []port.Country {
	fetched, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("Countries lookup failed, using fallback list", zap.Error(err))
		return fallbackCountries()
	}
	return fetched
}

// CurrencyFor resolves the currency code for a country name, falling back to
// the static mapping and finally USD.
func (c *Client) CurrencyFor(ctx context.Context, country string) string {
	for _, entry := range c.Countries(ctx) {
		if entry.Name == country {
			return entry.Currency
		}
	}
	return "USD"
}

func (c *Client) fetch(ctx context.Context) ([]port.Country, error) {
	url := fmt.Sprintf("%s/v3.1/all?fields=name,cca2,currencies", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build countries request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("countries request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("countries service returned status %d", resp.StatusCode)
	}

	var raw []restCountry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode countries response: %w", err)
	}

	countries := make([]port.Country, 0, len(raw))
	for _, rc := range raw {
		currency := "USD"
		for code := range rc.Currencies {
			currency = code
			break
		}
		countries = append(countries, port.Country{
			Name:     rc.Name.Common,
			Code:     rc.CCA2,
			Currency: currency,
		})
	}
	return countries, nil
}

func fallbackCountries() []port.Country {
	return []port.Country{
		{Name: "India", Code: "IN", Currency: "INR"},
		{Name: "United States", Code: "US", Currency: "USD"},
		{Name: "United Kingdom", Code: "GB", Currency: "GBP"},
		{Name: "Canada", Code: "CA", Currency: "CAD"},
		{Name: "Australia", Code: "AU", Currency: "AUD"},
		{Name: "Germany", Code: "DE", Currency: "EUR"},
		{Name: "France", Code: "FR", Currency: "EUR"},
		{Name: "Japan", Code: "JP", Currency: "JPY"},
		{Name: "Singapore", Code: "SG", Currency: "SGD"},
		{Name: "United Arab Emirates", Code: "AE", Currency: "AED"},
	}
}

var _ port.CountryProvider = (*Client)(nil)
