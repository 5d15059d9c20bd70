// Package fmp provides a client for the Financial Modeling Prep API
package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
	"github.com/lensquant/lensquant/internal/models"
)

const (
	DefaultBaseURL = "https://financialmodelingprep.com/api/v3"
	DefaultTimeout = 30 * time.Second
)

// Client implements the FMPClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client (used by tests)
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new FMP client. An empty apiKey is allowed: every request
// then fails with a missing_api_key provider error, which the agent surfaces as
// a degraded tool result rather than a startup failure.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request and decodes the JSON response into result
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if c.apiKey == "" {
		return models.NewProviderError(models.ErrCodeMissingAPIKey, "FMP API key not configured")
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.NewProviderError(models.ErrCodeUpstreamError, fmt.Sprintf("create request: %v", err))
	}

	c.logger.Debug().Str("path", path).Msg("FMP request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return models.NewProviderError(models.ErrCodeTimeout, fmt.Sprintf("request timed out: %v", err))
		}
		return models.NewProviderError(models.ErrCodeUpstreamError, fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.NewProviderError(models.ErrCodeUpstreamError, fmt.Sprintf("read response: %v", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.NewProviderError(models.ErrCodeMissingAPIKey, fmt.Sprintf("FMP rejected credentials (status %d)", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return models.NewProviderError(models.ErrCodeUpstreamError, fmt.Sprintf("FMP error (status %d, path %s)", resp.StatusCode, path))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return models.NewProviderError(models.ErrCodeUpstreamError, fmt.Sprintf("decode response: %v", err))
	}

	return nil
}

// isTimeout reports whether err is a network timeout
func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// GetQuote retrieves real-time quotes for the given symbols
func (c *Client) GetQuote(ctx context.Context, symbols []string) ([]models.Quote, error) {
	if len(symbols) == 0 {
		return nil, models.NewProviderError(models.ErrCodeInvalidArguments, "no symbols provided")
	}

	var quotes []models.Quote
	path := "/quote/" + strings.Join(upper(symbols), ",")
	if err := c.get(ctx, path, nil, &quotes); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("quotes", len(quotes)).Msg("FMP quotes retrieved")
	return quotes, nil
}

// GetProfile retrieves company profiles for the given symbols
func (c *Client) GetProfile(ctx context.Context, symbols []string) ([]models.CompanyProfile, error) {
	if len(symbols) == 0 {
		return nil, models.NewProviderError(models.ErrCodeInvalidArguments, "no symbols provided")
	}

	var profiles []models.CompanyProfile
	path := "/profile/" + strings.Join(upper(symbols), ",")
	if err := c.get(ctx, path, nil, &profiles); err != nil {
		return nil, err
	}

	return profiles, nil
}

// GetNews retrieves stock news, optionally filtered by symbols
func (c *Client) GetNews(ctx context.Context, symbols []string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	if len(symbols) > 0 {
		params.Set("tickers", strings.Join(upper(symbols), ","))
	}

	var news []models.NewsItem
	if err := c.get(ctx, "/stock_news", params, &news); err != nil {
		return nil, err
	}

	return news, nil
}

// GetMacro retrieves an economic indicator series for a country
func (c *Client) GetMacro(ctx context.Context, indicator, country string) ([]models.MacroPoint, error) {
	if indicator == "" {
		return nil, models.NewProviderError(models.ErrCodeInvalidArguments, "no indicator provided")
	}
	if country == "" {
		country = "US"
	}

	params := url.Values{}
	params.Set("name", indicator)
	params.Set("country", country)

	var points []models.MacroPoint
	if err := c.get(ctx, "/economic", params, &points); err != nil {
		return nil, err
	}

	// Provider omits the name on some series; stamp it so downstream grouping works.
	for i := range points {
		if points[i].Name == "" {
			points[i].Name = indicator
		}
	}

	return points, nil
}

func upper(symbols []string) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}

// Ensure Client implements FMPClient
var _ interfaces.FMPClient = (*Client)(nil)
