// Package oddsapi is a REST client for The Odds API v4.
package oddsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.the-odds-api.com/v4"

// APIError is a non-200 response that is neither an auth nor a quota failure.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oddsapi: HTTP %d: %s", e.StatusCode, e.Body)
}

// Client is the REST client for The Odds API. It remembers the request quota
// reported by the last response.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu    sync.RWMutex
	quota domain.Quota
}

// NewClient creates a new Odds API client.
//
// baseURL is the API root, e.g. "https://api.the-odds-api.com/v4".
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Quota returns the request quota from the most recent response.
func (c *Client) Quota() domain.Quota {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quota
}

// GetSports returns every sport the provider offers.
func (c *Client) GetSports(ctx context.Context) ([]domain.Sport, error) {
	body, err := c.doRequest(ctx, "/sports", nil)
	if err != nil {
		return nil, fmt.Errorf("oddsapi: get sports: %w", err)
	}

	var resp []APISport
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("oddsapi: decode sports: %w", err)
	}

	sports := make([]domain.Sport, len(resp))
	for i, s := range resp {
		sports[i] = ToSport(s)
	}
	return sports, nil
}

// GetOdds returns current odds for a sport as one event per market.
func (c *Client) GetOdds(ctx context.Context, sportKey string, p OddsParams) ([]domain.Event, error) {
	params := url.Values{}
	params.Set("regions", strings.Join(p.Regions, ","))
	markets := p.Markets
	if len(markets) == 0 {
		markets = []string{"h2h"}
	}
	params.Set("markets", strings.Join(markets, ","))
	params.Set("oddsFormat", "decimal")
	if len(p.Bookmakers) > 0 {
		params.Set("bookmakers", strings.Join(p.Bookmakers, ","))
	}

	path := fmt.Sprintf("/sports/%s/odds", url.PathEscape(sportKey))
	body, err := c.doRequest(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("oddsapi: get odds %s: %w", sportKey, err)
	}

	var resp []APIEvent
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("oddsapi: decode odds: %w", err)
	}
	return ToEvents(sportKey, resp), nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("api key not configured: %w", domain.ErrUnauthorized)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Never leak the api key embedded in the URL.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	c.updateQuota(resp.Header)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return respBody, nil
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("invalid api key: %w", domain.ErrUnauthorized)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limit exceeded: %w", domain.ErrQuotaExhausted)
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
}

func (c *Client) updateQuota(h http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, err := strconv.Atoi(h.Get("x-requests-remaining")); err == nil {
		c.quota.Remaining = &v
	}
	if v, err := strconv.Atoi(h.Get("x-requests-used")); err == nil {
		c.quota.Used = &v
	}
}
