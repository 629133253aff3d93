// Package wholesalemarket reads day-ahead exchange prices from the RTE
// wholesale market API.
package wholesalemarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/h2cf/auth"
	"github.com/kilianp07/h2cf/core/model"
)

// DefaultBaseURL is the production endpoint.
const DefaultBaseURL = "https://digital.iservices.rte-france.com/open_api/wholesale_market/v2/france_power_exchanges"

// Config configures the connector. Credentials are OAuth2 client
// credentials.
type Config struct {
	ClientID       string `json:"client_id"`
	ClientSecret   string `json:"client_secret"`
	AuthURL        string `json:"auth_url"`
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (c Config) credentials() auth.Conf {
	return auth.Conf{ClientID: c.ClientID, ClientSecret: c.ClientSecret, AuthURL: c.AuthURL}
}

type authorizer interface {
	SetAuthHeader(ctx context.Context, r *http.Request) error
	ForceRefresh(ctx context.Context) (string, error)
}

// Client fetches exchange prices.
type Client struct {
	auth    authorizer
	http    *http.Client
	baseURL string
}

// New returns a client authenticating with cfg's credentials.
func New(cfg Config, opts ...Option) (*Client, error) {
	creds := cfg.credentials()
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("wholesale market: %w", err)
	}
	opts = append([]Option{WithBaseURL(cfg.BaseURL)}, opts...)
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}
	return newClient(auth.NewClientCred(creds), opts...), nil
}

func newClient(a authorizer, opts ...Option) *Client {
	c := &Client{auth: a, http: &http.Client{Timeout: 30 * time.Second}, baseURL: DefaultBaseURL}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch retrieves the exchange data between start and end. A 401 answer
// refreshes the token and retries once.
func (c *Client) Fetch(ctx context.Context, start, end time.Time) (*Response, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	q := url.Values{}
	q.Set("start_date", start.Format(time.RFC3339))
	q.Set("end_date", end.Format(time.RFC3339))
	u := c.baseURL + "?" + q.Encode()

	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		if _, err := c.auth.ForceRefresh(ctx); err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		if resp, err = c.get(ctx, u); err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.auth.SetAuthHeader(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to set auth header: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// Prices implements connectors.PriceSource.
func (c *Client) Prices(ctx context.Context, start, end time.Time) (*model.PriceSeries, error) {
	resp, err := c.Fetch(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return resp.Hourly(start, end)
}
