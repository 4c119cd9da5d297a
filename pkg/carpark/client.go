// Package carpark is a client for the car park operator's API, which
// supplies car park metadata and the donor rankings shown on the kiosk.
package carpark

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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNotConfigured is returned when no operator API is configured
var ErrNotConfigured = errors.New("carpark api is not configured")

// Config holds operator API settings
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	MockAPI      bool
	Timeout      time.Duration
}

// Info describes a car park as reported by the operator
type Info struct {
	SiteID    string          `json:"siteId"`
	Name      string          `json:"name"`
	Spaces    int             `json:"spaces"`
	Available int             `json:"available"`
	Extra     json.RawMessage `json:"extra,omitempty"`
}

// Donor is one entry of the operator's donor ranking
type Donor struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Client represents an operator API client
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a new operator API client. Requests carry a
// client-credentials token that is fetched on first use and refreshed
// when it expires.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	base := &http.Client{Timeout: cfg.Timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	return &Client{
		cfg:    cfg,
		client: cc.Client(ctx),
	}
}

// CarparkInfo fetches metadata for a site
func (c *Client) CarparkInfo(ctx context.Context, siteID string) (*Info, error) {
	if c.cfg.MockAPI {
		return &Info{SiteID: siteID, Name: "Mock Car Park", Spaces: 120, Available: 42}, nil
	}
	var info Info
	if err := c.get(ctx, "/carparks/"+url.PathEscape(siteID), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// TopDonors fetches the operator's donor ranking for a site
func (c *Client) TopDonors(ctx context.Context, siteID string) ([]Donor, error) {
	if c.cfg.MockAPI {
		return []Donor{{Name: "Guest", Amount: 10}, {Name: "Sam", Amount: 5}}, nil
	}
	var donors []Donor
	if err := c.get(ctx, "/carparks/"+url.PathEscape(siteID)+"/top-donors", &donors); err != nil {
		return nil, err
	}
	return donors, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if c.cfg.BaseURL == "" {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
