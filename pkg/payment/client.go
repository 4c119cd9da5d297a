package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Payment initiation modes
const (
	ModeDirect   = "direct"
	ModeRedirect = "redirect"
)

// StatusSuccess is the only transaction status treated as a successful payment
const StatusSuccess = "Transaction Successful"

// Config holds payment terminal settings
type Config struct {
	BaseURL     string
	Mode        string
	RedirectURL string
	MockAPI     bool
	Timeout     time.Duration
}

// Request is the payload sent to the payment terminal
type Request struct {
	Amount          int64  `json:"amount"`
	ClientReference string `json:"client_reference"`
}

// Response is the terminal's answer to a payment request
type Response struct {
	TransactionStatus string `json:"transaction_status"`
	ClientReference   string `json:"client_reference,omitempty"`
}

// Succeeded reports whether the terminal accepted the payment
func (r *Response) Succeeded() bool {
	return r != nil && r.TransactionStatus == StatusSuccess
}

// Client represents a payment terminal client
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a new payment terminal client
func NewClient(cfg Config) *Client {
	if cfg.Mode == "" {
		cfg.Mode = ModeDirect
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Mode returns the configured initiation mode
func (c *Client) Mode() string {
	return c.cfg.Mode
}

// MakePayment posts a payment request and waits for the terminal's status
func (c *Client) MakePayment(ctx context.Context, req Request) (*Response, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("invalid amount %d", req.Amount)
	}
	if c.cfg.MockAPI {
		return &Response{TransactionStatus: StatusSuccess, ClientReference: req.ClientReference}, nil
	}

	var resp Response
	if err := c.post(ctx, "/api/makepayment", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelTransaction asks the terminal to abandon the payment in progress
func (c *Client) CancelTransaction(ctx context.Context) error {
	if c.cfg.MockAPI {
		return nil
	}
	return c.post(ctx, "/api/canceltransaction", struct{}{}, nil)
}

// RedirectURL builds the terminal page the kiosk is sent to in redirect mode.
// The result arrives later on the payment callback.
func (c *Client) RedirectURL(req Request) (string, error) {
	if c.cfg.RedirectURL == "" {
		return "", errors.New("payment redirect url is not configured")
	}
	u, err := url.Parse(c.cfg.RedirectURL)
	if err != nil {
		return "", fmt.Errorf("invalid payment redirect url: %w", err)
	}
	q := u.Query()
	q.Set("amount", strconv.FormatInt(req.Amount, 10))
	q.Set("client_reference", req.ClientReference)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("payment terminal request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("payment terminal returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode payment response: %w", err)
	}
	return nil
}
