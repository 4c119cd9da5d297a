package receipt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sender delivers receipts by email
type Sender interface {
	SendReceipt(ctx context.Context, email string, r Receipt) (string, error)
}

// Config selects and configures a Sender
type Config struct {
	Gateway string
	BaseURL string
	APIKey  string
	From    string
}

// NewSender returns the gateway named in cfg, falling back to a mock
func NewSender(cfg Config, logger *zap.Logger) Sender {
	switch strings.ToLower(cfg.Gateway) {
	case "http":
		return NewHTTPSender(cfg)
	default:
		return NewMockSender("receipt", logger)
	}
}

// HTTPSender posts receipts to a transactional mail API
type HTTPSender struct {
	BaseURL    string
	APIKey     string
	From       string
	httpClient *http.Client
}

// MockSender logs receipts instead of sending them
type MockSender struct {
	Name   string
	logger *zap.Logger
}

// NewHTTPSender creates a new mail API sender
func NewHTTPSender(cfg Config) *HTTPSender {
	return &HTTPSender{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:  cfg.APIKey,
		From:    cfg.From,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewMockSender creates a new mock sender
func NewMockSender(name string, logger *zap.Logger) *MockSender {
	return &MockSender{Name: name, logger: logger}
}

// SendReceipt simulates sending a receipt
func (s *MockSender) SendReceipt(_ context.Context, email string, r Receipt) (string, error) {
	msgID := fmt.Sprintf("%s-MOCK-MSG-%d", strings.ToUpper(s.Name), time.Now().UnixNano())
	s.logger.Info("Simulating receipt email",
		zap.String("to", email),
		zap.String("registration", r.RegistrationNumber),
		zap.String("message_id", msgID),
	)
	return msgID, nil
}

type mailAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type mailRequest struct {
	From        string           `json:"from"`
	To          string           `json:"to"`
	Subject     string           `json:"subject"`
	Text        string           `json:"text"`
	Attachments []mailAttachment `json:"attachments"`
}

// SendReceipt renders the receipt and posts it as a PDF attachment
func (s *HTTPSender) SendReceipt(ctx context.Context, email string, r Receipt) (string, error) {
	pdf, err := Render(r)
	if err != nil {
		return "", err
	}

	body := mailRequest{
		From:    s.From,
		To:      email,
		Subject: fmt.Sprintf("Your parking receipt for %s", r.RegistrationNumber),
		Text: fmt.Sprintf("Thank you for parking at %s. Your stay ends at %s.",
			orDefault(r.SiteName, "our car park"), r.ParkingEndTime),
		Attachments: []mailAttachment{{
			Filename:    "receipt.pdf",
			ContentType: "application/pdf",
			Content:     base64.StdEncoding.EncodeToString(pdf),
		}},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/send", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.APIKey))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var response struct {
		MessageID string `json:"messageId"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return response.MessageID, nil
}
