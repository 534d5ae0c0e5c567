package smartsms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the Smart SMS BD API base URL.
	DefaultBaseURL = "https://smartsmsbd.com/api"

	sendWhatsAppPath = "/send/whatsapp"

	// priorityHigh asks the gateway to dispatch the message immediately.
	priorityHigh = "1"
)

// Client is a minimal HTTP client for the Smart SMS BD WhatsApp gateway.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secret     string
	account    string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests and proxies.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient constructs a Smart SMS BD client with sane defaults. The secret
// and account id come from configuration, never from source.
func NewClient(secret, account string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    DefaultBaseURL,
		secret:     secret,
		account:    account,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendWhatsApp submits a text message to the given recipient. The recipient
// is normalized first; ErrInvalidRecipient is returned without any network
// call when normalization fails. Success requires both an HTTP 200 response
// and a body status field of 200; anything else is an error carrying the
// body's message as detail.
func (c *Client) SendWhatsApp(ctx context.Context, recipient, message string) (*SendResult, error) {
	to, err := NormalizeRecipient(recipient)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("account", c.account)
	form.Set("recipient", to)
	form.Set("type", "text")
	form.Set("message", message)
	form.Set("priority", priorityHigh)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+sendWhatsAppPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response (http %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || apiResp.Status != 200 {
		detail := apiResp.Message
		if detail == "" {
			detail = resp.Status
		}
		log.Warn().
			Int("http_status", resp.StatusCode).
			Int("api_status", apiResp.Status).
			Str("detail", detail).
			Msg("smartsms send rejected")
		return nil, fmt.Errorf("smartsms: %s", detail)
	}

	var result SendResult
	if len(apiResp.Data) > 0 {
		// data may be a bare boolean on some endpoints; ignore decode failures.
		_ = json.Unmarshal(apiResp.Data, &result)
	}
	return &result, nil
}
