package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client posts JSON payloads to a single webhook URL.
type Client interface {
	Send(ctx context.Context, payload any) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// Options configures the webhook target.
type Options struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// NewClient builds a webhook client. A bearer token is attached when configured.
func NewClient(cfg Options) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &APIClient{httpClient: restyClient, url: cfg.URL}
}

// apiError covers the common shapes of webhook error bodies.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Send posts payload as JSON. Any status >= 400 is an error.
func (c *APIClient) Send(ctx context.Context, payload any) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
