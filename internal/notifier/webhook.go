package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultWebhookTimeout = 10 * time.Second

type webhookMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// WebhookSender posts composed notifications as JSON to an HTTP endpoint,
// for deployments without an SMTP account.
type WebhookSender struct {
	client   *resty.Client
	endpoint string
}

func NewWebhookSender(endpoint string) (*WebhookSender, error) {
	client := resty.New()
	client.SetTimeout(defaultWebhookTimeout)
	client.SetRetryCount(0)

	return NewWebhookSenderWithClient(endpoint, client)
}

func NewWebhookSenderWithClient(endpoint string, client *resty.Client) (*WebhookSender, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("webhook endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid webhook endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultWebhookTimeout)
	}

	return &WebhookSender{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

func (s *WebhookSender) Send(ctx context.Context, subject string, body string) error {
	response, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookMessage{Subject: subject, Body: body}).
		Post(s.endpoint)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", statusCode)
	}
	return nil
}
