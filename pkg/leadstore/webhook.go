// Package leadstore delivers capture events to downstream lead stores.
package leadstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
)

type WebhookConfig struct {
	URL     string        `split_words:"true" required:"true"`
	Token   string        `split_words:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// WebhookSink POSTs each capture event as JSON to a configured endpoint.
type WebhookSink struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

var _ contractx.LeadSink = (*WebhookSink)(nil)

func NewWebhookSink(cfg WebhookConfig) (*WebhookSink, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, errors.New("webhook url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid webhook url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebhookSink{
		endpoint:   strings.TrimRight(endpoint, "/"),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func MustNewWebhookSink(cfg WebhookConfig) *WebhookSink {
	sink, err := NewWebhookSink(cfg)
	if err != nil {
		panic(err)
	}
	return sink
}

func (s *WebhookSink) Capture(ctx context.Context, event contractx.LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build lead request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver lead event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("lead webhook status=%d body=%s", resp.StatusCode, string(raw))
	}
	return nil
}
