package leadstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
)

func sampleEvent() contractx.LeadEvent {
	return contractx.LeadEvent{
		ID:                    "evt-1",
		ClientID:              "acme",
		UserID:                "u-1",
		Domain:                "insurance",
		ContactInfo:           map[string]any{"name": "Mali"},
		Source:                "webchat",
		ProductInterest:       "life",
		Score:                 82,
		ConversionProbability: 0.8,
		EstimatedValue:        960,
		CapturedAt:            time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWebhookSinkDeliversEvent(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotEvent contractx.LeadEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotEvent); err != nil {
			t.Errorf("decode event: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	sink, err := NewWebhookSink(WebhookConfig{URL: server.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("NewWebhookSink() error = %v", err)
	}

	if err := sink.Capture(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if gotEvent.ID != "evt-1" || gotEvent.Score != 82 {
		t.Fatalf("event lost fields: %+v", gotEvent)
	}
}

func TestWebhookSinkNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	sink, err := NewWebhookSink(WebhookConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("NewWebhookSink() error = %v", err)
	}
	if err := sink.Capture(context.Background(), sampleEvent()); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestNewWebhookSinkValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewWebhookSink(WebhookConfig{URL: "   "}); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewWebhookSink(WebhookConfig{URL: "not a url"}); err == nil {
		t.Fatal("expected error for malformed url")
	}
}
