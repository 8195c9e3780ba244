package gateway

import (
	"errors"
	"testing"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	openrouterx "github.com/thanakit-dev/leadpilot/pkg/openrouter"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	cfg := openrouterx.Config{
		ChatModel:  "openai/gpt-4o-mini",
		EmbedModel: "openai/text-embedding-3-small",
	}

	if _, err := New(nil, cfg); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for nil client, got %v", err)
	}

	api := openrouterx.NewClient(openrouterx.Config{APIKey: "test-key"})
	if api == nil {
		t.Fatal("expected client for non-empty key")
	}

	bad := cfg
	bad.ChatModel = "  "
	if _, err := New(api, bad); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing chat model, got %v", err)
	}

	bad = cfg
	bad.EmbedModel = ""
	if _, err := New(api, bad); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing embed model, got %v", err)
	}

	client, err := New(api, cfg)
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if client.maxTokens != 2000 {
		t.Fatalf("expected default max tokens, got %d", client.maxTokens)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Parallel()

	if c := openrouterx.NewClient(openrouterx.Config{}); c != nil {
		t.Fatal("expected nil client without api key")
	}
}
