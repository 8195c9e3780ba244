package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRedisRESTStoreKey(t *testing.T) {
	t.Parallel()

	store := &RedisRESTStore{keyPrefix: defaultContextKeyPrefix}
	got, err := store.redisKey("acme", "u-42")
	if err != nil {
		t.Fatalf("redisKey() error = %v", err)
	}
	if got != "leadpilot:ctx:acme:u-42" {
		t.Fatalf("redisKey() = %q", got)
	}

	if _, err := store.redisKey("  ", "u-42"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestRedisRESTStorePutSetsTTL(t *testing.T) {
	t.Parallel()

	var gotCommand []any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewRedisRESTStore(
		RedisRESTConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
		WithTTL(time.Hour),
	)
	if err != nil {
		t.Fatalf("NewRedisRESTStore() error = %v", err)
	}

	conv := NewConversationContext("acme", "u-1", "insurance", "greeting", time.Now())
	if err := store.Put(context.Background(), conv); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if len(gotCommand) != 5 {
		t.Fatalf("unexpected command shape: %#v", gotCommand)
	}
	if gotCommand[0] != "SET" || gotCommand[1] != "leadpilot:ctx:acme:u-1" {
		t.Fatalf("unexpected SET command: %#v", gotCommand)
	}
	if gotCommand[3] != "EX" {
		t.Fatalf("expected EX argument, got %#v", gotCommand)
	}
	if seconds, ok := gotCommand[4].(float64); !ok || seconds != 3600 {
		t.Fatalf("expected 3600s TTL, got %v", gotCommand[4])
	}
}

func TestRedisRESTStoreGetRoundTrip(t *testing.T) {
	t.Parallel()

	seed := NewConversationContext("acme", "u-2", "resort", "welcome", time.Now())
	seed.Append(RoleUser, "any villas free?", time.Now())
	payload, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	encoded, err := json.Marshal(string(payload))
	if err != nil {
		t.Fatalf("marshal encoded seed: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		fmt.Fprintf(w, `{"result":%s}`, encoded)
	}))
	t.Cleanup(server.Close)

	store, err := NewRedisRESTStore(
		RedisRESTConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewRedisRESTStore() error = %v", err)
	}

	conv, err := store.Get(context.Background(), "acme", "u-2")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if conv.UserID != "u-2" || conv.Stage != "welcome" {
		t.Fatalf("round trip lost fields: %+v", conv)
	}
	if len(conv.History) != 1 {
		t.Fatalf("history lost in round trip: %+v", conv.History)
	}
}

func TestRedisRESTStoreGetMissAndError(t *testing.T) {
	t.Parallel()

	responses := []string{`{"result":null}`, `{"error":"WRONGTYPE"}`}
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		fmt.Fprint(w, responses[call])
		call++
	}))
	t.Cleanup(server.Close)

	store, err := NewRedisRESTStore(
		RedisRESTConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewRedisRESTStore() error = %v", err)
	}

	if _, err := store.Get(context.Background(), "acme", "u-3"); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("expected ErrContextNotFound, got %v", err)
	}
	if _, err := store.Get(context.Background(), "acme", "u-3"); err == nil {
		t.Fatal("expected upstream error to surface")
	}
}

func TestNewRedisRESTStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisRESTStore(RedisRESTConfig{URL: "", Token: "t"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := NewRedisRESTStore(RedisRESTConfig{URL: "https://example.upstash.io", Token: ""}); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := NewRedisRESTStore(RedisRESTConfig{URL: "https://example.upstash.io", Token: "t"}, WithTTL(-time.Second)); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestTTLSecondsRoundsUp(t *testing.T) {
	t.Parallel()

	if got := ttlSeconds(1500 * time.Millisecond); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := ttlSeconds(time.Millisecond); got != 1 {
		t.Fatalf("expected floor of 1, got %d", got)
	}
}
