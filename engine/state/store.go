package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrContextNotFound = errors.New("conversation context not found")
	ErrNilContext      = errors.New("conversation context is nil")
	ErrInvalidKey      = errors.New("client id or user id is empty")
)

// Store is the conversation-state persistence contract injected into the
// orchestrator. Backing implementations are swappable adapters.
type Store interface {
	Get(ctx context.Context, clientID, userID string) (*ConversationContext, error)
	Put(ctx context.Context, conv *ConversationContext) error
	Clear(ctx context.Context, clientID, userID string) error
	// Evict drops entries idle longer than olderThan and reports how many.
	Evict(ctx context.Context, olderThan time.Duration) (int, error)
}

func storeKey(clientID, userID string) (string, error) {
	clientID = strings.TrimSpace(clientID)
	userID = strings.TrimSpace(userID)
	if clientID == "" || userID == "" {
		return "", ErrInvalidKey
	}
	return clientID + ":" + userID, nil
}

// MemoryStore keeps contexts in a process-lifetime map. Concurrent turns for
// the same (client,user) race last-write-wins on the entry; that is the
// accepted behavior, not a serialization guarantee.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*ConversationContext
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*ConversationContext)}
}

func (s *MemoryStore) Get(_ context.Context, clientID, userID string) (*ConversationContext, error) {
	key, err := storeKey(clientID, userID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.data[key]
	if !ok {
		return nil, ErrContextNotFound
	}
	return conv.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, conv *ConversationContext) error {
	if conv == nil {
		return ErrNilContext
	}
	key, err := storeKey(conv.ClientID, conv.UserID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = conv.Clone()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, clientID, userID string) error {
	key, err := storeKey(clientID, userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Evict(_ context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-olderThan)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for key, conv := range s.data {
		if conv.UpdatedAt.Before(cutoff) {
			delete(s.data, key)
			evicted++
		}
	}
	return evicted, nil
}

// Len reports the number of stored contexts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
