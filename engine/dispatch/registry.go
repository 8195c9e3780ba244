// Package dispatch routes classified business-logic intents to domain-supplied
// handlers. The engine ships with zero built-in handlers; each domain module
// registers its own at startup.
package dispatch

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

// Key identifies one handler registration. Typed rather than a concatenated
// string so two domains can reuse intent names without collisions.
type Key struct {
	Domain contractx.Domain
	Intent string
}

// Registry maps (domain, intent) pairs to handlers. Registration happens at
// startup; lookups are turn-time.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Key]contractx.Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Key]contractx.Handler)}
}

// Register binds a handler. Later registrations for the same key win.
func (r *Registry) Register(domain contractx.Domain, intent string, h contractx.Handler) {
	if h == nil {
		return
	}
	intent = normalizeIntent(intent)
	if domain == "" || intent == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[Key{Domain: domain, Intent: intent}] = h
}

// Len reports the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Dispatch runs at most one handler for the message. A missing registration,
// a handler error, and a handler panic all yield nil: the orchestrator falls
// through to retrieval-backed response generation and one broken domain never
// takes the shared engine down.
func (r *Registry) Dispatch(
	ctx context.Context,
	domain contractx.Domain,
	intent string,
	message string,
	conv *statex.ConversationContext,
	analysis contractx.AnalysisResult,
) (result *contractx.BusinessLogicResult) {
	intent = normalizeIntent(intent)

	r.mu.RLock()
	h, ok := r.handlers[Key{Domain: domain, Intent: intent}]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("domain", string(domain)).
				Str("intent", intent).
				Any("panic", rec).
				Msg("business logic handler panicked")
			result = nil
		}
	}()

	out, err := h.Handle(ctx, message, conv, analysis)
	if err != nil {
		log.Warn().
			Err(err).
			Str("domain", string(domain)).
			Str("intent", intent).
			Msg("business logic handler failed")
		return nil
	}
	return out
}

func normalizeIntent(intent string) string {
	return strings.ToLower(strings.TrimSpace(intent))
}
