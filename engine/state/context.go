package state

import (
	"time"
)

// Domain names a configured vertical. Declared here so context state stays
// self-contained; the contract package aliases it.
type Domain string

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// History bounds: when a conversation exceeds maxHistory entries it is
// truncated to the most recent keepHistory, oldest first to go.
const (
	maxHistory  = 20
	keepHistory = 15
)

// Message is one turn of conversation history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationContext is the persistent per-(client,user) conversation state.
// Created on the first message, mutated by the orchestrator after every turn.
type ConversationContext struct {
	ClientID string `json:"client_id"`
	UserID   string `json:"user_id"`
	Domain   Domain `json:"domain"`

	// Stage is always a key of the domain's stage table or the domain default.
	Stage string `json:"stage"`

	// CustomerInfo accumulates extracted entities over time. Keys are never
	// dropped; re-supplied values win.
	CustomerInfo map[string]any `json:"customer_info,omitempty"`

	History []Message `json:"conversation_history,omitempty"`

	// LeadScore is the persisted lead score; it never decreases even though a
	// single turn's computed score may fluctuate.
	LeadScore float64 `json:"lead_score"`

	// EntityType holds the last detected product/service interest.
	EntityType string `json:"entity_type,omitempty"`

	// BusinessLogic is scratch space for in-flight multi-turn parameter
	// collection (partially collected quote fields and the like).
	BusinessLogic map[string]any `json:"business_logic,omitempty"`

	// LeadCaptured guards capture idempotence: once set, later turns at or
	// above threshold do not re-trigger capture.
	LeadCaptured bool `json:"lead_captured"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversationContext creates a fresh context at the domain's default stage.
func NewConversationContext(clientID, userID string, domain Domain, defaultStage string, now time.Time) *ConversationContext {
	return &ConversationContext{
		ClientID:      clientID,
		UserID:        userID,
		Domain:        domain,
		Stage:         defaultStage,
		CustomerInfo:  make(map[string]any, 8),
		BusinessLogic: make(map[string]any, 4),
		UpdatedAt:     now.UTC(),
	}
}

func (c *ConversationContext) Touch(now time.Time) {
	c.UpdatedAt = now.UTC()
}

// Append adds one history entry and enforces the history bound.
func (c *ConversationContext) Append(role, content string, now time.Time) {
	c.History = append(c.History, Message{
		Role:      role,
		Content:   content,
		Timestamp: now.UTC(),
	})
	if len(c.History) > maxHistory {
		c.History = append([]Message(nil), c.History[len(c.History)-keepHistory:]...)
	}
}

// RecentHistory returns the last n history entries.
func (c *ConversationContext) RecentHistory(n int) []Message {
	if n <= 0 || len(c.History) == 0 {
		return nil
	}
	if len(c.History) <= n {
		return c.History
	}
	return c.History[len(c.History)-n:]
}

// UserTurns counts user-role messages in history.
func (c *ConversationContext) UserTurns() int {
	n := 0
	for _, m := range c.History {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// MergeCustomerInfo applies a right-biased shallow merge: new values win,
// existing keys survive when not re-supplied.
func (c *ConversationContext) MergeCustomerInfo(entities map[string]any) {
	if len(entities) == 0 {
		return
	}
	if c.CustomerInfo == nil {
		c.CustomerInfo = make(map[string]any, len(entities))
	}
	for k, v := range entities {
		if v == nil {
			continue
		}
		c.CustomerInfo[k] = v
	}
}

// SetBusinessScratch records an in-flight business-logic value.
func (c *ConversationContext) SetBusinessScratch(key string, val any) {
	if c.BusinessLogic == nil {
		c.BusinessLogic = make(map[string]any, 4)
	}
	c.BusinessLogic[key] = val
}

// Clone returns a deep-enough copy for turn-scoped mutation: the orchestrator
// mutates the clone and persists it only on the success path.
func (c *ConversationContext) Clone() *ConversationContext {
	if c == nil {
		return nil
	}
	out := *c
	out.History = append([]Message(nil), c.History...)
	out.CustomerInfo = cloneMap(c.CustomerInfo)
	out.BusinessLogic = cloneMap(c.BusinessLogic)
	return &out
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
