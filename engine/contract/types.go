package contract

import (
	"time"

	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

// Domain names a configured vertical (insurance, resort, pension, retail).
// The engine treats it as an opaque partition key.
type Domain = statex.Domain

// Urgency tiers as classified for one message.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// Lead readiness tiers.
const (
	ReadinessExploring  = "exploring"
	ReadinessInterested = "interested"
	ReadinessReady      = "ready"
	ReadinessQualified  = "qualified"
)

// AnalysisResult is the classification of a single inbound message. It is
// ephemeral: produced once per turn and never persisted.
type AnalysisResult struct {
	PrimaryIntent         string         `json:"primary_intent"`
	EntityType            string         `json:"entity_type,omitempty"`
	UrgencyLevel          string         `json:"urgency_level"`
	EmotionalState        string         `json:"emotional_state,omitempty"`
	RequiresBusinessLogic bool           `json:"requires_business_logic"`
	BusinessLogicType     string         `json:"business_logic_type,omitempty"`
	RequiresDatabaseQuery bool           `json:"requires_database_query"`
	LeadReadiness         string         `json:"lead_readiness"`
	NextBestAction        string         `json:"next_best_action,omitempty"`
	Confidence            float64        `json:"confidence"`
	ExtractedEntities     map[string]any `json:"extracted_entities,omitempty"`
}

// Priority levels carried in document metadata.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// DocumentMetadata describes one knowledge document. Domain is an immutable
// partition key: a document never matches a query issued for another domain.
type DocumentMetadata struct {
	Type             string   `json:"type"`
	Category         string   `json:"category,omitempty"`
	Domain           Domain   `json:"domain"`
	Priority         string   `json:"priority,omitempty"`
	ApplicableStages []string `json:"applicable_stages,omitempty"`
}

// Document is one entry of a domain's knowledge corpus.
type Document struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Embedding []float64        `json:"embedding,omitempty"`
	Metadata  DocumentMetadata `json:"metadata"`
}

// RankedDocument is a retrieval hit with its adjusted similarity.
type RankedDocument struct {
	Document
	Score float64 `json:"score"`
}

// RankedResult is the output of one knowledge retrieval.
type RankedResult struct {
	Documents      []RankedDocument `json:"documents"`
	ContextText    string           `json:"context_text"`
	Confidence     float64          `json:"confidence"`
	DomainSpecific map[string]any   `json:"domain_specific,omitempty"`
}

// BusinessLogicResult is the structured output of one dispatched handler.
// Incomplete results carry the missing field names instead of failing.
type BusinessLogicResult struct {
	Type          string         `json:"type"`
	Data          map[string]any `json:"data,omitempty"`
	Confidence    float64        `json:"confidence"`
	Success       bool           `json:"success"`
	NeedsFollowUp bool           `json:"needs_follow_up"`
	MissingFields []string       `json:"missing_fields,omitempty"`
}

// AIResponse is the full outcome of one processed turn.
type AIResponse struct {
	Message           string                      `json:"message"`
	Confidence        float64                     `json:"confidence"`
	LeadScore         float64                     `json:"lead_score"`
	ShouldCaptureLead bool                        `json:"should_capture_lead"`
	NextAction        string                      `json:"next_action,omitempty"`
	Context           *statex.ConversationContext `json:"context"`
	BusinessResult    *BusinessLogicResult        `json:"business_result,omitempty"`
	FollowUpQuestions []string                    `json:"follow_up_questions,omitempty"`
}

// LeadEvent is emitted to the lead store when a conversation qualifies.
type LeadEvent struct {
	ID                    string         `json:"id"`
	ClientID              string         `json:"client_id"`
	UserID                string         `json:"user_id"`
	Domain                Domain         `json:"domain"`
	ContactInfo           map[string]any `json:"contact_info,omitempty"`
	Source                string         `json:"source"`
	ProductInterest       string         `json:"product_interest,omitempty"`
	Score                 float64        `json:"score"`
	ConversionProbability float64        `json:"conversion_probability"`
	EstimatedValue        float64        `json:"estimated_value"`
	CapturedAt            time.Time      `json:"captured_at"`

	ConversationContext *statex.ConversationContext `json:"conversation_context,omitempty"`
}
