// Package domain holds per-vertical configuration: conversation flow tables,
// prompt fragments, scoring weights, and retrieval hints. Config is data-only
// and serializable; handler code registers separately via RegisterHandlers.
package domain

import (
	"fmt"
	"strings"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	"github.com/thanakit-dev/leadpilot/engine/dispatch"
)

// Context-building strategies for retrieval query enrichment. A closed set:
// config picks a tag, not free-form code.
const (
	StrategyNone         = ""
	StrategyProductFocus = "product_focus"
	StrategyStageFocus   = "stage_focus"
)

// Config is one domain's complete configuration. The engine reads it and
// never mutates it.
type Config struct {
	Domain       contractx.Domain `json:"domain"`
	DefaultStage string           `json:"default_stage"`

	SystemPrompt    string `json:"system_prompt"`
	FallbackMessage string `json:"fallback_message"`

	// StageFlow maps stage -> intent -> next stage. Unknown intents never
	// error; they simply fail to progress the flow.
	StageFlow map[string]map[string]string `json:"stage_flow"`

	AnalysisInstructions string `json:"analysis_instructions,omitempty"`
	ResponseInstructions string `json:"response_instructions,omitempty"`

	// BusinessLogicTriggers maps message keywords to a business-logic type,
	// used as a classification hint in the analysis prompt.
	BusinessLogicTriggers map[string]string `json:"business_logic_triggers,omitempty"`

	// LeadScoringWeights holds named additive factors: intent names
	// (lowercased), "readiness_<tier>" and "urgency_<tier>" entries, and an
	// optional "business_logic_bonus".
	LeadScoringWeights   map[string]float64 `json:"lead_scoring_weights"`
	LeadCaptureThreshold float64            `json:"lead_capture_threshold"`

	// MaxLeadScore is the domain's declared scale (commonly 10 or 100). The
	// two scales coexist across domains and are not normalized.
	MaxLeadScore float64 `json:"max_lead_score"`

	// Retrieval configuration.
	ContextBuildingStrategy  string   `json:"context_building_strategy,omitempty"`
	PriorityTypes            []string `json:"priority_types,omitempty"`
	ProductQueryHints        []string `json:"product_query_hints,omitempty"`
	QueryEnhancementKeywords []string `json:"query_enhancement_keywords,omitempty"`

	// Lead valuation inputs.
	ProductBaseValues map[string]float64 `json:"product_base_values,omitempty"`

	// Reply templating for business-logic results and incomplete-input
	// follow-ups. Templates use {field} placeholders filled from result data.
	BusinessReplyTemplates map[string]string `json:"business_reply_templates,omitempty"`
	FollowUpTemplates      map[string]string `json:"follow_up_templates,omitempty"`
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", contractx.ErrConfigInvalid)
	}
	if strings.TrimSpace(string(c.Domain)) == "" {
		return fmt.Errorf("%w: domain name is required", contractx.ErrConfigInvalid)
	}
	if strings.TrimSpace(c.DefaultStage) == "" {
		return fmt.Errorf("%w: default stage is required", contractx.ErrConfigInvalid)
	}
	if strings.TrimSpace(c.SystemPrompt) == "" {
		return fmt.Errorf("%w: system prompt is required", contractx.ErrConfigInvalid)
	}
	if strings.TrimSpace(c.FallbackMessage) == "" {
		return fmt.Errorf("%w: fallback message is required", contractx.ErrConfigInvalid)
	}
	if c.MaxLeadScore <= 0 {
		return fmt.Errorf("%w: max lead score must be > 0", contractx.ErrConfigInvalid)
	}
	if c.LeadCaptureThreshold < 0 || c.LeadCaptureThreshold > c.MaxLeadScore {
		return fmt.Errorf("%w: capture threshold must be within [0, %v]", contractx.ErrConfigInvalid, c.MaxLeadScore)
	}
	// A stage table referencing stages it does not declare is deliberately
	// not rejected here: unknown targets surface as no-op transitions at
	// turn time, never as a crash.
	return nil
}

// Registrar is the handler-registration step a domain module performs at
// startup, kept separate from the data-only Config.
type Registrar func(*dispatch.Registry)

// Pack bundles a domain's config with its handler registration.
type Pack struct {
	Config   *Config
	Register Registrar
}

// BuiltinPacks returns the four shipped verticals.
func BuiltinPacks() []Pack {
	return []Pack{
		Insurance(),
		Resort(),
		Pension(),
		Retail(nil),
	}
}
