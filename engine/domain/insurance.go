package domain

import (
	"context"
	"math"
	"strings"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	"github.com/thanakit-dev/leadpilot/engine/dispatch"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

const DomainInsurance contractx.Domain = "insurance"

// Insurance is the insurance vertical: quote-driven, scored on a 0-100 scale.
func Insurance() Pack {
	cfg := &Config{
		Domain:          DomainInsurance,
		DefaultStage:    "greeting",
		SystemPrompt:    "You are a licensed insurance advisor. Help customers understand coverage options, answer product questions, and guide them toward a personalized quote. Be precise about exclusions and never invent policy terms.",
		FallbackMessage: "I'm sorry, I couldn't process that just now. Could you rephrase, or tell me which insurance product you're interested in?",
		StageFlow: map[string]map[string]string{
			"greeting": {
				"INFORMATION":   "discovery",
				"QUOTE_REQUEST": "quoting",
				"COMPLAINT":     "support",
			},
			"discovery": {
				"QUOTE_REQUEST": "quoting",
				"OBJECTION":     "objection_handling",
				"COMPLAINT":     "support",
			},
			"quoting": {
				"ACCEPTANCE":  "closing",
				"OBJECTION":   "objection_handling",
				"INFORMATION": "quoting",
			},
			"objection_handling": {
				"ACCEPTANCE":    "closing",
				"QUOTE_REQUEST": "quoting",
			},
			"closing": {
				"INFORMATION": "closing",
			},
			"support": {
				"INFORMATION":   "discovery",
				"QUOTE_REQUEST": "quoting",
			},
		},
		AnalysisInstructions: "Intents: INFORMATION, QUOTE_REQUEST, OBJECTION, ACCEPTANCE, COMPLAINT. Entity types: life, health, auto, home. Extract age, coverage_amount, product_type when mentioned.",
		ResponseInstructions: "Quote premiums only from the calculation result. Mention one relevant rider at most.",
		BusinessLogicTriggers: map[string]string{
			"quote":    "premium_quote",
			"premium":  "premium_quote",
			"how much": "premium_quote",
		},
		LeadScoringWeights: map[string]float64{
			"quote_request":        25,
			"acceptance":           30,
			"information":          5,
			"objection":            10,
			"readiness_interested": 10,
			"readiness_ready":      25,
			"readiness_qualified":  35,
			"urgency_high":         15,
			"urgency_medium":       5,
			"business_logic_bonus": 10,
		},
		LeadCaptureThreshold: 70,
		MaxLeadScore:         100,

		ContextBuildingStrategy: StrategyProductFocus,
		PriorityTypes: []string{
			"premium_calculation", "product_info", "risk_factors", "objection_handling",
		},
		ProductQueryHints:        []string{"policy", "coverage", "premium", "insure", "plan"},
		QueryEnhancementKeywords: []string{"coverage terms", "premium calculation", "policy benefits"},
		ProductBaseValues: map[string]float64{
			"life":   1200,
			"health": 900,
			"auto":   450,
			"home":   600,
		},
		BusinessReplyTemplates: map[string]string{
			"premium_quote": "Based on what you've shared, your estimated {product_type} premium is {monthly_premium} per month ({annual_premium} per year). Want me to walk you through what's covered?",
		},
		FollowUpTemplates: map[string]string{
			"age":             "Could you tell me your age?",
			"coverage_amount": "What coverage amount are you looking for?",
			"product_type":    "Which product are you interested in: life, health, auto, or home?",
		},
	}

	return Pack{
		Config: cfg,
		Register: func(r *dispatch.Registry) {
			r.Register(DomainInsurance, "premium_quote", contractx.HandlerFunc(premiumQuote))
		},
	}
}

// Annual rate per unit of coverage by product type.
var premiumRates = map[string]float64{
	"life":   0.012,
	"health": 0.035,
	"auto":   0.045,
	"home":   0.008,
}

func premiumQuote(
	_ context.Context,
	_ string,
	conv *statex.ConversationContext,
	analysis contractx.AnalysisResult,
) (*contractx.BusinessLogicResult, error) {
	var missing []string

	product, ok := lookupString("product_type", conv, analysis)
	if !ok && analysis.EntityType != "" {
		product, ok = analysis.EntityType, true
	}
	if !ok {
		missing = append(missing, "product_type")
	}
	age, ok := lookupFloat("age", conv, analysis)
	if !ok {
		missing = append(missing, "age")
	}
	coverage, ok := lookupFloat("coverage_amount", conv, analysis)
	if !ok {
		missing = append(missing, "coverage_amount")
	}

	if len(missing) > 0 {
		return incompleteResult("premium_quote", missing), nil
	}

	rate, ok := premiumRates[strings.ToLower(product)]
	if !ok {
		return incompleteResult("premium_quote", []string{"product_type"}), nil
	}

	// Age loading: +2% per year past 30, capped at 2x.
	ageFactor := 1.0
	if age > 30 {
		ageFactor = math.Min(2.0, 1+(age-30)*0.02)
	}
	annual := coverage * rate * ageFactor
	monthly := annual / 12

	return &contractx.BusinessLogicResult{
		Type:       "premium_quote",
		Success:    true,
		Confidence: 0.9,
		Data: map[string]any{
			"product_type":    strings.ToLower(product),
			"age":             age,
			"coverage_amount": coverage,
			"annual_premium":  math.Round(annual*100) / 100,
			"monthly_premium": math.Round(monthly*100) / 100,
		},
	}, nil
}
