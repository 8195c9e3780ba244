package domain

import (
	"context"
	"math"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	"github.com/thanakit-dev/leadpilot/engine/dispatch"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

const DomainPension contractx.Domain = "pension"

// Pension is the retirement-planning vertical, scored on a 0-100 scale.
func Pension() Pack {
	cfg := &Config{
		Domain:          DomainPension,
		DefaultStage:    "intro",
		SystemPrompt:    "You are a pension planning consultant. Explain contribution schemes, tax treatment, and projected outcomes. Never promise returns; always present projections as estimates.",
		FallbackMessage: "Sorry, I wasn't able to handle that. Would you like a retirement projection, or information about contribution plans?",
		StageFlow: map[string]map[string]string{
			"intro": {
				"INFORMATION":        "education",
				"PROJECTION_REQUEST": "projecting",
			},
			"education": {
				"PROJECTION_REQUEST": "projecting",
				"OBJECTION":          "reassurance",
			},
			"projecting": {
				"ACCEPTANCE":  "enrollment",
				"OBJECTION":   "reassurance",
				"INFORMATION": "projecting",
			},
			"reassurance": {
				"PROJECTION_REQUEST": "projecting",
				"ACCEPTANCE":         "enrollment",
			},
			"enrollment": {
				"INFORMATION": "enrollment",
			},
		},
		AnalysisInstructions: "Intents: INFORMATION, PROJECTION_REQUEST, OBJECTION, ACCEPTANCE. Extract age, retirement_age, monthly_contribution, current_savings when mentioned.",
		ResponseInstructions: "Always state that projections assume 5% nominal annual growth and are not guaranteed.",
		BusinessLogicTriggers: map[string]string{
			"projection":  "retirement_projection",
			"retire":      "retirement_projection",
			"pension pot": "retirement_projection",
		},
		LeadScoringWeights: map[string]float64{
			"projection_request":   20,
			"acceptance":           30,
			"information":          5,
			"readiness_interested": 10,
			"readiness_ready":      20,
			"readiness_qualified":  30,
			"urgency_high":         10,
			"urgency_medium":       5,
			"business_logic_bonus": 10,
		},
		LeadCaptureThreshold: 65,
		MaxLeadScore:         100,

		ContextBuildingStrategy: StrategyNone,
		PriorityTypes: []string{
			"contribution_schemes", "tax_rules", "projection_assumptions", "faq",
		},
		ProductBaseValues: map[string]float64{
			"personal":  2500,
			"workplace": 1800,
			"sipp":      4000,
		},
		BusinessReplyTemplates: map[string]string{
			"retirement_projection": "Contributing {monthly_contribution} monthly until age {retirement_age}, your projected pot is {projected_pot} (assuming 5% nominal growth, not guaranteed). Want to see how a higher contribution changes this?",
		},
		FollowUpTemplates: map[string]string{
			"age":                  "May I ask your current age?",
			"retirement_age":       "At what age would you like to retire?",
			"monthly_contribution": "How much could you contribute monthly?",
		},
	}

	return Pack{
		Config: cfg,
		Register: func(r *dispatch.Registry) {
			r.Register(DomainPension, "retirement_projection", contractx.HandlerFunc(retirementProjection))
		},
	}
}

const assumedAnnualGrowth = 0.05

func retirementProjection(
	_ context.Context,
	_ string,
	conv *statex.ConversationContext,
	analysis contractx.AnalysisResult,
) (*contractx.BusinessLogicResult, error) {
	var missing []string

	age, ok := lookupFloat("age", conv, analysis)
	if !ok {
		missing = append(missing, "age")
	}
	retirementAge, ok := lookupFloat("retirement_age", conv, analysis)
	if !ok {
		missing = append(missing, "retirement_age")
	}
	monthly, ok := lookupFloat("monthly_contribution", conv, analysis)
	if !ok {
		missing = append(missing, "monthly_contribution")
	}

	if len(missing) > 0 {
		return incompleteResult("retirement_projection", missing), nil
	}
	if retirementAge <= age {
		return incompleteResult("retirement_projection", []string{"retirement_age"}), nil
	}

	current, _ := lookupFloat("current_savings", conv, analysis)

	// Future value of current savings plus a monthly annuity, compounded
	// monthly at the assumed nominal rate.
	months := (retirementAge - age) * 12
	monthlyRate := assumedAnnualGrowth / 12
	growth := math.Pow(1+monthlyRate, months)
	pot := current*growth + monthly*((growth-1)/monthlyRate)

	return &contractx.BusinessLogicResult{
		Type:       "retirement_projection",
		Success:    true,
		Confidence: 0.85,
		Data: map[string]any{
			"age":                  age,
			"retirement_age":       retirementAge,
			"monthly_contribution": monthly,
			"current_savings":      current,
			"projected_pot":        math.Round(pot),
			"assumed_growth":       assumedAnnualGrowth,
		},
	}, nil
}
