// Package scoring computes lead scores, capture decisions, and the derived
// conversion/value estimates handed to the lead store.
package scoring

import (
	"math"
	"strings"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	domainx "github.com/thanakit-dev/leadpilot/engine/domain"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

// Engagement bonus tiers: flat, not linear.
const (
	engagementTier1Turns = 3
	engagementTier2Turns = 6
	engagementTier1Bonus = 5
	engagementTier2Bonus = 10
)

// Score sums the domain's declared weight factors for this turn and clamps
// the result to the domain's scale. Factors: intent weight, readiness tier,
// urgency tier, a tiered engagement bonus, and a one-time bonus when a
// business-logic handler engaged.
func Score(
	analysis contractx.AnalysisResult,
	conv *statex.ConversationContext,
	cfg *domainx.Config,
	businessEngaged bool,
) float64 {
	if cfg == nil {
		return 0
	}
	weights := cfg.LeadScoringWeights

	score := weights[strings.ToLower(analysis.PrimaryIntent)]
	score += weights["readiness_"+analysis.LeadReadiness]
	score += weights["urgency_"+analysis.UrgencyLevel]

	if conv != nil {
		turns := conv.UserTurns()
		switch {
		case turns > engagementTier2Turns:
			score += engagementTier2Bonus
		case turns > engagementTier1Turns:
			score += engagementTier1Bonus
		}
	}

	if businessEngaged {
		score += weights["business_logic_bonus"]
	}

	return clamp(score, 0, cfg.MaxLeadScore)
}

// ShouldCapture fires when the clamped score meets the domain threshold and
// the context has not already been captured: one capture per conversation.
func ShouldCapture(score float64, conv *statex.ConversationContext, cfg *domainx.Config) bool {
	if cfg == nil || conv == nil {
		return false
	}
	if conv.LeadCaptured {
		return false
	}
	return score >= cfg.LeadCaptureThreshold
}

// Per-source conversion bumps for the probability estimate.
var sourceBonus = map[string]float64{
	"whatsapp": 0.10,
	"webchat":  0.05,
	"referral": 0.15,
}

// ConversionProbability estimates how likely the lead converts. Deterministic
// and bounded at 0.95; consumed by the downstream lead store, not the engine.
func ConversionProbability(
	score float64,
	conv *statex.ConversationContext,
	analysis contractx.AnalysisResult,
	source string,
) float64 {
	p := 0.3
	p += score / 10 * 0.4
	p += sourceBonus[strings.ToLower(source)]

	if conv != nil && len(conv.BusinessLogic) > 0 {
		p += 0.2
	}
	if analysis.UrgencyLevel == contractx.UrgencyHigh {
		p += 0.15
	}

	signals := countBuyingSignals(conv, analysis)
	p += math.Min(0.2, float64(signals)*0.05)

	return clamp(p, 0, 0.95)
}

// Buying-signal phrases counted toward the conversion estimate.
var buyingSignalPhrases = []string{
	"how much", "price", "cost", "sign up", "buy", "book", "when can", "ready to",
}

func countBuyingSignals(conv *statex.ConversationContext, analysis contractx.AnalysisResult) int {
	signals := 0
	if analysis.LeadReadiness == contractx.ReadinessReady || analysis.LeadReadiness == contractx.ReadinessQualified {
		signals++
	}
	if analysis.RequiresBusinessLogic {
		signals++
	}
	if conv == nil {
		return signals
	}
	for _, msg := range conv.History {
		if msg.Role != statex.RoleUser {
			continue
		}
		lower := strings.ToLower(msg.Content)
		for _, phrase := range buyingSignalPhrases {
			if strings.Contains(lower, phrase) {
				signals++
				break
			}
		}
	}
	return signals
}

// Income-tier multipliers for the value estimate.
var incomeTierMultiplier = map[string]float64{
	"low":     0.7,
	"high":    1.5,
	"premium": 2.0,
}

// EstimatedValue estimates lead value: per-product base amount, scaled by the
// customer's income tier and the score.
func EstimatedValue(score float64, conv *statex.ConversationContext, cfg *domainx.Config) float64 {
	if cfg == nil || conv == nil {
		return 0
	}

	base, ok := cfg.ProductBaseValues[strings.ToLower(conv.EntityType)]
	if !ok {
		// No tracked product interest: average the domain's base amounts.
		if len(cfg.ProductBaseValues) == 0 {
			return 0
		}
		for _, v := range cfg.ProductBaseValues {
			base += v
		}
		base /= float64(len(cfg.ProductBaseValues))
	}

	multiplier := 1.0
	if tier, ok := conv.CustomerInfo["income_tier"].(string); ok {
		if m, ok := incomeTierMultiplier[strings.ToLower(tier)]; ok {
			multiplier = m
		}
	}

	return math.Round(base*multiplier*(score/10)*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
