package domain

import (
	"context"
	"math"
	"strings"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	"github.com/thanakit-dev/leadpilot/engine/dispatch"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

const DomainResort contractx.Domain = "resort"

// Resort is the hospitality vertical: booking-driven, scored on a 0-10 scale.
func Resort() Pack {
	cfg := &Config{
		Domain:          DomainResort,
		DefaultStage:    "welcome",
		SystemPrompt:    "You are a resort reservation assistant. Help guests pick rooms, explain amenities and seasonal offers, and guide them toward a booking. Keep replies warm and short.",
		FallbackMessage: "Apologies, something went wrong on my side. Could you tell me again what dates or room you had in mind?",
		StageFlow: map[string]map[string]string{
			"welcome": {
				"INFORMATION":     "exploring",
				"BOOKING_REQUEST": "booking",
			},
			"exploring": {
				"BOOKING_REQUEST": "booking",
				"OBJECTION":       "offers",
			},
			"booking": {
				"ACCEPTANCE":  "confirming",
				"OBJECTION":   "offers",
				"INFORMATION": "booking",
			},
			"offers": {
				"BOOKING_REQUEST": "booking",
				"ACCEPTANCE":      "confirming",
			},
			"confirming": {
				"INFORMATION": "confirming",
			},
		},
		AnalysisInstructions: "Intents: INFORMATION, BOOKING_REQUEST, OBJECTION, ACCEPTANCE. Entity types: villa, suite, bungalow. Extract nights, guests, room_type, check_in when mentioned.",
		ResponseInstructions: "Always mention the current seasonal offer when quoting a price.",
		BusinessLogicTriggers: map[string]string{
			"book":         "booking_quote",
			"reserve":      "booking_quote",
			"price":        "booking_quote",
			"availability": "booking_quote",
		},
		LeadScoringWeights: map[string]float64{
			"booking_request":      3,
			"acceptance":           4,
			"information":          0.5,
			"readiness_interested": 1,
			"readiness_ready":      2.5,
			"readiness_qualified":  3.5,
			"urgency_high":         1.5,
			"urgency_medium":       0.5,
			"business_logic_bonus": 1,
		},
		LeadCaptureThreshold: 7,
		MaxLeadScore:         10,

		ContextBuildingStrategy: StrategyStageFocus,
		PriorityTypes: []string{
			"room_rates", "amenities", "seasonal_offers", "policies",
		},
		ProductQueryHints:        []string{"room", "villa", "suite", "night", "stay"},
		QueryEnhancementKeywords: []string{"room rates", "availability", "amenities"},
		ProductBaseValues: map[string]float64{
			"villa":    950,
			"suite":    520,
			"bungalow": 380,
		},
		BusinessReplyTemplates: map[string]string{
			"booking_quote": "A {room_type} for {guests} guests, {nights} nights, comes to {total_price} in total ({nightly_rate} per night). Shall I hold it for you?",
		},
		FollowUpTemplates: map[string]string{
			"nights":    "How many nights are you planning to stay?",
			"guests":    "How many guests will be joining?",
			"room_type": "Would you prefer a villa, suite, or bungalow?",
		},
	}

	return Pack{
		Config: cfg,
		Register: func(r *dispatch.Registry) {
			r.Register(DomainResort, "booking_quote", contractx.HandlerFunc(bookingQuote))
		},
	}
}

var nightlyRates = map[string]float64{
	"villa":    950,
	"suite":    520,
	"bungalow": 380,
}

func bookingQuote(
	_ context.Context,
	_ string,
	conv *statex.ConversationContext,
	analysis contractx.AnalysisResult,
) (*contractx.BusinessLogicResult, error) {
	var missing []string

	room, ok := lookupString("room_type", conv, analysis)
	if !ok && analysis.EntityType != "" {
		room, ok = analysis.EntityType, true
	}
	if !ok {
		missing = append(missing, "room_type")
	}
	nights, ok := lookupFloat("nights", conv, analysis)
	if !ok || nights <= 0 {
		missing = append(missing, "nights")
	}
	guests, ok := lookupFloat("guests", conv, analysis)
	if !ok || guests <= 0 {
		missing = append(missing, "guests")
	}

	if len(missing) > 0 {
		return incompleteResult("booking_quote", missing), nil
	}

	rate, ok := nightlyRates[strings.ToLower(room)]
	if !ok {
		return incompleteResult("booking_quote", []string{"room_type"}), nil
	}

	// Third guest onward adds 15% per head.
	guestFactor := 1.0
	if guests > 2 {
		guestFactor = 1 + (guests-2)*0.15
	}
	total := rate * nights * guestFactor

	return &contractx.BusinessLogicResult{
		Type:       "booking_quote",
		Success:    true,
		Confidence: 0.9,
		Data: map[string]any{
			"room_type":    strings.ToLower(room),
			"nights":       nights,
			"guests":       guests,
			"nightly_rate": rate,
			"total_price":  math.Round(total*100) / 100,
		},
	}, nil
}
