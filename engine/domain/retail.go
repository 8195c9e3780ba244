package domain

import (
	"context"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	"github.com/thanakit-dev/leadpilot/engine/dispatch"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

const DomainRetail contractx.Domain = "retail"

// OrderLookup is the optional data-adapter handle for the retail vertical.
// Registration accepts nil; the handler then reports order lookups as
// unavailable instead of failing.
type OrderLookup interface {
	Lookup(ctx context.Context, orderID string) (map[string]any, error)
}

// Retail is the e-commerce vertical, scored on a 0-10 scale.
func Retail(orders OrderLookup) Pack {
	cfg := &Config{
		Domain:          DomainRetail,
		DefaultStage:    "browsing",
		SystemPrompt:    "You are a retail shopping assistant. Answer product questions, check order status, and suggest at most one complementary item per reply.",
		FallbackMessage: "Sorry, I hit a snag there. Could you repeat that, or share your order number if this is about an order?",
		StageFlow: map[string]map[string]string{
			"browsing": {
				"INFORMATION":   "considering",
				"ORDER_INQUIRY": "order_support",
				"PURCHASE":      "checkout",
			},
			"considering": {
				"PURCHASE":      "checkout",
				"OBJECTION":     "persuading",
				"ORDER_INQUIRY": "order_support",
			},
			"persuading": {
				"PURCHASE":    "checkout",
				"INFORMATION": "considering",
			},
			"order_support": {
				"INFORMATION": "browsing",
			},
			"checkout": {
				"INFORMATION": "checkout",
			},
		},
		AnalysisInstructions: "Intents: INFORMATION, PURCHASE, OBJECTION, ORDER_INQUIRY. Entity types: electronics, apparel, home_goods. Extract order_id, product_name when mentioned.",
		ResponseInstructions: "Suggest at most one complementary product. Never discount below listed price.",
		BusinessLogicTriggers: map[string]string{
			"order":    "order_status",
			"tracking": "order_status",
			"where is": "order_status",
		},
		LeadScoringWeights: map[string]float64{
			"purchase":             4,
			"information":          0.5,
			"objection":            1,
			"order_inquiry":        0.5,
			"readiness_interested": 1,
			"readiness_ready":      2.5,
			"readiness_qualified":  3,
			"urgency_high":         1,
			"urgency_medium":       0.5,
			"business_logic_bonus": 0.5,
		},
		LeadCaptureThreshold: 8,
		MaxLeadScore:         10,

		ContextBuildingStrategy: StrategyProductFocus,
		PriorityTypes: []string{
			"product_info", "shipping_policy", "returns", "promotions",
		},
		ProductQueryHints:        []string{"price", "stock", "size", "ship", "buy"},
		QueryEnhancementKeywords: []string{"product details", "availability", "shipping"},
		ProductBaseValues: map[string]float64{
			"electronics": 300,
			"apparel":     80,
			"home_goods":  150,
		},
		BusinessReplyTemplates: map[string]string{
			"order_status": "Order {order_id} is currently {status}. {detail}",
		},
		FollowUpTemplates: map[string]string{
			"order_id": "Could you share your order number?",
		},
	}

	return Pack{
		Config: cfg,
		Register: func(r *dispatch.Registry) {
			r.Register(DomainRetail, "order_status", contractx.HandlerFunc(orderStatus(orders)))
		},
	}
}

func orderStatus(orders OrderLookup) func(context.Context, string, *statex.ConversationContext, contractx.AnalysisResult) (*contractx.BusinessLogicResult, error) {
	return func(
		ctx context.Context,
		_ string,
		conv *statex.ConversationContext,
		analysis contractx.AnalysisResult,
	) (*contractx.BusinessLogicResult, error) {
		orderID, ok := lookupString("order_id", conv, analysis)
		if !ok {
			return incompleteResult("order_status", []string{"order_id"}), nil
		}

		if orders == nil {
			return &contractx.BusinessLogicResult{
				Type:       "order_status",
				Success:    false,
				Confidence: 0.4,
				Data: map[string]any{
					"order_id": orderID,
					"status":   "unknown",
					"detail":   "Order lookup is not connected for this client.",
				},
			}, nil
		}

		record, err := orders.Lookup(ctx, orderID)
		if err != nil {
			return nil, err
		}

		data := map[string]any{"order_id": orderID}
		for k, v := range record {
			data[k] = v
		}
		if _, ok := data["status"]; !ok {
			data["status"] = "unknown"
		}
		if _, ok := data["detail"]; !ok {
			data["detail"] = ""
		}

		return &contractx.BusinessLogicResult{
			Type:       "order_status",
			Success:    true,
			Confidence: 0.95,
			Data:       data,
		}, nil
	}
}
