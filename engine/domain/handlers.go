package domain

import (
	"fmt"
	"strconv"
	"strings"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

// lookupString resolves a named field from this turn's extracted entities
// first, then from accumulated customer info.
func lookupString(field string, conv *statex.ConversationContext, analysis contractx.AnalysisResult) (string, bool) {
	if v, ok := analysis.ExtractedEntities[field]; ok {
		if s := asString(v); s != "" {
			return s, true
		}
	}
	if conv != nil {
		if v, ok := conv.CustomerInfo[field]; ok {
			if s := asString(v); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func lookupFloat(field string, conv *statex.ConversationContext, analysis contractx.AnalysisResult) (float64, bool) {
	if v, ok := analysis.ExtractedEntities[field]; ok {
		if f, ok := asFloat(v); ok {
			return f, true
		}
	}
	if conv != nil {
		if v, ok := conv.CustomerInfo[field]; ok {
			if f, ok := asFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return ""
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// incompleteResult builds the incomplete-input shape: success=false semantics
// with an explicit missing-fields list instead of an error.
func incompleteResult(resultType string, missing []string) *contractx.BusinessLogicResult {
	return &contractx.BusinessLogicResult{
		Type:          resultType,
		Success:       false,
		NeedsFollowUp: true,
		Confidence:    0.3,
		MissingFields: missing,
		Data: map[string]any{
			"missing_fields": missing,
		},
	}
}
