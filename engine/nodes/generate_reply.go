package turnnode

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	promptx "github.com/thanakit-dev/leadpilot/engine/prompt"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

// Last history entries fed into reply generation.
const historyWindow = 10

const maxFollowUps = 3

// GenerateReply produces the outbound message: template-driven from a
// business result when one exists, otherwise free-text via the gateway
// seeded with retrieved knowledge. The assistant turn lands in history here.
func GenerateReply(ctx context.Context, in *TurnState, gateway contractx.Gateway) (*TurnState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}

	if in.Business != nil {
		in.Reply = renderBusinessReply(in.Config.BusinessReplyTemplates, in.Business)
		in.FollowUps = followUpQuestions(in.Config.FollowUpTemplates, in.Business)
	} else {
		contextText := ""
		if in.Retrieval != nil {
			contextText = in.Retrieval.ContextText
		}
		// History excludes the user message just appended; it rides along as
		// the live message instead.
		history := in.Conv.RecentHistory(historyWindow + 1)
		if n := len(history); n > 0 {
			history = history[:n-1]
		}

		reply, err := gateway.Complete(ctx, promptx.ForResponse(in.Config, contextText), history, in.Message)
		if err != nil {
			return nil, err
		}
		in.Reply = reply
	}

	in.Conv.Append(statex.RoleAssistant, in.Reply, in.Now)
	return in, nil
}

// renderBusinessReply fills the domain's template for the result type with
// {field} placeholders from the result data.
func renderBusinessReply(templates map[string]string, result *contractx.BusinessLogicResult) string {
	if !result.Success {
		if len(result.MissingFields) > 0 {
			return "I can work that out for you, I just need a couple more details."
		}
		if detail, ok := result.Data["detail"].(string); ok && detail != "" {
			return detail
		}
		return "I wasn't able to complete that calculation right now."
	}

	tpl, ok := templates[result.Type]
	if !ok {
		keys := make([]string, 0, len(result.Data))
		for k := range result.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, strings.ReplaceAll(k, "_", " ")+": "+formatValue(result.Data[k]))
		}
		return "Here's what I calculated. " + strings.Join(parts, ", ")
	}

	out := tpl
	for field, value := range result.Data {
		out = strings.ReplaceAll(out, "{"+field+"}", formatValue(value))
	}
	return strings.TrimSpace(out)
}

func followUpQuestions(templates map[string]string, result *contractx.BusinessLogicResult) []string {
	if result == nil || len(result.MissingFields) == 0 {
		return nil
	}
	questions := make([]string, 0, len(result.MissingFields))
	for _, field := range result.MissingFields {
		if len(questions) >= maxFollowUps {
			break
		}
		if q, ok := templates[field]; ok && q != "" {
			questions = append(questions, q)
			continue
		}
		questions = append(questions, "Could you share your "+strings.ReplaceAll(field, "_", " ")+"?")
	}
	return questions
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
