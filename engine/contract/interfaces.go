package contract

import (
	"context"

	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

// Gateway is the language-model provider contract. Classify returns the raw
// model text; parsing (and the conservative fallback on malformed output)
// happens inside the engine, never at the provider.
type Gateway interface {
	Classify(ctx context.Context, systemPrompt, userMessage string) (string, error)
	Embed(ctx context.Context, text string) ([]float64, error)
	Complete(ctx context.Context, systemPrompt string, history []statex.Message, userMessage string) (string, error)
}

// Handler computes a structured business result (quote, booking, projection)
// outside the LLM. Handlers decide for themselves whether enough information
// is present and return an incomplete result with MissingFields when not.
type Handler interface {
	Handle(ctx context.Context, message string, conv *statex.ConversationContext, analysis AnalysisResult) (*BusinessLogicResult, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, message string, conv *statex.ConversationContext, analysis AnalysisResult) (*BusinessLogicResult, error)

func (f HandlerFunc) Handle(ctx context.Context, message string, conv *statex.ConversationContext, analysis AnalysisResult) (*BusinessLogicResult, error) {
	return f(ctx, message, conv, analysis)
}

// LeadSink receives capture events for qualified conversations.
type LeadSink interface {
	Capture(ctx context.Context, event LeadEvent) error
}
