// Package orchestrator composes the per-turn pipeline: analyze, dispatch or
// retrieve, respond, advance, score, persist.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	"github.com/thanakit-dev/leadpilot/engine/dispatch"
	turnnode "github.com/thanakit-dev/leadpilot/engine/nodes"
	"github.com/thanakit-dev/leadpilot/engine/retrieval"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

var (
	ErrInvalidMessage = turnnode.ErrInvalidMessage
	ErrInvalidClient  = turnnode.ErrInvalidClient
	ErrInvalidUser    = turnnode.ErrInvalidUser
	ErrMissingConfig  = turnnode.ErrMissingConfig
)

// Confidence reported on the fallback reply.
const fallbackConfidence = 0.1

// Orchestrator turns one inbound message into an AIResponse. It is
// request-scoped and stateless apart from the injected store and the
// retrieval engine's caches.
type Orchestrator struct {
	store     statex.Store
	gateway   contractx.Gateway
	retriever *retrieval.Engine
	registry  *dispatch.Registry
	sink      contractx.LeadSink

	graphRunner compose.Runnable[turnnode.TurnRequest, *contractx.AIResponse]

	now func() time.Time
}

func New(
	store statex.Store,
	gateway contractx.Gateway,
	retriever *retrieval.Engine,
	registry *dispatch.Registry,
	sink contractx.LeadSink,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if gateway == nil {
		return nil, errors.New("llm gateway is required")
	}
	if retriever == nil {
		return nil, errors.New("retrieval engine is required")
	}
	if registry == nil {
		registry = dispatch.NewRegistry()
	}

	o := &Orchestrator{
		store:     store,
		gateway:   gateway,
		retriever: retriever,
		registry:  registry,
		sink:      sink,
		now:       time.Now,
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// ProcessMessage runs one full turn. Every pipeline failure surfaces as the
// domain's fallback reply rather than an error, with two exceptions: request
// validation errors (a caller bug) and embedding failures, the one path
// allowed to bubble hard.
func (o *Orchestrator) ProcessMessage(ctx context.Context, req turnnode.TurnRequest) (*contractx.AIResponse, error) {
	out, err := o.graphRunner.Invoke(ctx, req)
	if err == nil {
		return out, nil
	}

	if isRequestError(err) || errors.Is(err, contractx.ErrEmbedding) || errors.Is(err, contractx.ErrConfigInvalid) {
		return nil, err
	}

	log.Error().
		Err(err).
		Str("client_id", req.ClientID).
		Str("user_id", req.UserID).
		Msg("turn failed, returning fallback reply")

	// No context rides along: the stored context was never mutated.
	return &contractx.AIResponse{
		Message:           req.Config.FallbackMessage,
		Confidence:        fallbackConfidence,
		LeadScore:         0,
		ShouldCaptureLead: false,
	}, nil
}

func isRequestError(err error) bool {
	return errors.Is(err, ErrInvalidMessage) ||
		errors.Is(err, ErrInvalidClient) ||
		errors.Is(err, ErrInvalidUser) ||
		errors.Is(err, ErrMissingConfig)
}
