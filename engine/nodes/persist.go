package turnnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

// PersistContext writes the turn's mutated context back to the store, then
// delivers any staged capture event. This is the single point where turn
// mutations become visible; delivery waits for a successful Put so the sink
// never sees an event whose LeadCaptured flag failed to stick. Sink failures
// are logged, not fatal: the reply still ships.
func PersistContext(ctx context.Context, in *TurnState, store statex.Store, sink contractx.LeadSink) (*TurnState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}
	if err := store.Put(ctx, in.Conv); err != nil {
		return nil, err
	}

	if in.CaptureEvent != nil && sink != nil {
		if err := sink.Capture(ctx, *in.CaptureEvent); err != nil {
			log.Warn().
				Err(err).
				Str("domain", string(in.Config.Domain)).
				Str("user_id", in.UserID).
				Msg("lead capture delivery failed")
		}
	}
	return in, nil
}

// FinalizeResponse assembles the AIResponse from the finished turn.
func FinalizeResponse(in *TurnState) (*contractx.AIResponse, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}

	confidence := in.Analysis.Confidence
	switch {
	case in.Business != nil:
		confidence = in.Business.Confidence
	case in.Retrieval != nil:
		confidence = in.Retrieval.Confidence
	}

	return &contractx.AIResponse{
		Message:           in.Reply,
		Confidence:        confidence,
		LeadScore:         in.Score,
		ShouldCaptureLead: in.Capture,
		NextAction:        in.Analysis.NextBestAction,
		Context:           in.Conv,
		BusinessResult:    in.Business,
		FollowUpQuestions: in.FollowUps,
	}, nil
}
