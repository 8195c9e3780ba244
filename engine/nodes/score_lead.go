package turnnode

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	"github.com/thanakit-dev/leadpilot/engine/scoring"
)

// Contact fields lifted from customer info onto a capture event.
var contactInfoFields = []string{"name", "phone", "email"}

// ScoreLead computes this turn's lead score, folds it into the persisted
// score (monotonic non-decreasing), and decides capture. When capture fires
// the context is marked so later turns never re-capture, and the event is
// staged on the state; PersistContext delivers it once the marked context
// has been stored, so a failed write cannot strand a delivered event behind
// an unrecorded LeadCaptured flag.
func ScoreLead(ctx context.Context, in *TurnState) (*TurnState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}

	turnScore := scoring.Score(in.Analysis, in.Conv, in.Config, in.Business != nil)
	in.Score = turnScore
	if turnScore > in.Conv.LeadScore {
		in.Conv.LeadScore = turnScore
	}

	in.Capture = scoring.ShouldCapture(turnScore, in.Conv, in.Config)
	if !in.Capture {
		return in, nil
	}

	in.Conv.LeadCaptured = true
	event := buildCaptureEvent(in, turnScore)
	in.CaptureEvent = &event

	log.Info().
		Str("domain", string(in.Config.Domain)).
		Str("user_id", in.UserID).
		Float64("score", turnScore).
		Msg("lead captured")
	return in, nil
}

func buildCaptureEvent(in *TurnState, score float64) contractx.LeadEvent {
	contact := make(map[string]any, len(contactInfoFields))
	for _, field := range contactInfoFields {
		if v, ok := in.Conv.CustomerInfo[field]; ok {
			contact[field] = v
		}
	}

	return contractx.LeadEvent{
		ID:                    uuid.NewString(),
		ClientID:              in.ClientID,
		UserID:                in.UserID,
		Domain:                in.Config.Domain,
		ContactInfo:           contact,
		Source:                in.Source,
		ProductInterest:       in.Conv.EntityType,
		Score:                 score,
		ConversionProbability: scoring.ConversionProbability(score, in.Conv, in.Analysis, in.Source),
		EstimatedValue:        scoring.EstimatedValue(score, in.Conv, in.Config),
		CapturedAt:            in.Now,
		ConversationContext:   in.Conv.Clone(),
	}
}
