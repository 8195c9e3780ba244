package turnnode

import (
	"fmt"
	"strings"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

// Entity values treated as "no real interest detected": they never overwrite
// a previously tracked product interest.
var genericEntityValues = map[string]bool{
	"":        true,
	"general": true,
	"generic": true,
	"none":    true,
	"unknown": true,
}

// AdvanceStage applies the conversation state machine for this turn.
func AdvanceStage(in *TurnState) (*TurnState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}
	Advance(in.Conv, in.Analysis, in.Config.StageFlow)
	in.Conv.Touch(in.Now)
	return in, nil
}

// Advance is the transition rule: stageFlow[stage][intent] when declared,
// no-op otherwise; unknown intents never error, they fail to progress.
// It also folds the analysis into the context: entity type updates only on a
// non-generic value, and extracted entities merge right-biased into customer
// info.
func Advance(conv *statex.ConversationContext, analysis contractx.AnalysisResult, stageFlow map[string]map[string]string) {
	if conv == nil {
		return
	}

	if transitions, ok := stageFlow[conv.Stage]; ok {
		if next, ok := transitions[analysis.PrimaryIntent]; ok && next != "" {
			conv.Stage = next
		}
	}

	if !genericEntityValues[strings.ToLower(strings.TrimSpace(analysis.EntityType))] {
		conv.EntityType = analysis.EntityType
	}

	conv.MergeCustomerInfo(analysis.ExtractedEntities)
}
