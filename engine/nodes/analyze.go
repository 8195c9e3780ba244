package turnnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	promptx "github.com/thanakit-dev/leadpilot/engine/prompt"
)

// Analyze classifies the message. A gateway failure or unparseable output
// degrades to the conservative default analysis; the turn always continues.
func Analyze(ctx context.Context, in *TurnState, gateway contractx.Gateway) (*TurnState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}

	raw, err := gateway.Classify(ctx, promptx.ForAnalysis(in.Config), in.Message)
	if err != nil {
		log.Warn().Err(err).Str("domain", string(in.Config.Domain)).Msg("classification failed, using default analysis")
		in.Analysis = contractx.DefaultAnalysis()
		return in, nil
	}

	analysis, parsed := contractx.ParseAnalysis(raw)
	if !parsed {
		log.Warn().Str("domain", string(in.Config.Domain)).Msg("classification output unparseable, using default analysis")
	}
	in.Analysis = analysis
	return in, nil
}
