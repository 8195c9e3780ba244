package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	"github.com/thanakit-dev/leadpilot/engine/retrieval"
)

// RetrieveKnowledge queries the corpus unless a business-logic result already
// decided this turn. Embedding failures propagate: retrieval is not
// best-effort.
func RetrieveKnowledge(ctx context.Context, in *TurnState, engine *retrieval.Engine) (*TurnState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}
	if in.Business != nil {
		return in, nil
	}

	result, err := engine.Query(ctx, in.Message, in.Conv, in.Config)
	if err != nil {
		return nil, err
	}
	in.Retrieval = result
	return in, nil
}
