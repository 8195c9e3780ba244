package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	"github.com/thanakit-dev/leadpilot/engine/dispatch"
)

// DispatchBusinessLogic runs at most one handler when the analysis asks for
// it. A nil result (unregistered, failed, or panicked handler) leaves the
// turn on the ordinary retrieval path.
func DispatchBusinessLogic(ctx context.Context, in *TurnState, registry *dispatch.Registry) (*TurnState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}
	if registry == nil || !in.Analysis.RequiresBusinessLogic {
		return in, nil
	}

	logicType := in.Analysis.BusinessLogicType
	if logicType == "" {
		logicType = in.Analysis.PrimaryIntent
	}

	result := registry.Dispatch(ctx, in.Config.Domain, logicType, in.Message, in.Conv, in.Analysis)
	if result == nil {
		return in, nil
	}

	in.Business = result

	// Track in-flight parameter collection across turns.
	if result.Success {
		in.Conv.SetBusinessScratch(result.Type, result.Data)
		delete(in.Conv.BusinessLogic, "pending_"+result.Type)
	} else if len(result.MissingFields) > 0 {
		in.Conv.SetBusinessScratch("pending_"+result.Type, result.MissingFields)
	}
	return in, nil
}
