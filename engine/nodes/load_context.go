package turnnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

// LoadContext resolves the conversation context for this turn: the override
// when supplied, the stored context when present, a fresh one otherwise. The
// user message is appended here so every later node sees it in history.
func LoadContext(ctx context.Context, in *TurnState, store statex.Store) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}

	conv, err := resolveContext(ctx, in, store)
	if err != nil {
		return nil, err
	}

	// Work on a clone; the store copy stays untouched until PersistContext.
	in.Conv = conv.Clone()
	if in.Conv.Stage == "" {
		in.Conv.Stage = in.Config.DefaultStage
	}
	in.Conv.Append(statex.RoleUser, in.Message, in.Now)
	return in, nil
}

func resolveContext(ctx context.Context, in *TurnState, store statex.Store) (*statex.ConversationContext, error) {
	if in.Override != nil {
		return in.Override, nil
	}

	conv, err := store.Get(ctx, in.ClientID, in.UserID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, statex.ErrContextNotFound) {
		return nil, err
	}

	return statex.NewConversationContext(in.ClientID, in.UserID, in.Config.Domain, in.Config.DefaultStage, in.Now), nil
}
