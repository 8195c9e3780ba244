// Package turnnode holds the per-turn pipeline steps the orchestrator graph
// composes. Each node takes the accumulated TurnState and returns it mutated.
package turnnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	domainx "github.com/thanakit-dev/leadpilot/engine/domain"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidClient  = errors.New("client id is empty")
	ErrInvalidUser    = errors.New("user id is empty")
	ErrMissingConfig  = errors.New("domain config is required")
)

// TurnRequest is the graph input for one inbound message.
type TurnRequest struct {
	ClientID string
	UserID   string
	Message  string
	Source   string
	Config   *domainx.Config

	// ContextOverride replaces the stored context for this turn when set.
	ContextOverride *statex.ConversationContext
}

// TurnState carries one turn through the pipeline. Conv is a turn-scoped
// clone: mutations reach the store only if the whole turn succeeds.
type TurnState struct {
	ClientID string
	UserID   string
	Message  string
	Source   string
	Config   *domainx.Config
	Now      time.Time

	Override *statex.ConversationContext
	Conv     *statex.ConversationContext

	Analysis  contractx.AnalysisResult
	Business  *contractx.BusinessLogicResult
	Retrieval *contractx.RankedResult

	Reply     string
	FollowUps []string

	Score        float64
	Capture      bool
	CaptureEvent *contractx.LeadEvent
}

// ValidateRequest trims and checks the request, seeding the turn state.
func ValidateRequest(req TurnRequest, nowFn func() time.Time) (*TurnState, error) {
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		return nil, ErrInvalidClient
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrInvalidMessage
	}
	if req.Config == nil {
		return nil, ErrMissingConfig
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "webchat"
	}

	return &TurnState{
		ClientID: clientID,
		UserID:   userID,
		Message:  message,
		Source:   source,
		Config:   req.Config,
		Override: req.ContextOverride,
		Now:      nowFn().UTC(),
	}, nil
}
