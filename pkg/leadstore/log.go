package leadstore

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
)

// LogSink records capture events to the application log. Used when no
// external lead store is configured.
type LogSink struct{}

var _ contractx.LeadSink = LogSink{}

func (LogSink) Capture(_ context.Context, event contractx.LeadEvent) error {
	log.Info().
		Str("lead_id", event.ID).
		Str("client_id", event.ClientID).
		Str("user_id", event.UserID).
		Str("domain", string(event.Domain)).
		Float64("score", event.Score).
		Float64("conversion_probability", event.ConversionProbability).
		Float64("estimated_value", event.EstimatedValue).
		Msg("lead captured")
	return nil
}
