package analyzernode

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

// CheckIdempotency ends the run early when the conversation is already analyzed.
// A missing conversation counts as not analyzed; assembly reports it.
func CheckIdempotency(ctx context.Context, in *GraphState, store ConversationStore) (*GraphState, error) {
	if in == nil {
		return nil, nilState()
	}
	if in.Request.ForceReanalysis {
		log.Info().
			Str("conversation_id", in.Request.ConversationID.String()).
			Msg("forced reanalysis, idempotency check bypassed")
		return in, nil
	}

	conv, err := store.GetConversation(ctx, in.Request.ConversationID)
	switch {
	case errors.Is(err, contractx.ErrNotFound):
		return in, nil
	case err != nil:
		return in.Fail(err), nil
	}

	if conv.AnalysisCompleted {
		log.Info().
			Str("conversation_id", in.Request.ConversationID.String()).
			Msg("conversation already analyzed")
		in.Outcome = contractx.OutcomeSkipped
		in.Message = SkipMessage
	}
	return in, nil
}
