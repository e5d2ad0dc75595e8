package analyzernode

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	storex "github.com/tanpawarit/screening-decision/agent/store"
)

// RecordStatus marks a finished run as analyzed when the engine did not do it itself.
// Failures are logged and never change the outcome.
func RecordStatus(ctx context.Context, in *GraphState, store ConversationStore, nowFn func() time.Time) (*GraphState, error) {
	if in == nil {
		return nil, nilState()
	}
	if in.Outcome != contractx.OutcomeDone || in.StatusRecorded {
		return in, nil
	}

	_, err := store.UpdateAnalysisStatus(ctx, in.Request.ConversationID, storex.AnalysisStatusUpdate{
		Completed:        true,
		DecisionsCreated: len(in.Decisions),
		Status:           StatusCompleted,
		AnalyzedAt:       nowFn(),
	})
	if err != nil {
		log.Warn().Err(err).
			Str("conversation_id", in.Request.ConversationID.String()).
			Msg("conversation status not recorded")
		return in, nil
	}
	in.StatusRecorded = true
	return in, nil
}
