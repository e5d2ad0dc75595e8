package analyzernode

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

func LeaseKey(in *GraphState) string {
	return "conversation:" + in.Request.ConversationID.String()
}

func AcquireLease(ctx context.Context, in *GraphState, locker contractx.Locker) (*GraphState, error) {
	if in == nil {
		return nil, nilState()
	}
	if locker == nil {
		return in, nil
	}

	release, err := locker.Acquire(ctx, LeaseKey(in))
	if err != nil {
		log.Warn().Err(err).
			Str("conversation_id", in.Request.ConversationID.String()).
			Msg("analysis lease not acquired")
		return in.Fail(err), nil
	}
	if in.Lease != nil {
		in.Lease.release = release
	}
	return in, nil
}
