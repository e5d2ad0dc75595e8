package analyzernode

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

func AssembleContext(ctx context.Context, in *GraphState, assembler contractx.Assembler) (*GraphState, error) {
	if in == nil {
		return nil, nilState()
	}

	ac, err := assembler.Assemble(ctx, in.Request.ConversationID)
	if err != nil {
		return in.Fail(err), nil
	}

	hint := in.Request.MatchID
	if hint != uuid.Nil && hint != ac.Scope.MatchID {
		log.Warn().
			Str("conversation_id", in.Request.ConversationID.String()).
			Str("requested_match_id", hint.String()).
			Str("match_id", ac.Scope.MatchID.String()).
			Msg("requested match differs from the conversation's match, using the conversation's")
	}

	in.Context = ac
	return in, nil
}
