package analyzernode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

// InvokeEngine renders the prompts and performs the single reasoning pass.
func InvokeEngine(ctx context.Context, in *GraphState, renderer PromptRenderer, engine contractx.Engine) (*GraphState, error) {
	if in == nil || in.Context == nil {
		return nil, fmt.Errorf("%w: analysis context is missing", contractx.ErrValidation)
	}

	req, err := renderer.Render(ctx, in.Context)
	if err != nil {
		return in.Fail(err), nil
	}

	start := time.Now()
	calls, err := engine.Analyze(ctx, req)
	if err != nil {
		return in.Fail(err), nil
	}

	log.Info().
		Str("conversation_id", in.Request.ConversationID.String()).
		Int("tool_calls", len(calls)).
		Dur("elapsed", time.Since(start)).
		Msg("engine pass finished")

	in.Calls = calls
	return in, nil
}
