package analyzernode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	toolx "github.com/tanpawarit/screening-decision/agent/tool"
)

// ExecuteTools runs the engine's calls in order. A failed call never stops the ones after it.
func ExecuteTools(ctx context.Context, in *GraphState, executor contractx.ToolExecutor) (*GraphState, error) {
	if in == nil || in.Context == nil {
		return nil, fmt.Errorf("%w: analysis context is missing", contractx.ErrValidation)
	}

	exec := contractx.ExecutionScope{
		ConversationID: in.Context.ConversationID,
		Scope:          in.Context.Scope,
	}

	in.Results = make([]contractx.ToolResult, 0, len(in.Calls))
	in.Decisions = []contractx.DecisionSummary{}
	for _, call := range in.Calls {
		res := executor.Execute(ctx, exec, call)
		in.Results = append(in.Results, res)

		if summary, ok := toolx.DecisionSummary(res); ok {
			in.Decisions = append(in.Decisions, summary)
		}
		if res.Success && res.ToolName == toolx.ToolUpdateConversationStatus {
			in.StatusRecorded = true
		}
	}

	in.Outcome = contractx.OutcomeDone
	return in, nil
}
