package analyzernode

import (
	"time"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

func Finalize(in *GraphState, nowFn func() time.Time) (contractx.AnalysisResult, error) {
	if in == nil {
		return contractx.AnalysisResult{}, nilState()
	}

	out := contractx.AnalysisResult{
		ConversationID: in.Request.ConversationID,
		Outcome:        in.Outcome,
		Decisions:      in.Decisions,
		ToolResults:    in.Results,
		ProcessingTime: nowFn().Sub(in.Start),
		ErrorMessage:   in.Message,
	}
	if out.Decisions == nil {
		out.Decisions = []contractx.DecisionSummary{}
	}

	switch in.Outcome {
	case contractx.OutcomeDone:
		out.AnalysisCompleted = true
		out.DecisionsCreated = len(out.Decisions)
	case contractx.OutcomeSkipped:
		out.AnalysisCompleted = true
	case "":
		out.Outcome = contractx.OutcomeException
		out.ErrorMessage = FailurePrefix + "run ended without an outcome"
	}
	return out, nil
}
