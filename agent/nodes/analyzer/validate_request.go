package analyzernode

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

// ValidateRequest opens the run state. An invalid request is a terminal failure, not a graph error.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	st := &GraphState{
		Request: in.Request,
		Lease:   in.Lease,
		Start:   nowFn(),
	}
	if in.Request.ConversationID == uuid.Nil {
		return st.Fail(fmt.Errorf("%w: conversation_id is required", contractx.ErrValidation)), nil
	}
	return st, nil
}
