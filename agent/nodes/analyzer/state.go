package analyzernode

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	storex "github.com/tanpawarit/screening-decision/agent/store"
)

const (
	SkipMessage     = "Already analyzed (use force_reanalysis to override)"
	FailurePrefix   = "Error in post-conversation analysis: "
	StatusCompleted = "completed"
)

// ConversationStore is the slice of the store the coordinator touches directly.
type ConversationStore interface {
	GetConversation(ctx context.Context, id uuid.UUID) (*storex.Conversation, error)
	UpdateAnalysisStatus(ctx context.Context, conversationID uuid.UUID, upd storex.AnalysisStatusUpdate) (*storex.Conversation, error)
}

type PromptRenderer interface {
	Render(ctx context.Context, ac *contractx.AnalysisContext) (contractx.EngineRequest, error)
}

// Lease carries the release func out of the graph so the caller can release it in a defer.
type Lease struct {
	release func(context.Context) error
}

func (l *Lease) Held() bool {
	return l != nil && l.release != nil
}

// Release is safe to call more than once.
func (l *Lease) Release(ctx context.Context) error {
	if !l.Held() {
		return nil
	}
	release := l.release
	l.release = nil
	return release(ctx)
}

type GraphInput struct {
	Request contractx.AnalysisRequest
	Lease   *Lease
}

type GraphState struct {
	Request contractx.AnalysisRequest
	Lease   *Lease
	Start   time.Time

	Context   *contractx.AnalysisContext
	Calls     []contractx.ToolCall
	Results   []contractx.ToolResult
	Decisions []contractx.DecisionSummary

	// StatusRecorded is set once update_conversation_status succeeded during this run.
	StatusRecorded bool

	Outcome contractx.Outcome
	Message string
	Err     error
}

// Finished reports whether a terminal outcome has been reached.
func (s *GraphState) Finished() bool {
	return s.Outcome != ""
}

// Fail records a terminal failure classified from err.
func (s *GraphState) Fail(err error) *GraphState {
	s.Err = err
	s.Outcome = Classify(err)
	s.Message = FailurePrefix + err.Error()
	return s
}

func Classify(err error) contractx.Outcome {
	switch {
	case err == nil:
		return contractx.OutcomeDone
	case errors.Is(err, contractx.ErrNotFound):
		return contractx.OutcomeNoContext
	case errors.Is(err, contractx.ErrLeaseHeld):
		return contractx.OutcomeLeaseHeld
	default:
		return contractx.OutcomeException
	}
}

func nilState() error {
	return errors.New("analysis graph state is nil")
}
