package contract

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scope is the access-control unit carried by every decision.
type Scope struct {
	TeamID      uuid.UUID `json:"team_id"`
	ClientID    uuid.UUID `json:"client_id"`
	MatchID     uuid.UUID `json:"job_posting_match_id"`
	ClinicianID uuid.UUID `json:"clinician_id"`
}

func (s Scope) Validate() error {
	switch {
	case s.TeamID == uuid.Nil:
		return fmt.Errorf("%w: team_id is required", ErrValidation)
	case s.ClientID == uuid.Nil:
		return fmt.Errorf("%w: client_id is required", ErrValidation)
	case s.MatchID == uuid.Nil:
		return fmt.Errorf("%w: job_posting_match_id is required", ErrValidation)
	case s.ClinicianID == uuid.Nil:
		return fmt.Errorf("%w: clinician_id is required", ErrValidation)
	}
	return nil
}

type FormattedMessage struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type FormattedNote struct {
	ID        string         `json:"id"`
	NoteType  string         `json:"note_type"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DecisionPreview is an existing decision shown to the engine so it can avoid repeats.
type DecisionPreview struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	DecisionType string    `json:"decision_type"`
	CreatedAt    time.Time `json:"created_at"`
	Body         string    `json:"body"`
}

type ConversationMetadata struct {
	ConversationID      uuid.UUID  `json:"conversation_id"`
	StartTimestamp      time.Time  `json:"start_timestamp"`
	EndTimestamp        time.Time  `json:"end_timestamp"`
	MessageCount        int        `json:"message_count"`
	NoteCount           int        `json:"note_count"`
	NotesStartTimestamp *time.Time `json:"notes_start_timestamp"`
	NotesEndTimestamp   *time.Time `json:"notes_end_timestamp"`
}

// AnalysisContext is the snapshot handed to the reasoning engine for one run.
type AnalysisContext struct {
	ConversationID    uuid.UUID            `json:"conversation_id"`
	Scope             Scope                `json:"scope"`
	TeamName          string               `json:"team_name"`
	ClientName        string               `json:"client_name"`
	ClinicianName     string               `json:"clinician_name,omitempty"`
	JobTitle          string               `json:"job_title,omitempty"`
	Messages          []FormattedMessage   `json:"messages"`
	Notes             []FormattedNote      `json:"notes"`
	Metadata          ConversationMetadata `json:"conversation_metadata"`
	ExistingDecisions []DecisionPreview    `json:"existing_decisions"`
}

type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamInteger ParamType = "integer"
	ParamBoolean ParamType = "boolean"
	ParamArray   ParamType = "array"
)

type ParamDefinition struct {
	Name        string
	Type        ParamType
	Items       ParamType
	Description string
	Enum        []string
	Required    bool
}

// ToolDefinition is a backend-neutral catalog entry.
type ToolDefinition struct {
	Name        string
	Description string
	Params      []ParamDefinition
}

type EngineRequest struct {
	System string
	Prompt string
}

// ToolCall is one structured invocation emitted by the reasoning engine.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	ToolName string        `json:"tool_name"`
	CallID   string        `json:"tool_id"`
	Success  bool          `json:"success"`
	Result   any           `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"execution_time"`

	Err error `json:"-"`
}

// ExecutionScope is the run-level context every tool invocation is bound to.
type ExecutionScope struct {
	ConversationID uuid.UUID
	Scope          Scope
}

type AnalysisRequest struct {
	ConversationID  uuid.UUID `json:"conversation_id"`
	MatchID         uuid.UUID `json:"match_id,omitempty"`
	ForceReanalysis bool      `json:"force_reanalysis"`
}

type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped_already_analyzed"
	OutcomeDone      Outcome = "done"
	OutcomeNoContext Outcome = "failed_no_context"
	OutcomeLeaseHeld Outcome = "failed_lease_held"
	OutcomeException Outcome = "failed_exception"
)

type DecisionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	DecisionType string    `json:"decision_type"`
	Priority     string    `json:"priority"`
	CreatedAt    time.Time `json:"created_at"`
}

type AnalysisResult struct {
	ConversationID    uuid.UUID         `json:"conversation_id"`
	Outcome           Outcome           `json:"outcome"`
	AnalysisCompleted bool              `json:"analysis_completed"`
	DecisionsCreated  int               `json:"decisions_created"`
	Decisions         []DecisionSummary `json:"decisions"`
	ToolResults       []ToolResult      `json:"tool_results,omitempty"`
	ProcessingTime    time.Duration     `json:"processing_time"`
	ErrorMessage      string            `json:"error_message,omitempty"`
}

type Notification struct {
	ConversationID   string    `json:"conversation_id"`
	DecisionID       string    `json:"decision_id"`
	TeamID           string    `json:"team_id"`
	ClientID         string    `json:"client_id"`
	Priority         string    `json:"priority,omitempty"`
	NotificationType string    `json:"notification_type"`
	SentAt           time.Time `json:"sent_at"`
}
