package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DecisionType string

const (
	DecisionClinicianQuestion    DecisionType = "clinician_question"
	DecisionInformationRequest   DecisionType = "information_request"
	DecisionSpecialAccommodation DecisionType = "special_accommodation"
	DecisionSchedulingConflict   DecisionType = "scheduling_conflict"
)

var DecisionTypes = []DecisionType{
	DecisionClinicianQuestion,
	DecisionInformationRequest,
	DecisionSpecialAccommodation,
	DecisionSchedulingConflict,
}

func (t DecisionType) Valid() bool {
	for _, v := range DecisionTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DecisionStatusPending = "pending"
)

// Conversation keeps its analysis state in typed columns instead of a metadata bag.
type Conversation struct {
	bun.BaseModel `bun:"table:conversations,alias:c"`

	ID      uuid.UUID  `bun:"id,pk,type:uuid"`
	UserID  uuid.UUID  `bun:"user_id,type:uuid"`
	Title   string     `bun:"title,notnull"`
	MatchID *uuid.UUID `bun:"match_id,type:uuid"`

	AnalysisCompleted bool       `bun:"analysis_completed,notnull"`
	DecisionsCreated  int        `bun:"decisions_created,notnull"`
	AnalysisStatus    string     `bun:"analysis_status"`
	AnalyzedAt        *time.Time `bun:"analyzed_at"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID             uuid.UUID      `bun:"id,pk,type:uuid"`
	ConversationID uuid.UUID      `bun:"conversation_id,type:uuid,notnull"`
	Role           string         `bun:"role,notnull"`
	Content        string         `bun:"content,notnull"`
	Metadata       map[string]any `bun:"meta_data,type:jsonb"`
	CreatedAt      time.Time      `bun:"created_at,notnull"`
}

type Note struct {
	bun.BaseModel `bun:"table:clinician_notes,alias:n"`

	ID             uuid.UUID      `bun:"id,pk,type:uuid"`
	ConversationID uuid.UUID      `bun:"conversation_id,type:uuid,notnull"`
	NoteType       string         `bun:"note_type,notnull"`
	Content        string         `bun:"content,notnull"`
	Metadata       map[string]any `bun:"meta_data,type:jsonb"`
	CreatedAt      time.Time      `bun:"created_at,notnull"`
}

type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID   uuid.UUID `bun:"id,pk,type:uuid"`
	Name string    `bun:"name,notnull"`
}

type Client struct {
	bun.BaseModel `bun:"table:clients,alias:cl"`

	ID   uuid.UUID `bun:"id,pk,type:uuid"`
	Name string    `bun:"name,notnull"`
}

type Clinician struct {
	bun.BaseModel `bun:"table:clinicians,alias:cn"`

	ID   uuid.UUID `bun:"id,pk,type:uuid"`
	Name string    `bun:"name,notnull"`
}

type JobPosting struct {
	bun.BaseModel `bun:"table:job_postings,alias:jp"`

	ID       uuid.UUID  `bun:"id,pk,type:uuid"`
	Title    string     `bun:"title,notnull"`
	ClientID uuid.UUID  `bun:"client_id,type:uuid,notnull"`
	TeamID   *uuid.UUID `bun:"team_id,type:uuid"`

	Client *Client `bun:"rel:belongs-to,join:client_id=id"`
}

// JobPostingMatch binds a clinician to a job posting and defines the decision scope.
type JobPostingMatch struct {
	bun.BaseModel `bun:"table:job_posting_matches,alias:jpm"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	ClinicianID  uuid.UUID `bun:"clinician_id,type:uuid,notnull"`
	JobPostingID uuid.UUID `bun:"job_posting_id,type:uuid,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`

	JobPosting *JobPosting `bun:"rel:belongs-to,join:job_posting_id=id"`
	Clinician  *Clinician  `bun:"rel:belongs-to,join:clinician_id=id"`
}

type Decision struct {
	bun.BaseModel `bun:"table:decisions,alias:d"`

	ID                uuid.UUID    `bun:"id,pk,type:uuid"`
	Title             string       `bun:"title,notnull"`
	Body              string       `bun:"body,notnull"`
	DecisionType      DecisionType `bun:"decision_type,notnull"`
	Priority          Priority     `bun:"priority,notnull"`
	QuotedExcerpts    []string     `bun:"quoted_excerpts,type:jsonb"`
	Reasoning         string       `bun:"ai_reasoning,notnull"`
	RelatedMessageIDs []string     `bun:"related_message_ids,type:jsonb"`
	Status            string       `bun:"status,notnull"`

	TeamID            uuid.UUID `bun:"team_id,type:uuid,notnull"`
	ClientID          uuid.UUID `bun:"client_id,type:uuid,notnull"`
	JobPostingMatchID uuid.UUID `bun:"job_posting_match_id,type:uuid,notnull"`
	ClinicianID       uuid.UUID `bun:"clinician_id,type:uuid,notnull"`
	ConversationID    uuid.UUID `bun:"conversation_id,type:uuid,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Models lists every table in creation order.
var Models = []any{
	(*Team)(nil),
	(*Client)(nil),
	(*Clinician)(nil),
	(*JobPosting)(nil),
	(*JobPostingMatch)(nil),
	(*Conversation)(nil),
	(*Message)(nil),
	(*Note)(nil),
	(*Decision)(nil),
}
