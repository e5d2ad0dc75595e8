package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	storex "github.com/tanpawarit/screening-decision/agent/store"
	telemetryx "github.com/tanpawarit/screening-decision/pkg/telemetry"
)

const (
	defaultNotificationType = "new_decision"
	duplicateLimit          = 5
	maxDuplicateWindow      = 365 * 24 * time.Hour
	maxNotificationTypeLen  = 64
)

type CreateDecisionResult struct {
	DecisionID        string    `json:"decision_id"`
	Title             string    `json:"title"`
	DecisionType      string    `json:"decision_type"`
	Priority          string    `json:"priority"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	ConversationID    string    `json:"conversation_id"`
	TeamID            string    `json:"team_id"`
	ClientID          string    `json:"client_id"`
	JobPostingMatchID string    `json:"job_posting_match_id"`
	ClinicianID       string    `json:"clinician_id"`
}

type DuplicateDecision struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"created_at"`
	SimilarityScore float64   `json:"similarity_score"`
}

type DuplicateCheckResult struct {
	IsDuplicate        bool                `json:"is_duplicate"`
	DuplicateCount     int                 `json:"duplicate_count"`
	DuplicateDecisions []DuplicateDecision `json:"duplicate_decisions"`
	TimeWindowHours    float64             `json:"time_window_hours"`
}

type StatusUpdateResult struct {
	ConversationID    string     `json:"conversation_id"`
	Status            string     `json:"status"`
	AnalysisCompleted bool       `json:"analysis_completed"`
	DecisionsCreated  int        `json:"decisions_created"`
	AnalyzedAt        *time.Time `json:"analyzed_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type NotifyResult struct {
	DecisionID       string    `json:"decision_id"`
	NotificationType string    `json:"notification_type"`
	Recipients       []string  `json:"recipients"`
	Delivered        bool      `json:"delivered"`
	SentAt           time.Time `json:"sent_at"`
}

func (o *Orchestrator) createInterventionDecision(
	ctx context.Context,
	exec contractx.ExecutionScope,
	raw map[string]any,
) (*CreateDecisionResult, error) {
	if err := requireKeys(raw,
		"title", "body", "decision_type", "priority", "quoted_excerpts", "ai_reasoning",
		"team_id", "client_id", "job_posting_match_id", "clinician_id",
	); err != nil {
		return nil, err
	}
	var args CreateDecisionArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	decisionType := storex.DecisionType(strings.TrimSpace(args.DecisionType))
	if !decisionType.Valid() {
		return nil, fmt.Errorf("%w: invalid decision_type %q", contractx.ErrValidation, args.DecisionType)
	}
	priority := storex.Priority(strings.ToLower(strings.TrimSpace(args.Priority)))
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority %q", contractx.ErrValidation, args.Priority)
	}
	if err := requireTexts("title", args.Title, "body", args.Body, "ai_reasoning", args.Reasoning); err != nil {
		return nil, err
	}
	scope, err := scopeFromArgs(args, exec.Scope)
	if err != nil {
		return nil, err
	}

	excerpts := args.QuotedExcerpts
	if excerpts == nil {
		excerpts = []string{}
	}
	d := &storex.Decision{
		Title:             strings.TrimSpace(args.Title),
		Body:              strings.TrimSpace(args.Body),
		DecisionType:      decisionType,
		Priority:          priority,
		QuotedExcerpts:    excerpts,
		Reasoning:         strings.TrimSpace(args.Reasoning),
		RelatedMessageIDs: args.RelatedMessageIDs,
		TeamID:            scope.TeamID,
		ClientID:          scope.ClientID,
		JobPostingMatchID: scope.MatchID,
		ClinicianID:       scope.ClinicianID,
		ConversationID:    exec.ConversationID,
	}
	if err := o.store.CreateDecision(ctx, d); err != nil {
		return nil, err
	}
	telemetryx.RecordDecision(string(d.DecisionType))

	log.Info().
		Str("conversation_id", exec.ConversationID.String()).
		Str("decision_id", d.ID.String()).
		Str("decision_type", string(d.DecisionType)).
		Str("priority", string(d.Priority)).
		Msg("intervention decision created")

	return &CreateDecisionResult{
		DecisionID:        d.ID.String(),
		Title:             d.Title,
		DecisionType:      string(d.DecisionType),
		Priority:          string(d.Priority),
		Status:            d.Status,
		CreatedAt:         d.CreatedAt,
		ConversationID:    d.ConversationID.String(),
		TeamID:            d.TeamID.String(),
		ClientID:          d.ClientID.String(),
		JobPostingMatchID: d.JobPostingMatchID.String(),
		ClinicianID:       d.ClinicianID.String(),
	}, nil
}

func (o *Orchestrator) checkDuplicateDecision(
	ctx context.Context,
	exec contractx.ExecutionScope,
	raw map[string]any,
) (*DuplicateCheckResult, error) {
	if err := requireKeys(raw, "decision_title", "decision_type", "job_posting_match_id"); err != nil {
		return nil, err
	}
	var args CheckDuplicateArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	decisionType := storex.DecisionType(strings.TrimSpace(args.DecisionType))
	if !decisionType.Valid() {
		return nil, fmt.Errorf("%w: invalid decision_type %q", contractx.ErrValidation, args.DecisionType)
	}
	matchID, err := parseID("job_posting_match_id", args.JobPostingMatchID)
	if err != nil {
		return nil, err
	}
	if matchID != exec.Scope.MatchID {
		return nil, fmt.Errorf("%w: scope mismatch: job_posting_match_id is not the conversation's match", contractx.ErrValidation)
	}

	window := defaultDuplicateWindow
	switch {
	case args.TimeWindowHours >= maxDuplicateWindow.Hours():
		window = maxDuplicateWindow
	case args.TimeWindowHours > 0:
		window = time.Duration(args.TimeWindowHours * float64(time.Hour))
	}

	found, err := o.store.FindSimilarDecisions(ctx, storex.DuplicateQuery{
		MatchID:       matchID,
		DecisionType:  decisionType,
		TitleContains: strings.TrimSpace(args.DecisionTitle),
		Since:         o.now().Add(-window),
		Limit:         duplicateLimit,
	})
	if err != nil {
		return nil, err
	}

	dups := make([]DuplicateDecision, 0, len(found))
	for _, d := range found {
		dups = append(dups, DuplicateDecision{
			ID:              d.ID.String(),
			Title:           d.Title,
			CreatedAt:       d.CreatedAt,
			SimilarityScore: TitleSimilarity(args.DecisionTitle, d.Title),
		})
	}

	return &DuplicateCheckResult{
		IsDuplicate:        len(dups) > 0,
		DuplicateCount:     len(dups),
		DuplicateDecisions: dups,
		TimeWindowHours:    window.Hours(),
	}, nil
}

func (o *Orchestrator) updateConversationStatus(
	ctx context.Context,
	exec contractx.ExecutionScope,
	raw map[string]any,
) (*StatusUpdateResult, error) {
	if err := requireKeys(raw, "status"); err != nil {
		return nil, err
	}
	var args UpdateStatusArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := requireText("status", args.Status); err != nil {
		return nil, err
	}
	if args.DecisionsCreated < 0 {
		return nil, fmt.Errorf("%w: decisions_created must be >= 0", contractx.ErrValidation)
	}

	completed := true
	if args.AnalysisCompleted != nil {
		completed = *args.AnalysisCompleted
	}

	conv, err := o.store.UpdateAnalysisStatus(ctx, exec.ConversationID, storex.AnalysisStatusUpdate{
		Completed:        completed,
		DecisionsCreated: args.DecisionsCreated,
		Status:           strings.TrimSpace(args.Status),
		AnalyzedAt:       o.now(),
	})
	if err != nil {
		return nil, err
	}

	return &StatusUpdateResult{
		ConversationID:    conv.ID.String(),
		Status:            conv.AnalysisStatus,
		AnalysisCompleted: conv.AnalysisCompleted,
		DecisionsCreated:  conv.DecisionsCreated,
		AnalyzedAt:        conv.AnalyzedAt,
		UpdatedAt:         conv.UpdatedAt,
	}, nil
}

// notifyRecruiters only fails on missing identifiers. Transport errors are logged and reported as undelivered.
func (o *Orchestrator) notifyRecruiters(
	ctx context.Context,
	exec contractx.ExecutionScope,
	raw map[string]any,
) (*NotifyResult, error) {
	if err := requireKeys(raw, "decision_id", "team_id", "client_id"); err != nil {
		return nil, err
	}
	var args NotifyArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	decisionID, err := parseID("decision_id", args.DecisionID)
	if err != nil {
		return nil, err
	}
	teamID, err := parseID("team_id", args.TeamID)
	if err != nil {
		return nil, err
	}
	clientID, err := parseID("client_id", args.ClientID)
	if err != nil {
		return nil, err
	}
	if teamID != exec.Scope.TeamID || clientID != exec.Scope.ClientID {
		return nil, fmt.Errorf("%w: scope mismatch: team_id/client_id are not the conversation's", contractx.ErrValidation)
	}

	notificationType := strings.TrimSpace(args.NotificationType)
	if notificationType == "" {
		notificationType = defaultNotificationType
	}
	if !validNotificationType(notificationType) {
		return nil, fmt.Errorf("%w: invalid notification_type %q", contractx.ErrValidation, args.NotificationType)
	}

	n := contractx.Notification{
		ConversationID:   exec.ConversationID.String(),
		DecisionID:       decisionID.String(),
		TeamID:           teamID.String(),
		ClientID:         clientID.String(),
		Priority:         strings.TrimSpace(args.Priority),
		NotificationType: notificationType,
		SentAt:           o.now().UTC(),
	}

	delivered := true
	if err := o.notifier.Notify(ctx, n); err != nil {
		delivered = false
		log.Warn().Err(err).
			Str("conversation_id", n.ConversationID).
			Str("decision_id", n.DecisionID).
			Msg("recruiter notification not delivered")
	}

	return &NotifyResult{
		DecisionID:       n.DecisionID,
		NotificationType: n.NotificationType,
		Recipients:       []string{},
		Delivered:        delivered,
		SentAt:           n.SentAt,
	}, nil
}

// validNotificationType accepts lower-case words joined by '_' or '-'. The value ends up as a
// message subject token, so separators and wildcards are rejected.
func validNotificationType(s string) bool {
	if s == "" || len(s) > maxNotificationTypeLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// DecisionSummary extracts a created decision from a successful create_intervention_decision result.
func DecisionSummary(res contractx.ToolResult) (contractx.DecisionSummary, bool) {
	if !res.Success || res.ToolName != ToolCreateInterventionDecision {
		return contractx.DecisionSummary{}, false
	}
	out, ok := res.Result.(*CreateDecisionResult)
	if !ok || out == nil {
		return contractx.DecisionSummary{}, false
	}
	return contractx.DecisionSummary{
		ID:           out.DecisionID,
		Title:        out.Title,
		DecisionType: out.DecisionType,
		Priority:     out.Priority,
		CreatedAt:    out.CreatedAt,
	}, true
}
