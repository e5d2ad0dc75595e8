package tool

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

type CreateDecisionArgs struct {
	Title             string   `json:"title"`
	Body              string   `json:"body"`
	DecisionType      string   `json:"decision_type"`
	Priority          string   `json:"priority"`
	QuotedExcerpts    []string `json:"quoted_excerpts"`
	Reasoning         string   `json:"ai_reasoning"`
	TeamID            string   `json:"team_id"`
	ClientID          string   `json:"client_id"`
	JobPostingMatchID string   `json:"job_posting_match_id"`
	ClinicianID       string   `json:"clinician_id"`
	RelatedMessageIDs []string `json:"related_message_ids"`
}

type CheckDuplicateArgs struct {
	DecisionTitle     string  `json:"decision_title"`
	DecisionType      string  `json:"decision_type"`
	JobPostingMatchID string  `json:"job_posting_match_id"`
	TimeWindowHours   float64 `json:"time_window_hours"`
}

type UpdateStatusArgs struct {
	Status            string `json:"status"`
	AnalysisCompleted *bool  `json:"analysis_completed"`
	DecisionsCreated  int    `json:"decisions_created"`
}

type NotifyArgs struct {
	DecisionID       string `json:"decision_id"`
	TeamID           string `json:"team_id"`
	ClientID         string `json:"client_id"`
	Priority         string `json:"priority"`
	NotificationType string `json:"notification_type"`
}

// decodeArgs copies raw engine arguments into out. JSON numbers and strings are coerced weakly.
func decodeArgs(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("%w: build decoder: %v", contractx.ErrValidation, err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: decode arguments: %v", contractx.ErrValidation, err)
	}
	return nil
}

// requireKeys fails when any key is absent. A present key with an empty value passes.
func requireKeys(raw map[string]any, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if v, ok := raw[k]; !ok || v == nil {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: missing required fields: %s", contractx.ErrValidation, strings.Join(missing, ", "))
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s must not be empty", contractx.ErrValidation, field)
	}
	return nil
}

// requireTexts takes field/value pairs.
func requireTexts(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := requireText(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a UUID, got %q", contractx.ErrValidation, field, value)
	}
	return id, nil
}

// scopeFromArgs parses the scope fields and checks them against the run scope.
func scopeFromArgs(args CreateDecisionArgs, run contractx.Scope) (contractx.Scope, error) {
	var (
		s   contractx.Scope
		err error
	)
	if s.TeamID, err = parseID("team_id", args.TeamID); err != nil {
		return s, err
	}
	if s.ClientID, err = parseID("client_id", args.ClientID); err != nil {
		return s, err
	}
	if s.MatchID, err = parseID("job_posting_match_id", args.JobPostingMatchID); err != nil {
		return s, err
	}
	if s.ClinicianID, err = parseID("clinician_id", args.ClinicianID); err != nil {
		return s, err
	}
	if s != run {
		return s, fmt.Errorf("%w: scope mismatch: arguments do not match the conversation's match", contractx.ErrValidation)
	}
	return s, nil
}
