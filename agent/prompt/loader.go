package prompt

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

var (
	//go:embed template/system.md
	systemRaw string

	//go:embed template/analysis.tmpl
	analysisRaw string
)

const timestampLayout = time.RFC3339

// PromptSet holds loaded prompt content.
type PromptSet struct {
	System   string
	Analysis string
}

// LoadPromptSet returns the embedded prompts, trimmed.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System:   strings.TrimSpace(systemRaw),
		Analysis: strings.TrimSpace(analysisRaw),
	}
}

// Renderer turns an AnalysisContext into the system and user prompts for one engine pass.
type Renderer struct {
	tpl *einoprompt.DefaultChatTemplate
}

func NewRenderer(set PromptSet) *Renderer {
	return &Renderer{
		tpl: einoprompt.FromMessages(schema.GoTemplate,
			schema.SystemMessage(set.System),
			schema.UserMessage(set.Analysis),
		),
	}
}

func (r *Renderer) Render(ctx context.Context, ac *contractx.AnalysisContext) (contractx.EngineRequest, error) {
	if ac == nil {
		return contractx.EngineRequest{}, fmt.Errorf("%w: analysis context is nil", contractx.ErrValidation)
	}

	vars, err := templateVars(ac)
	if err != nil {
		return contractx.EngineRequest{}, err
	}

	msgs, err := r.tpl.Format(ctx, vars)
	if err != nil {
		return contractx.EngineRequest{}, fmt.Errorf("render analysis prompt: %w", err)
	}
	if len(msgs) != 2 {
		return contractx.EngineRequest{}, fmt.Errorf("render analysis prompt: got %d messages", len(msgs))
	}

	return contractx.EngineRequest{
		System: msgs[0].Content,
		Prompt: msgs[1].Content,
	}, nil
}

type transcriptLine struct {
	Role      string
	Timestamp string
	Content   string
}

type noteLine struct {
	NoteType  string
	Timestamp string
	Content   string
}

func templateVars(ac *contractx.AnalysisContext) (map[string]any, error) {
	messages := make([]transcriptLine, 0, len(ac.Messages))
	for _, m := range ac.Messages {
		messages = append(messages, transcriptLine{
			Role:      strings.ToUpper(m.Role),
			Timestamp: m.Timestamp.UTC().Format(timestampLayout),
			Content:   m.Content,
		})
	}

	notes := make([]noteLine, 0, len(ac.Notes))
	for _, n := range ac.Notes {
		notes = append(notes, noteLine{
			NoteType:  n.NoteType,
			Timestamp: n.Timestamp.UTC().Format(timestampLayout),
			Content:   n.Content,
		})
	}

	existing := ""
	if len(ac.ExistingDecisions) > 0 {
		raw, err := json.MarshalIndent(ac.ExistingDecisions, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode existing decisions: %w", err)
		}
		existing = string(raw)
	}

	return map[string]any{
		"ConversationID":    ac.ConversationID.String(),
		"ClinicianID":       ac.Scope.ClinicianID.String(),
		"ClinicianName":     orUnknown(ac.ClinicianName),
		"JobTitle":          orUnknown(ac.JobTitle),
		"MatchID":           ac.Scope.MatchID.String(),
		"TeamID":            ac.Scope.TeamID.String(),
		"TeamName":          orUnknown(ac.TeamName),
		"ClientID":          ac.Scope.ClientID.String(),
		"ClientName":        orUnknown(ac.ClientName),
		"StartTimestamp":    formatTime(ac.Metadata.StartTimestamp),
		"EndTimestamp":      formatTime(ac.Metadata.EndTimestamp),
		"MessageCount":      ac.Metadata.MessageCount,
		"NoteCount":         ac.Metadata.NoteCount,
		"ExistingDecisions": existing,
		"Messages":          messages,
		"Notes":             notes,
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.UTC().Format(timestampLayout)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
