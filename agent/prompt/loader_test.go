package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

func sampleContext() *contractx.AnalysisContext {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &contractx.AnalysisContext{
		ConversationID: uuid.MustParse("5b0c7a57-2f4e-4f77-9d55-7d7d2a1b0c01"),
		Scope: contractx.Scope{
			TeamID:      uuid.MustParse("5b0c7a57-2f4e-4f77-9d55-7d7d2a1b0c02"),
			ClientID:    uuid.MustParse("5b0c7a57-2f4e-4f77-9d55-7d7d2a1b0c03"),
			MatchID:     uuid.MustParse("5b0c7a57-2f4e-4f77-9d55-7d7d2a1b0c04"),
			ClinicianID: uuid.MustParse("5b0c7a57-2f4e-4f77-9d55-7d7d2a1b0c05"),
		},
		TeamName:   "Travel Nursing East",
		ClientName: "Mercy General",
		JobTitle:   "ICU RN - Nights",
		Messages: []contractx.FormattedMessage{
			{Role: "user", Content: "Is parking included?", Timestamp: base},
			{Role: "assistant", Content: "I don't have access to that information.", Timestamp: base.Add(time.Minute)},
		},
		Metadata: contractx.ConversationMetadata{
			StartTimestamp: base,
			EndTimestamp:   base.Add(time.Minute),
			MessageCount:   2,
		},
		ExistingDecisions: []contractx.DecisionPreview{
			{ID: "d-1", Title: "Parking question", DecisionType: "clinician_question", CreatedAt: base, Body: "b"},
		},
	}
}

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	if set.System == "" || set.Analysis == "" {
		t.Fatalf("LoadPromptSet() returned empty prompt: %+v", set)
	}
	if strings.HasPrefix(set.Analysis, "\n") || strings.HasSuffix(set.System, "\n") {
		t.Fatalf("LoadPromptSet() did not trim prompts")
	}
}

func TestRenderIncludesTranscriptAndScope(t *testing.T) {
	t.Parallel()

	req, err := NewRenderer(LoadPromptSet()).Render(context.Background(), sampleContext())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if req.System != LoadPromptSet().System {
		t.Fatalf("system prompt changed during render")
	}

	wants := []string{
		"**USER (2026-03-02T09:00:00Z)**: Is parking included?",
		"**ASSISTANT (2026-03-02T09:01:00Z)**: I don't have access to that information.",
		"- **Job Posting Match ID**: 5b0c7a57-2f4e-4f77-9d55-7d7d2a1b0c04",
		"- **Team**: Travel Nursing East (5b0c7a57-2f4e-4f77-9d55-7d7d2a1b0c02)",
		"- **Clinician**: Unknown (5b0c7a57-2f4e-4f77-9d55-7d7d2a1b0c05)",
		"- **Message Count**: 2",
		`"title": "Parking question"`,
		"No notes found.",
	}
	for _, want := range wants {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, req.Prompt)
		}
	}
	if strings.Contains(req.Prompt, "No messages found.") {
		t.Errorf("prompt reports no messages for a non-empty transcript")
	}
}

func TestRenderEmptyConversation(t *testing.T) {
	t.Parallel()

	ac := sampleContext()
	ac.Messages = nil
	ac.ExistingDecisions = nil
	ac.Metadata = contractx.ConversationMetadata{}
	ac.Notes = []contractx.FormattedNote{{
		NoteType:  "concern",
		Content:   "Worried about float policy",
		Timestamp: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}}

	req, err := NewRenderer(LoadPromptSet()).Render(context.Background(), ac)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		"No messages found.",
		"No existing decisions found.",
		"- **Duration**: Unknown to Unknown",
		"**NOTE (2026-03-02T10:00:00Z) - concern**: Worried about float policy",
	} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRenderNilContext(t *testing.T) {
	t.Parallel()

	_, err := NewRenderer(LoadPromptSet()).Render(context.Background(), nil)
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Render(nil) error = %v, want ErrValidation", err)
	}
}
