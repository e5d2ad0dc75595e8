// Package assembler gathers everything the reasoning engine needs to review one conversation.
package assembler

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	storex "github.com/tanpawarit/screening-decision/agent/store"
	telemetryx "github.com/tanpawarit/screening-decision/pkg/telemetry"
)

const (
	bodyPreviewRunes = 200
	unknownTeamName  = "Unknown Team"
	unknownName      = "Unknown"
)

type Assembler struct {
	store storex.Store
}

var _ contractx.Assembler = (*Assembler)(nil)

func New(store storex.Store) *Assembler {
	return &Assembler{store: store}
}

// Assemble builds the analysis context. Missing conversation, match or team id abort with a
// NotFoundError and an incomplete scope triple with ErrValidation; failures loading prior
// decisions only produce an empty list.
func (a *Assembler) Assemble(ctx context.Context, conversationID uuid.UUID) (_ *contractx.AnalysisContext, err error) {
	start := time.Now()
	ctx, span := telemetryx.StartSpan(ctx, "assembler.assemble", telemetryx.AttrConversationID.String(conversationID.String()))
	defer func() { telemetryx.EndSpan(span, err) }()

	logger := log.With().Str("conversation_id", conversationID.String()).Logger()
	logger.Info().Msg("context assembly started")

	step := time.Now()
	conv, err := a.store.GetConversation(ctx, conversationID)
	if err != nil {
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("conversation lookup failed")
		return nil, err
	}
	messages, err := a.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	notes, err := a.store.ListNotes(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	sortMessages(messages)
	sortNotes(notes)
	logger.Info().
		Int("messages", len(messages)).
		Int("notes", len(notes)).
		Dur("elapsed", time.Since(step)).
		Msg("conversation data loaded")

	step = time.Now()
	if conv.MatchID == nil || *conv.MatchID == uuid.Nil {
		logger.Error().Msg("conversation has no match reference")
		return nil, contractx.NotFound(contractx.EntityMatch, "")
	}
	match, err := a.store.GetMatch(ctx, *conv.MatchID)
	if err != nil {
		logger.Error().Err(err).Str("match_id", conv.MatchID.String()).Msg("match lookup failed")
		return nil, err
	}
	if match.JobPosting == nil {
		return nil, contractx.NotFound(contractx.EntityJobPosting, match.JobPostingID.String())
	}
	if match.JobPosting.TeamID == nil || *match.JobPosting.TeamID == uuid.Nil {
		return nil, contractx.NotFound(contractx.EntityTeam, "")
	}

	scope := contractx.Scope{
		TeamID:      *match.JobPosting.TeamID,
		ClientID:    match.JobPosting.ClientID,
		MatchID:     match.ID,
		ClinicianID: match.ClinicianID,
	}
	if err := scope.Validate(); err != nil {
		logger.Error().Err(err).Str("match_id", match.ID.String()).Msg("match has an incomplete scope")
		return nil, err
	}
	teamName := a.teamName(ctx, scope.TeamID)
	clientName := unknownName
	if match.JobPosting.Client != nil && match.JobPosting.Client.Name != "" {
		clientName = match.JobPosting.Client.Name
	}
	clinicianName := ""
	if match.Clinician != nil {
		clinicianName = match.Clinician.Name
	}
	logger.Info().
		Str("match_id", match.ID.String()).
		Str("client", clientName).
		Dur("elapsed", time.Since(step)).
		Msg("match data loaded")

	step = time.Now()
	existing := a.existingDecisions(ctx, match.ID)
	logger.Info().
		Int("existing_decisions", len(existing)).
		Dur("elapsed", time.Since(step)).
		Msg("existing decisions loaded")

	out := &contractx.AnalysisContext{
		ConversationID:    conv.ID,
		Scope:             scope,
		TeamName:          teamName,
		ClientName:        clientName,
		ClinicianName:     clinicianName,
		JobTitle:          match.JobPosting.Title,
		Messages:          formatMessages(messages),
		Notes:             formatNotes(notes),
		Metadata:          buildMetadata(conv, messages, notes),
		ExistingDecisions: existing,
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("context assembly finished")
	return out, nil
}

func (a *Assembler) teamName(ctx context.Context, teamID uuid.UUID) string {
	team, err := a.store.GetTeam(ctx, teamID)
	if err != nil || team.Name == "" {
		if err != nil {
			log.Warn().Err(err).Str("team_id", teamID.String()).Msg("team name unavailable")
		}
		return unknownTeamName
	}
	return team.Name
}

func (a *Assembler) existingDecisions(ctx context.Context, matchID uuid.UUID) []contractx.DecisionPreview {
	decisions, err := a.store.ListDecisionsByMatch(ctx, matchID)
	if err != nil {
		log.Warn().Err(err).Str("match_id", matchID.String()).Msg("existing decisions unavailable")
		return []contractx.DecisionPreview{}
	}

	out := make([]contractx.DecisionPreview, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, contractx.DecisionPreview{
			ID:           d.ID.String(),
			Title:        d.Title,
			DecisionType: string(d.DecisionType),
			CreatedAt:    d.CreatedAt,
			Body:         previewBody(d.Body),
		})
	}
	return out
}

func previewBody(body string) string {
	runes := []rune(body)
	if len(runes) <= bodyPreviewRunes {
		return body
	}
	return string(runes[:bodyPreviewRunes]) + "..."
}

func sortMessages(msgs []storex.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

func sortNotes(notes []storex.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
}

func formatMessages(msgs []storex.Message) []contractx.FormattedMessage {
	out := make([]contractx.FormattedMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, contractx.FormattedMessage{
			ID:        m.ID.String(),
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
			Metadata:  m.Metadata,
		})
	}
	return out
}

func formatNotes(notes []storex.Note) []contractx.FormattedNote {
	out := make([]contractx.FormattedNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, contractx.FormattedNote{
			ID:        n.ID.String(),
			NoteType:  n.NoteType,
			Content:   n.Content,
			Timestamp: n.CreatedAt,
			Metadata:  n.Metadata,
		})
	}
	return out
}

func buildMetadata(conv *storex.Conversation, msgs []storex.Message, notes []storex.Note) contractx.ConversationMetadata {
	md := contractx.ConversationMetadata{
		ConversationID: conv.ID,
		StartTimestamp: conv.CreatedAt,
		EndTimestamp:   conv.UpdatedAt,
		MessageCount:   len(msgs),
		NoteCount:      len(notes),
	}
	if md.EndTimestamp.IsZero() {
		md.EndTimestamp = conv.CreatedAt
	}
	if len(msgs) > 0 {
		md.StartTimestamp = msgs[0].CreatedAt
		md.EndTimestamp = msgs[len(msgs)-1].CreatedAt
	}
	if len(notes) > 0 {
		first := notes[0].CreatedAt
		last := notes[len(notes)-1].CreatedAt
		md.NotesStartTimestamp = &first
		md.NotesEndTimestamp = &last
	}
	return md
}
