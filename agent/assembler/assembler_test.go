package assembler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	storex "github.com/tanpawarit/screening-decision/agent/store"
	"github.com/tanpawarit/screening-decision/agent/store/storetest"
)

func TestAssembleFullContext(t *testing.T) {
	t.Parallel()

	db, st := storetest.New(t)
	fx := storetest.Seed(t, db)
	fx.AddMessages(t, db,
		"Hi, is parking included at Mercy General?",
		"I don't have access to that information. You'll need to contact your recruiter.",
	)
	note := storex.Note{
		ID:             uuid.New(),
		ConversationID: fx.Conversation.ID,
		NoteType:       "concern",
		Content:        "Clinician worried about commute costs",
		CreatedAt:      fx.Base.Add(10 * time.Minute),
	}
	storetest.Insert(t, db, &note)

	longBody := strings.Repeat("é", 250)
	require.NoError(t, st.CreateDecision(context.Background(), &storex.Decision{
		Title:             "Earlier question",
		Body:              longBody,
		DecisionType:      storex.DecisionInformationRequest,
		Priority:          storex.PriorityLow,
		Reasoning:         "r",
		TeamID:            fx.Team.ID,
		ClientID:          fx.Client.ID,
		JobPostingMatchID: fx.Match.ID,
		ClinicianID:       fx.Clinician.ID,
		ConversationID:    fx.Conversation.ID,
	}))

	ac, err := New(st).Assemble(context.Background(), fx.Conversation.ID)
	require.NoError(t, err)

	require.Equal(t, contractx.Scope{
		TeamID:      fx.Team.ID,
		ClientID:    fx.Client.ID,
		MatchID:     fx.Match.ID,
		ClinicianID: fx.Clinician.ID,
	}, ac.Scope)
	require.Equal(t, "Travel Nursing East", ac.TeamName)
	require.Equal(t, "Mercy General", ac.ClientName)
	require.Equal(t, "Dana Reyes", ac.ClinicianName)
	require.Equal(t, "ICU RN - Nights", ac.JobTitle)

	require.Len(t, ac.Messages, 2)
	require.Equal(t, storex.RoleUser, ac.Messages[0].Role)
	require.Equal(t, 2, ac.Metadata.MessageCount)
	require.Equal(t, 1, ac.Metadata.NoteCount)
	require.True(t, ac.Metadata.StartTimestamp.Equal(fx.Base.Add(time.Minute)))
	require.True(t, ac.Metadata.EndTimestamp.Equal(fx.Base.Add(2*time.Minute)))
	require.NotNil(t, ac.Metadata.NotesStartTimestamp)
	require.True(t, ac.Metadata.NotesStartTimestamp.Equal(note.CreatedAt))

	require.Len(t, ac.ExistingDecisions, 1)
	preview := ac.ExistingDecisions[0].Body
	require.True(t, strings.HasSuffix(preview, "..."))
	require.Equal(t, 203, len([]rune(preview)))
}

func TestAssembleZeroMessages(t *testing.T) {
	t.Parallel()

	db, st := storetest.New(t)
	fx := storetest.Seed(t, db)

	ac, err := New(st).Assemble(context.Background(), fx.Conversation.ID)
	require.NoError(t, err)
	require.Equal(t, 0, ac.Metadata.MessageCount)
	require.Empty(t, ac.Messages)
	require.Nil(t, ac.Metadata.NotesStartTimestamp)
	require.True(t, ac.Metadata.StartTimestamp.Equal(fx.Conversation.CreatedAt))
	require.True(t, ac.Metadata.EndTimestamp.Equal(fx.Conversation.UpdatedAt))
	require.NotNil(t, ac.ExistingDecisions)
	require.Empty(t, ac.ExistingDecisions)
}

func TestAssembleMissingConversation(t *testing.T) {
	t.Parallel()

	_, st := storetest.New(t)
	_, err := New(st).Assemble(context.Background(), uuid.New())
	require.ErrorIs(t, err, contractx.ErrNotFound)
	require.Equal(t, contractx.EntityConversation, contractx.NotFoundEntity(err))
}

func TestAssembleMissingMatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		matchID *uuid.UUID
	}{
		{name: "no reference"},
		{name: "dangling reference", matchID: func() *uuid.UUID { id := uuid.New(); return &id }()},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			db, st := storetest.New(t)
			fx := storetest.Seed(t, db)
			conv := storex.Conversation{
				ID:        uuid.New(),
				UserID:    uuid.New(),
				Title:     "orphan",
				MatchID:   tc.matchID,
				CreatedAt: fx.Base,
				UpdatedAt: fx.Base,
			}
			storetest.Insert(t, db, &conv)

			_, err := New(st).Assemble(context.Background(), conv.ID)
			require.ErrorIs(t, err, contractx.ErrNotFound)
			require.Equal(t, contractx.EntityMatch, contractx.NotFoundEntity(err))
		})
	}
}

func TestAssembleJobPostingWithoutTeam(t *testing.T) {
	t.Parallel()

	db, st := storetest.New(t)
	fx := storetest.Seed(t, db)
	_, err := db.NewUpdate().
		Model((*storex.JobPosting)(nil)).
		Set("team_id = NULL").
		Where("id = ?", fx.JobPosting.ID).
		Exec(context.Background())
	require.NoError(t, err)

	_, err = New(st).Assemble(context.Background(), fx.Conversation.ID)
	require.ErrorIs(t, err, contractx.ErrNotFound)
	require.Equal(t, contractx.EntityTeam, contractx.NotFoundEntity(err))
}

func TestAssembleRejectsIncompleteScope(t *testing.T) {
	t.Parallel()

	db, st := storetest.New(t)
	fx := storetest.Seed(t, db)
	_, err := db.NewUpdate().
		Model((*storex.JobPosting)(nil)).
		Set("client_id = ?", uuid.Nil).
		Where("id = ?", fx.JobPosting.ID).
		Exec(context.Background())
	require.NoError(t, err)

	_, err = New(st).Assemble(context.Background(), fx.Conversation.ID)
	require.ErrorIs(t, err, contractx.ErrValidation)
	require.Contains(t, err.Error(), "client_id")
}

func TestAssembleUnknownTeamName(t *testing.T) {
	t.Parallel()

	db, st := storetest.New(t)
	fx := storetest.Seed(t, db)
	_, err := db.NewDelete().Model((*storex.Team)(nil)).Where("id = ?", fx.Team.ID).Exec(context.Background())
	require.NoError(t, err)

	ac, err := New(st).Assemble(context.Background(), fx.Conversation.ID)
	require.NoError(t, err)
	require.Equal(t, "Unknown Team", ac.TeamName)
	require.Equal(t, fx.Team.ID, ac.Scope.TeamID)
}

type brokenDecisionsStore struct {
	storex.Store
}

func (brokenDecisionsStore) ListDecisionsByMatch(context.Context, uuid.UUID) ([]storex.Decision, error) {
	return nil, errors.New("relation \"decisions\" does not exist")
}

func TestAssembleDecisionLoadFailureDegrades(t *testing.T) {
	t.Parallel()

	db, st := storetest.New(t)
	fx := storetest.Seed(t, db)

	ac, err := New(brokenDecisionsStore{Store: st}).Assemble(context.Background(), fx.Conversation.ID)
	require.NoError(t, err)
	require.NotNil(t, ac.ExistingDecisions)
	require.Empty(t, ac.ExistingDecisions)
}

func TestSortMessagesIsStable(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	msgs := []storex.Message{
		{Content: "b", CreatedAt: ts.Add(time.Minute)},
		{Content: "a1", CreatedAt: ts},
		{Content: "a2", CreatedAt: ts},
	}
	sortMessages(msgs)

	got := []string{msgs[0].Content, msgs[1].Content, msgs[2].Content}
	require.Equal(t, []string{"a1", "a2", "b"}, got)
}
