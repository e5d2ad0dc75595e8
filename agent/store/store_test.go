package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	storex "github.com/tanpawarit/screening-decision/agent/store"
	"github.com/tanpawarit/screening-decision/agent/store/storetest"
)

func TestGetMatchLoadsRelations(t *testing.T) {
	t.Parallel()

	db, st := storetest.New(t)
	f := storetest.Seed(t, db)

	match, err := st.GetMatch(context.Background(), f.Match.ID)
	require.NoError(t, err)
	require.NotNil(t, match.JobPosting)
	require.NotNil(t, match.JobPosting.Client)
	require.NotNil(t, match.Clinician)
	require.Equal(t, "ICU RN - Nights", match.JobPosting.Title)
	require.Equal(t, "Mercy General", match.JobPosting.Client.Name)
	require.Equal(t, "Dana Reyes", match.Clinician.Name)
	require.Equal(t, f.Team.ID, *match.JobPosting.TeamID)
}

func TestLookupsReportNotFound(t *testing.T) {
	t.Parallel()

	_, st := storetest.New(t)
	ctx := context.Background()

	_, err := st.GetConversation(ctx, uuid.New())
	require.ErrorIs(t, err, contractx.ErrNotFound)
	require.Equal(t, contractx.EntityConversation, contractx.NotFoundEntity(err))

	_, err = st.GetMatch(ctx, uuid.New())
	require.ErrorIs(t, err, contractx.ErrNotFound)
	require.Equal(t, contractx.EntityMatch, contractx.NotFoundEntity(err))

	_, err = st.GetTeam(ctx, uuid.New())
	require.ErrorIs(t, err, contractx.ErrNotFound)
	require.Equal(t, contractx.EntityTeam, contractx.NotFoundEntity(err))
}

func TestListMessagesOrderedByTimestamp(t *testing.T) {
	t.Parallel()

	db, st := storetest.New(t)
	f := storetest.Seed(t, db)
	f.AddMessages(t, db, "first", "second", "third")

	late := storex.Message{
		ID:             uuid.New(),
		ConversationID: f.Conversation.ID,
		Role:           storex.RoleUser,
		Content:        "zeroth",
		CreatedAt:      f.Base.Add(-time.Minute),
	}
	storetest.Insert(t, db, &late)

	msgs, err := st.ListMessages(context.Background(), f.Conversation.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	got := make([]string, 0, len(msgs))
	for _, m := range msgs {
		got = append(got, m.Content)
	}
	require.Equal(t, []string{"zeroth", "first", "second", "third"}, got)
}

func TestCreateDecisionFillsDefaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	db, st := storetest.New(t, storex.WithClock(func() time.Time { return now }))
	f := storetest.Seed(t, db)
	ctx := context.Background()

	d := &storex.Decision{
		Title:             "Clinician asked about parking",
		Body:              "Asked whether parking is provided.",
		DecisionType:      storex.DecisionClinicianQuestion,
		Priority:          storex.PriorityMedium,
		Reasoning:         "Assistant deflected.",
		TeamID:            f.Team.ID,
		ClientID:          f.Client.ID,
		JobPostingMatchID: f.Match.ID,
		ClinicianID:       f.Clinician.ID,
		ConversationID:    f.Conversation.ID,
	}
	require.NoError(t, st.CreateDecision(ctx, d))
	require.NotEqual(t, uuid.Nil, d.ID)
	require.Equal(t, storex.DecisionStatusPending, d.Status)
	require.True(t, d.CreatedAt.Equal(now))

	list, err := st.ListDecisionsByMatch(ctx, f.Match.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, d.ID, list[0].ID)
	require.Empty(t, list[0].QuotedExcerpts)
}

func TestFindSimilarDecisions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	db, st := storetest.New(t)
	f := storetest.Seed(t, db)
	ctx := context.Background()

	mk := func(title string, typ storex.DecisionType, age time.Duration) {
		t.Helper()
		require.NoError(t, st.CreateDecision(ctx, &storex.Decision{
			Title:             title,
			Body:              "body",
			DecisionType:      typ,
			Priority:          storex.PriorityLow,
			Reasoning:         "r",
			TeamID:            f.Team.ID,
			ClientID:          f.Client.ID,
			JobPostingMatchID: f.Match.ID,
			ClinicianID:       f.Clinician.ID,
			ConversationID:    f.Conversation.ID,
			CreatedAt:         now.Add(-age),
		}))
	}
	mk("Parking Availability question", storex.DecisionClinicianQuestion, time.Hour)
	mk("parking reimbursement", storex.DecisionClinicianQuestion, 48*time.Hour)
	mk("Parking badge", storex.DecisionInformationRequest, time.Hour)
	mk("100% remote request", storex.DecisionClinicianQuestion, time.Hour)

	got, err := st.FindSimilarDecisions(ctx, storex.DuplicateQuery{
		MatchID:       f.Match.ID,
		DecisionType:  storex.DecisionClinicianQuestion,
		TitleContains: "PARKING",
		Since:         now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Parking Availability question", got[0].Title)

	got, err = st.FindSimilarDecisions(ctx, storex.DuplicateQuery{
		MatchID:       f.Match.ID,
		DecisionType:  storex.DecisionClinicianQuestion,
		TitleContains: "0%",
		Since:         now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "100% remote request", got[0].Title)
}

func TestUpdateAnalysisStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	db, st := storetest.New(t, storex.WithClock(func() time.Time { return now }))
	f := storetest.Seed(t, db)
	ctx := context.Background()

	conv, err := st.UpdateAnalysisStatus(ctx, f.Conversation.ID, storex.AnalysisStatusUpdate{
		Completed:        true,
		DecisionsCreated: 2,
		Status:           "completed",
	})
	require.NoError(t, err)
	require.True(t, conv.AnalysisCompleted)
	require.Equal(t, 2, conv.DecisionsCreated)
	require.Equal(t, "completed", conv.AnalysisStatus)
	require.NotNil(t, conv.AnalyzedAt)
	require.True(t, conv.AnalyzedAt.Equal(now))

	_, err = st.UpdateAnalysisStatus(ctx, uuid.New(), storex.AnalysisStatusUpdate{Completed: true})
	require.True(t, errors.Is(err, contractx.ErrNotFound))
}

func TestFindSimilarDecisionsDefaultLimit(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	db, st := storetest.New(t)
	f := storetest.Seed(t, db)
	ctx := context.Background()

	var created []*storex.Decision
	for i := 0; i < 7; i++ {
		d := &storex.Decision{
			Title:             "Parking question",
			Body:              "body",
			DecisionType:      storex.DecisionClinicianQuestion,
			Priority:          storex.PriorityLow,
			Reasoning:         "r",
			TeamID:            f.Team.ID,
			ClientID:          f.Client.ID,
			JobPostingMatchID: f.Match.ID,
			ClinicianID:       f.Clinician.ID,
			ConversationID:    f.Conversation.ID,
			CreatedAt:         now.Add(-time.Duration(i+1) * time.Minute),
		}
		require.NoError(t, st.CreateDecision(ctx, d))
		created = append(created, d)
	}

	got, err := st.FindSimilarDecisions(ctx, storex.DuplicateQuery{
		MatchID:       f.Match.ID,
		DecisionType:  storex.DecisionClinicianQuestion,
		TitleContains: "parking",
		Since:         now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, d := range got {
		require.Equal(t, created[i].ID, d.ID, "position %d", i)
	}
}
