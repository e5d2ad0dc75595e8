// Package storetest provides an in-memory SQLite store and an organizational fixture for tests.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	storex "github.com/tanpawarit/screening-decision/agent/store"
	databasex "github.com/tanpawarit/screening-decision/pkg/database"
)

// New opens a private in-memory database with the schema applied.
func New(t *testing.T, opts ...storex.StoreOption) (*bun.DB, *storex.BunStore) {
	t.Helper()

	db, err := databasex.Open(databasex.Config{
		Driver:       databasex.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	st := storex.NewBunStore(db, opts...)
	if err := st.CreateSchema(context.Background()); err != nil {
		t.Fatalf("CreateSchema() error = %v", err)
	}
	return db, st
}

// Fixture is a seeded team/client/clinician/job posting/match/conversation chain.
type Fixture struct {
	Team         storex.Team
	Client       storex.Client
	Clinician    storex.Clinician
	JobPosting   storex.JobPosting
	Match        storex.JobPostingMatch
	Conversation storex.Conversation
	Base         time.Time
}

func (f *Fixture) ScopeIDs() (teamID, clientID, matchID, clinicianID uuid.UUID) {
	return f.Team.ID, f.Client.ID, f.Match.ID, f.Clinician.ID
}

// Seed inserts a complete fixture. The conversation references the match.
func Seed(t *testing.T, db bun.IDB) *Fixture {
	t.Helper()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	teamID := uuid.New()
	f := &Fixture{
		Team:      storex.Team{ID: teamID, Name: "Travel Nursing East"},
		Client:    storex.Client{ID: uuid.New(), Name: "Mercy General"},
		Clinician: storex.Clinician{ID: uuid.New(), Name: "Dana Reyes"},
		Base:      base,
	}
	f.JobPosting = storex.JobPosting{
		ID:       uuid.New(),
		Title:    "ICU RN - Nights",
		ClientID: f.Client.ID,
		TeamID:   &teamID,
	}
	f.Match = storex.JobPostingMatch{
		ID:           uuid.New(),
		ClinicianID:  f.Clinician.ID,
		JobPostingID: f.JobPosting.ID,
		CreatedAt:    base,
	}
	matchID := f.Match.ID
	f.Conversation = storex.Conversation{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "Screening chat",
		MatchID:   &matchID,
		CreatedAt: base,
		UpdatedAt: base,
	}

	Insert(t, db, &f.Team, &f.Client, &f.Clinician, &f.JobPosting, &f.Match, &f.Conversation)
	return f
}

// AddMessages inserts alternating user/assistant messages one minute apart.
func (f *Fixture) AddMessages(t *testing.T, db bun.IDB, contents ...string) []storex.Message {
	t.Helper()

	out := make([]storex.Message, 0, len(contents))
	for i, content := range contents {
		role := storex.RoleUser
		if i%2 == 1 {
			role = storex.RoleAssistant
		}
		out = append(out, storex.Message{
			ID:             uuid.New(),
			ConversationID: f.Conversation.ID,
			Role:           role,
			Content:        content,
			CreatedAt:      f.Base.Add(time.Duration(i+1) * time.Minute),
		})
	}
	if len(out) > 0 {
		Insert(t, db, &out)
	}
	return out
}

func Insert(t *testing.T, db bun.IDB, models ...any) {
	t.Helper()
	for _, m := range models {
		if _, err := db.NewInsert().Model(m).Exec(context.Background()); err != nil {
			t.Fatalf("insert %T: %v", m, err)
		}
	}
}
