package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

const defaultDuplicateLimit = 5

// Store is the persistence contract used by the analysis flow.
type Store interface {
	GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]Message, error)
	ListNotes(ctx context.Context, conversationID uuid.UUID) ([]Note, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*JobPostingMatch, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*Team, error)
	ListDecisionsByMatch(ctx context.Context, matchID uuid.UUID) ([]Decision, error)
	FindSimilarDecisions(ctx context.Context, q DuplicateQuery) ([]Decision, error)
	CreateDecision(ctx context.Context, d *Decision) error
	UpdateAnalysisStatus(ctx context.Context, conversationID uuid.UUID, upd AnalysisStatusUpdate) (*Conversation, error)
}

type DuplicateQuery struct {
	MatchID       uuid.UUID
	DecisionType  DecisionType
	TitleContains string
	Since         time.Time
	Limit         int
}

type AnalysisStatusUpdate struct {
	Completed        bool
	DecisionsCreated int
	Status           string
	AnalyzedAt       time.Time
}

// StoreOption customizes BunStore.
type StoreOption func(*BunStore)

func WithClock(now func() time.Time) StoreOption {
	return func(s *BunStore) {
		if now != nil {
			s.now = now
		}
	}
}

// BunStore implements Store on top of bun. Works with the postgres and sqlite dialects.
type BunStore struct {
	db  bun.IDB
	now func() time.Time
}

var _ Store = (*BunStore)(nil)

func NewBunStore(db bun.IDB, opts ...StoreOption) *BunStore {
	s := &BunStore{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateSchema creates all tables if they are missing.
func (s *BunStore) CreateSchema(ctx context.Context) error {
	for _, model := range Models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("%w: create table for %T: %v", contractx.ErrStore, model, err)
		}
	}
	return nil
}

func (s *BunStore) GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	conv := new(Conversation)
	err := s.db.NewSelect().Model(conv).Where("c.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, wrapLookup(err, contractx.EntityConversation, id)
	}
	return conv, nil
}

func (s *BunStore) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]Message, error) {
	var out []Message
	err := s.db.NewSelect().
		Model(&out).
		Where("m.conversation_id = ?", conversationID).
		OrderExpr("m.created_at ASC, m.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", contractx.ErrStore, err)
	}
	return out, nil
}

func (s *BunStore) ListNotes(ctx context.Context, conversationID uuid.UUID) ([]Note, error) {
	var out []Note
	err := s.db.NewSelect().
		Model(&out).
		Where("n.conversation_id = ?", conversationID).
		OrderExpr("n.created_at ASC, n.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list notes: %v", contractx.ErrStore, err)
	}
	return out, nil
}

// GetMatch loads the match with its job posting, client and clinician.
func (s *BunStore) GetMatch(ctx context.Context, id uuid.UUID) (*JobPostingMatch, error) {
	match := new(JobPostingMatch)
	err := s.db.NewSelect().
		Model(match).
		Relation("JobPosting").
		Relation("JobPosting.Client").
		Relation("Clinician").
		Where("jpm.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookup(err, contractx.EntityMatch, id)
	}
	return match, nil
}

func (s *BunStore) GetTeam(ctx context.Context, id uuid.UUID) (*Team, error) {
	team := new(Team)
	err := s.db.NewSelect().Model(team).Where("t.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, wrapLookup(err, contractx.EntityTeam, id)
	}
	return team, nil
}

func (s *BunStore) ListDecisionsByMatch(ctx context.Context, matchID uuid.UUID) ([]Decision, error) {
	var out []Decision
	err := s.db.NewSelect().
		Model(&out).
		Where("d.job_posting_match_id = ?", matchID).
		OrderExpr("d.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list decisions: %v", contractx.ErrStore, err)
	}
	return out, nil
}

// FindSimilarDecisions returns the newest decisions for the same match and type whose title
// contains q.TitleContains, ignoring case.
func (s *BunStore) FindSimilarDecisions(ctx context.Context, q DuplicateQuery) ([]Decision, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultDuplicateLimit
	}
	pattern := "%" + escapeLike(strings.ToLower(q.TitleContains)) + "%"

	var out []Decision
	err := s.db.NewSelect().
		Model(&out).
		Where("d.job_posting_match_id = ?", q.MatchID).
		Where("d.decision_type = ?", q.DecisionType).
		Where("d.created_at >= ?", q.Since.UTC()).
		Where("LOWER(d.title) LIKE ? ESCAPE '!'", pattern).
		OrderExpr("d.created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: find similar decisions: %v", contractx.ErrStore, err)
	}
	return out, nil
}

// CreateDecision inserts d, filling id, status and created_at when unset.
func (s *BunStore) CreateDecision(ctx context.Context, d *Decision) error {
	if d == nil {
		return fmt.Errorf("%w: decision is nil", contractx.ErrValidation)
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DecisionStatusPending
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}
	if d.QuotedExcerpts == nil {
		d.QuotedExcerpts = []string{}
	}
	if d.RelatedMessageIDs == nil {
		d.RelatedMessageIDs = []string{}
	}

	if _, err := s.db.NewInsert().Model(d).Exec(ctx); err != nil {
		return fmt.Errorf("%w: insert decision: %v", contractx.ErrStore, err)
	}
	return nil
}

// UpdateAnalysisStatus overwrites the analysis columns and touches updated_at.
func (s *BunStore) UpdateAnalysisStatus(
	ctx context.Context,
	conversationID uuid.UUID,
	upd AnalysisStatusUpdate,
) (*Conversation, error) {
	now := s.now().UTC()
	analyzedAt := upd.AnalyzedAt.UTC()
	if upd.AnalyzedAt.IsZero() {
		analyzedAt = now
	}

	res, err := s.db.NewUpdate().
		Model((*Conversation)(nil)).
		Set("analysis_completed = ?", upd.Completed).
		Set("decisions_created = ?", upd.DecisionsCreated).
		Set("analysis_status = ?", upd.Status).
		Set("analyzed_at = ?", analyzedAt).
		Set("updated_at = ?", now).
		Where("id = ?", conversationID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: update conversation status: %v", contractx.ErrStore, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, contractx.NotFound(contractx.EntityConversation, conversationID.String())
	}

	return s.GetConversation(ctx, conversationID)
}

func wrapLookup(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.NotFound(entity, id.String())
	}
	return fmt.Errorf("%w: get %s: %v", contractx.ErrStore, entity, err)
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
