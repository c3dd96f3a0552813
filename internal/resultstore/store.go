package resultstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/emprendia/viability/internal/costreview"
)

// Store persists analysis sessions and complete analysis results in SQLite.
// Uniqueness is enforced by the schema: one session per business, one
// complete result per (business, module). Re-saving overwrites in place,
// so concurrent writers cannot produce duplicate rows.
type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS analysis_sessions (
	session_id  TEXT PRIMARY KEY,
	business_id INTEGER NOT NULL UNIQUE,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS complete_results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	module_id   INTEGER NOT NULL,
	session_id  TEXT NOT NULL DEFAULT '',
	saved_state TEXT NOT NULL DEFAULT 'COMPLETE',
	summary     TEXT NOT NULL DEFAULT '',
	updated_at  TEXT NOT NULL,
	UNIQUE (business_id, module_id)
);

CREATE TABLE IF NOT EXISTS analyzed_costs (
	result_id       INTEGER NOT NULL,
	position        INTEGER NOT NULL,
	cost_name       TEXT NOT NULL,
	received_value  REAL NOT NULL,
	estimated_range TEXT NOT NULL DEFAULT '',
	evaluation      TEXT NOT NULL,
	comment         TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (result_id, position)
);

CREATE TABLE IF NOT EXISTS detected_risks (
	result_id        INTEGER NOT NULL,
	position         INTEGER NOT NULL,
	risk             TEXT NOT NULL,
	direct_cause     TEXT NOT NULL DEFAULT '',
	potential_impact TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (result_id, position)
);

CREATE TABLE IF NOT EXISTS action_plan_items (
	result_id   INTEGER NOT NULL,
	position    INTEGER NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (result_id, position)
);
`

func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetOrCreateSession returns the session for a business, creating it on
// first use. The UNIQUE(business_id) constraint makes the insert a no-op
// when a session already exists, so concurrent callers converge on the
// same row.
func (s *Store) GetOrCreateSession(ctx context.Context, businessID int64) (AnalysisSession, error) {
	candidate := AnalysisSession{
		SessionID:  uuid.NewString(),
		BusinessID: businessID,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analysis_sessions (session_id, business_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (business_id) DO NOTHING`,
		candidate.SessionID, candidate.BusinessID, candidate.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return AnalysisSession{}, fmt.Errorf("create session: %w", err)
	}

	var row struct {
		SessionID string `db:"session_id"`
		CreatedAt string `db:"created_at"`
	}
	err = s.db.GetContext(ctx, &row,
		`SELECT session_id, created_at FROM analysis_sessions WHERE business_id = ?`, businessID)
	if err != nil {
		return AnalysisSession{}, fmt.Errorf("load session: %w", err)
	}

	out := AnalysisSession{SessionID: row.SessionID, BusinessID: businessID}
	out.CreatedAt, _ = time.Parse(time.RFC3339Nano, row.CreatedAt)
	return out, nil
}

// Save upserts a complete analysis result. Saving the same
// (business, module) twice keeps a single row with the latest payload;
// child rows from the previous save are replaced wholesale inside the
// same transaction.
func (s *Store) Save(ctx context.Context, res CompleteAnalysisResult) error {
	if res.UpdatedAt.IsZero() {
		res.UpdatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO complete_results (business_id, module_id, session_id, saved_state, summary, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (business_id, module_id) DO UPDATE SET
			session_id  = excluded.session_id,
			saved_state = excluded.saved_state,
			summary     = excluded.summary,
			updated_at  = excluded.updated_at`,
		res.BusinessID, res.ModuleID, res.SessionID, res.SavedState, res.Summary,
		res.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}

	var resultID int64
	err = tx.GetContext(ctx, &resultID,
		`SELECT id FROM complete_results WHERE business_id = ? AND module_id = ?`,
		res.BusinessID, res.ModuleID)
	if err != nil {
		return fmt.Errorf("resolve result id: %w", err)
	}

	for _, table := range []string{"analyzed_costs", "detected_risks", "action_plan_items"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE result_id = ?", resultID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, c := range res.AnalyzedCosts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO analyzed_costs (result_id, position, cost_name, received_value, estimated_range, evaluation, comment)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			resultID, i, c.CostName, c.ReceivedValue, c.EstimatedRange, string(c.Evaluation), c.Comment)
		if err != nil {
			return fmt.Errorf("insert analyzed cost: %w", err)
		}
	}
	for i, r := range res.DetectedRisks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO detected_risks (result_id, position, risk, direct_cause, potential_impact)
			 VALUES (?, ?, ?, ?, ?)`,
			resultID, i, r.Risk, r.DirectCause, r.PotentialImpact)
		if err != nil {
			return fmt.Errorf("insert risk: %w", err)
		}
	}
	for i, a := range res.ActionPlan {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO action_plan_items (result_id, position, title, description, priority)
			 VALUES (?, ?, ?, ?, ?)`,
			resultID, i, a.Title, a.Description, string(a.Priority))
		if err != nil {
			return fmt.Errorf("insert plan item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Get loads the complete result for a (business, module) pair.
// Returns ErrNotFound when nothing has been saved yet.
func (s *Store) Get(ctx context.Context, businessID, moduleID int64) (CompleteAnalysisResult, error) {
	var row struct {
		ID         int64  `db:"id"`
		SessionID  string `db:"session_id"`
		SavedState string `db:"saved_state"`
		Summary    string `db:"summary"`
		UpdatedAt  string `db:"updated_at"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT id, session_id, saved_state, summary, updated_at
		 FROM complete_results WHERE business_id = ? AND module_id = ?`,
		businessID, moduleID)
	if errors.Is(err, sql.ErrNoRows) {
		return CompleteAnalysisResult{}, fmt.Errorf("result business=%d module=%d: %w", businessID, moduleID, ErrNotFound)
	}
	if err != nil {
		return CompleteAnalysisResult{}, fmt.Errorf("load result: %w", err)
	}

	out := CompleteAnalysisResult{
		BusinessID: businessID,
		ModuleID:   moduleID,
		SessionID:  row.SessionID,
		SavedState: row.SavedState,
		Summary:    row.Summary,
	}
	out.UpdatedAt, _ = time.Parse(time.RFC3339Nano, row.UpdatedAt)

	costs, err := s.loadAnalyzedCosts(ctx, row.ID)
	if err != nil {
		return CompleteAnalysisResult{}, err
	}
	out.AnalyzedCosts = costs

	risks, err := s.loadRisks(ctx, row.ID)
	if err != nil {
		return CompleteAnalysisResult{}, err
	}
	out.DetectedRisks = risks

	plan, err := s.loadPlanItems(ctx, row.ID)
	if err != nil {
		return CompleteAnalysisResult{}, err
	}
	out.ActionPlan = plan

	return out, nil
}

func (s *Store) loadAnalyzedCosts(ctx context.Context, resultID int64) ([]costreview.AnalyzedCost, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cost_name, received_value, estimated_range, evaluation, comment
		 FROM analyzed_costs WHERE result_id = ? ORDER BY position`, resultID)
	if err != nil {
		return nil, fmt.Errorf("load analyzed costs: %w", err)
	}
	defer rows.Close()

	var out []costreview.AnalyzedCost
	for rows.Next() {
		var c costreview.AnalyzedCost
		var eval string
		if err := rows.Scan(&c.CostName, &c.ReceivedValue, &c.EstimatedRange, &eval, &c.Comment); err != nil {
			return nil, err
		}
		c.Evaluation = costreview.CostEvaluation(eval)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) loadRisks(ctx context.Context, resultID int64) ([]costreview.DetectedRisk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT risk, direct_cause, potential_impact
		 FROM detected_risks WHERE result_id = ? ORDER BY position`, resultID)
	if err != nil {
		return nil, fmt.Errorf("load risks: %w", err)
	}
	defer rows.Close()

	var out []costreview.DetectedRisk
	for rows.Next() {
		var r costreview.DetectedRisk
		if err := rows.Scan(&r.Risk, &r.DirectCause, &r.PotentialImpact); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) loadPlanItems(ctx context.Context, resultID int64) ([]costreview.ActionPlanItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, description, priority
		 FROM action_plan_items WHERE result_id = ? ORDER BY position`, resultID)
	if err != nil {
		return nil, fmt.Errorf("load plan items: %w", err)
	}
	defer rows.Close()

	var out []costreview.ActionPlanItem
	for rows.Next() {
		var a costreview.ActionPlanItem
		var prio string
		if err := rows.Scan(&a.Title, &a.Description, &prio); err != nil {
			return nil, err
		}
		a.Priority = costreview.PlanPriority(prio)
		out = append(out, a)
	}
	return out, rows.Err()
}
