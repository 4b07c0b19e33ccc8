package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/omnisales/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS workspaces (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	division   TEXT NOT NULL DEFAULT '',
	config     TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id),
	website      TEXT NOT NULL DEFAULT '',
	linkedin_url TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'NEW',
	payload      TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_workspace ON leads(workspace_id);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(workspace_id, status);
CREATE INDEX IF NOT EXISTS idx_leads_website ON leads(workspace_id, website);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertLead inserts the lead unless the workspace already tracks the same
// website or LinkedIn URL, in which case the existing record is refreshed
// with the incoming snapshot. The bool reports whether a new row was created.
func (s *SQLiteStore) UpsertLead(ctx context.Context, lead *model.Lead) (*model.Lead, bool, error) {
	existing, err := s.findDuplicate(ctx, lead)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		refreshLead(existing, lead)
		payload, err := json.Marshal(existing)
		if err != nil {
			return nil, false, eris.Wrap(err, "sqlite: marshal lead")
		}
		_, err = s.db.ExecContext(ctx,
			`UPDATE leads SET website = ?, linkedin_url = ?, payload = ?, updated_at = ? WHERE id = ?`,
			existing.Website, existing.LinkedinURL, string(payload), existing.UpdatedAt, existing.ID,
		)
		if err != nil {
			return nil, false, eris.Wrap(err, "sqlite: refresh lead")
		}
		return existing, false, nil
	}

	now := time.Now().UTC()
	prepareLead(lead, uuid.New().String(), now)

	payload, err := json.Marshal(lead)
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: marshal lead")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, workspace_id, website, linkedin_url, status, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.WorkspaceID, lead.Website, lead.LinkedinURL, string(lead.Status), string(payload), lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: insert lead")
	}
	return lead, true, nil
}

func (s *SQLiteStore) findDuplicate(ctx context.Context, lead *model.Lead) (*model.Lead, error) {
	query := `SELECT payload FROM leads WHERE workspace_id = ? AND (
		(website != '' AND website = ?) OR (linkedin_url != '' AND linkedin_url = ?)
	) LIMIT 1`

	var payload string
	err := s.db.QueryRowContext(ctx, query, lead.WorkspaceID, lead.Website, lead.LinkedinURL).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find duplicate")
	}
	return unmarshalLead(payload)
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM leads WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}
	return unmarshalLead(payload)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT payload FROM leads WHERE 1=1`
	var args []any

	if filter.WorkspaceID != "" {
		query += ` AND workspace_id = ?`
		args = append(args, filter.WorkspaceID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		l, err := unmarshalLead(payload)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

// UpdateLead applies a partial update inside a transaction: read, mutate,
// write back. SQLite serializes writers, so read-modify-write is safe here.
func (s *SQLiteStore) UpdateLead(ctx context.Context, id string, upd LeadUpdate) (*model.Lead, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin update")
	}
	defer tx.Rollback()

	var payload string
	err = tx.QueryRowContext(ctx, `SELECT payload FROM leads WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load lead %s", id)
	}

	lead, err := unmarshalLead(payload)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(lead, upd); err != nil {
		return nil, err
	}

	updated, err := json.Marshal(lead)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal lead")
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE leads SET payload = ?, status = ?, linkedin_url = ?, updated_at = ? WHERE id = ?`,
		string(updated), string(lead.Status), lead.LinkedinURL, lead.UpdatedAt, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update lead %s", id)
	}
	if err := checkRowsAffected(res, "lead", id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit update")
	}
	return lead, nil
}

func (s *SQLiteStore) ClearLeads(ctx context.Context, workspaceID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE workspace_id = ?`, workspaceID)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: clear leads")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// ImportLeads upserts each lead in turn, returning how many were new.
func (s *SQLiteStore) ImportLeads(ctx context.Context, leads []model.Lead) (int, error) {
	created := 0
	for i := range leads {
		_, isNew, err := s.UpsertLead(ctx, &leads[i])
		if err != nil {
			return created, err
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

func (s *SQLiteStore) CreateWorkspace(ctx context.Context, ws *model.Workspace) error {
	if ws.ID == "" {
		ws.ID = uuid.New().String()
	}
	configJSON, err := json.Marshal(ws.Config)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal config")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, division, config, created_at) VALUES (?, ?, ?, ?, ?)`,
		ws.ID, ws.Name, ws.Division, string(configJSON), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: insert workspace")
}

func (s *SQLiteStore) GetWorkspace(ctx context.Context, id string) (*model.Workspace, error) {
	var ws model.Workspace
	var configJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, division, config FROM workspaces WHERE id = ?`, id,
	).Scan(&ws.ID, &ws.Name, &ws.Division, &configJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: workspace %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get workspace %s", id)
	}
	if err := json.Unmarshal([]byte(configJSON), &ws.Config); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal config")
	}
	return &ws, nil
}

func (s *SQLiteStore) ListWorkspaces(ctx context.Context) ([]model.Workspace, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, division, config FROM workspaces ORDER BY created_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list workspaces")
	}
	defer rows.Close()

	var out []model.Workspace
	for rows.Next() {
		var ws model.Workspace
		var configJSON string
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Division, &configJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan workspace")
		}
		if err := json.Unmarshal([]byte(configJSON), &ws.Config); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal config")
		}
		out = append(out, ws)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list workspaces iterate")
}

func (s *SQLiteStore) SaveConfig(ctx context.Context, workspaceID string, cfg model.SystemConfig) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal config")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE workspaces SET config = ? WHERE id = ?`,
		string(configJSON), workspaceID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save config %s", workspaceID)
	}
	return checkRowsAffected(res, "workspace", workspaceID)
}

// GetConfig loads the workspace config with defaults filled in for any
// block the stored document omits.
func (s *SQLiteStore) GetConfig(ctx context.Context, workspaceID string) (model.SystemConfig, error) {
	ws, err := s.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return model.SystemConfig{}, err
	}
	return ws.Config.Merged(), nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

func unmarshalLead(payload string) (*model.Lead, error) {
	var l model.Lead
	if err := json.Unmarshal([]byte(payload), &l); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal lead payload")
	}
	return &l, nil
}
