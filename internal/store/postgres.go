package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/omnisales/leadgen-cli/internal/db"
	"github.com/omnisales/leadgen-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot-path store operations.
var preparedStatements = map[string]string{
	"get_lead":      `SELECT payload FROM leads WHERE id = $1`,
	"insert_lead":   `INSERT INTO leads (id, workspace_id, website, linkedin_url, status, payload, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"update_lead":   `UPDATE leads SET payload = $1, status = $2, linkedin_url = $3, updated_at = $4 WHERE id = $5`,
	"get_workspace": `SELECT id, name, division, config FROM workspaces WHERE id = $1`,
	"save_config":   `UPDATE workspaces SET config = $1 WHERE id = $2`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool (used by tests with pgxmock).
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS workspaces (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	division   TEXT NOT NULL DEFAULT '',
	config     JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id),
	website      TEXT NOT NULL DEFAULT '',
	linkedin_url TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'NEW',
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_workspace ON leads(workspace_id);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(workspace_id, status);
CREATE INDEX IF NOT EXISTS idx_leads_website ON leads(workspace_id, website);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertLead(ctx context.Context, lead *model.Lead) (*model.Lead, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM leads WHERE workspace_id = $1 AND (
			(website != '' AND website = $2) OR (linkedin_url != '' AND linkedin_url = $3)
		) LIMIT 1`,
		lead.WorkspaceID, lead.Website, lead.LinkedinURL,
	).Scan(&payload)
	if err == nil {
		existing, uerr := unmarshalLead(string(payload))
		if uerr != nil {
			return nil, false, uerr
		}
		refreshLead(existing, lead)
		refreshed, merr := json.Marshal(existing)
		if merr != nil {
			return nil, false, eris.Wrap(merr, "postgres: marshal lead")
		}
		_, err = s.pool.Exec(ctx,
			`UPDATE leads SET website = $1, linkedin_url = $2, payload = $3, updated_at = $4 WHERE id = $5`,
			existing.Website, existing.LinkedinURL, refreshed, existing.UpdatedAt, existing.ID,
		)
		if err != nil {
			return nil, false, eris.Wrap(err, "postgres: refresh lead")
		}
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, eris.Wrap(err, "postgres: find duplicate")
	}

	now := time.Now().UTC()
	prepareLead(lead, uuid.New().String(), now)

	leadJSON, err := json.Marshal(lead)
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: marshal lead")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (id, workspace_id, website, linkedin_url, status, payload, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		lead.ID, lead.WorkspaceID, lead.Website, lead.LinkedinURL, string(lead.Status), leadJSON, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: insert lead")
	}
	return lead, true, nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM leads WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	return unmarshalLead(string(payload))
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT payload FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.WorkspaceID != "" {
		query += fmt.Sprintf(` AND workspace_id = $%d`, argIdx)
		args = append(args, filter.WorkspaceID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		l, err := unmarshalLead(string(payload))
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) UpdateLead(ctx context.Context, id string, upd LeadUpdate) (*model.Lead, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin update")
	}
	defer tx.Rollback(ctx)

	var payload []byte
	err = tx.QueryRow(ctx, `SELECT payload FROM leads WHERE id = $1 FOR UPDATE`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load lead %s", id)
	}

	lead, err := unmarshalLead(string(payload))
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(lead, upd); err != nil {
		return nil, err
	}

	updated, err := json.Marshal(lead)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal lead")
	}

	tag, err := tx.Exec(ctx,
		`UPDATE leads SET payload = $1, status = $2, linkedin_url = $3, updated_at = $4 WHERE id = $5`,
		updated, string(lead.Status), lead.LinkedinURL, lead.UpdatedAt, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit update")
	}
	return lead, nil
}

func (s *PostgresStore) ClearLeads(ctx context.Context, workspaceID string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE workspace_id = $1`, workspaceID)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: clear leads")
	}
	return int(tag.RowsAffected()), nil
}

// ImportLeads bulk-loads a lead snapshot via COPY into a temp table and a
// single merge, keyed on id. Rows without ids get one assigned first.
func (s *PostgresStore) ImportLeads(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(leads))
	for i := range leads {
		prepareLead(&leads[i], uuid.New().String(), now)
		payload, err := json.Marshal(&leads[i])
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal lead")
		}
		rows = append(rows, []any{
			leads[i].ID, leads[i].WorkspaceID, leads[i].Website, leads[i].LinkedinURL,
			string(leads[i].Status), payload, leads[i].CreatedAt, leads[i].UpdatedAt,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "leads",
		Columns:      []string{"id", "workspace_id", "website", "linkedin_url", "status", "payload", "created_at", "updated_at"},
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: import leads")
	}
	return int(n), nil
}

func (s *PostgresStore) CreateWorkspace(ctx context.Context, ws *model.Workspace) error {
	if ws.ID == "" {
		ws.ID = uuid.New().String()
	}
	configJSON, err := json.Marshal(ws.Config)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal config")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO workspaces (id, name, division, config, created_at) VALUES ($1, $2, $3, $4, $5)`,
		ws.ID, ws.Name, ws.Division, configJSON, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: insert workspace")
}

func (s *PostgresStore) GetWorkspace(ctx context.Context, id string) (*model.Workspace, error) {
	var ws model.Workspace
	var configJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, division, config FROM workspaces WHERE id = $1`, id,
	).Scan(&ws.ID, &ws.Name, &ws.Division, &configJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: workspace %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get workspace %s", id)
	}
	if err := json.Unmarshal(configJSON, &ws.Config); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal config")
	}
	return &ws, nil
}

func (s *PostgresStore) ListWorkspaces(ctx context.Context) ([]model.Workspace, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, division, config FROM workspaces ORDER BY created_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list workspaces")
	}
	defer rows.Close()

	var out []model.Workspace
	for rows.Next() {
		var ws model.Workspace
		var configJSON []byte
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Division, &configJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan workspace")
		}
		if err := json.Unmarshal(configJSON, &ws.Config); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal config")
		}
		out = append(out, ws)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list workspaces iterate")
}

func (s *PostgresStore) SaveConfig(ctx context.Context, workspaceID string, cfg model.SystemConfig) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal config")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE workspaces SET config = $1 WHERE id = $2`,
		configJSON, workspaceID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save config %s", workspaceID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: workspace %s", workspaceID)
	}
	return nil
}

func (s *PostgresStore) GetConfig(ctx context.Context, workspaceID string) (model.SystemConfig, error) {
	ws, err := s.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return model.SystemConfig{}, err
	}
	return ws.Config.Merged(), nil
}
