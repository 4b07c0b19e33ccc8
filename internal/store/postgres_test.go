package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisales/leadgen-cli/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("CREATE TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetLead(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT payload FROM leads WHERE id").
		WithArgs("l1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).
			AddRow([]byte(`{"id":"l1","workspaceId":"ws1","status":"NEW"}`)))

	lead, err := s.GetLead(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "l1", lead.ID)
	assert.Equal(t, model.StatusNew, lead.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetLead_NotFound(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT payload FROM leads WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetLead(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertLead_New(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT payload FROM leads WHERE workspace_id").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	lead, created, err := s.UpsertLead(context.Background(), &model.Lead{
		WorkspaceID: "ws1",
		Website:     "https://brightcare.example",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, lead.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertLead_Duplicate(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT payload FROM leads WHERE workspace_id").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).
			AddRow([]byte(`{"id":"existing","workspaceId":"ws1","status":"QUALIFIED","companyName":"Old Name"}`)))
	mock.ExpectExec("UPDATE leads SET website").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	lead, created, err := s.UpsertLead(context.Background(), &model.Lead{
		WorkspaceID: "ws1",
		CompanyName: "BrightCare Clinic",
		Website:     "https://brightcare.example",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "existing", lead.ID)
	assert.Equal(t, "BrightCare Clinic", lead.CompanyName, "duplicate refreshes the snapshot")
	assert.Equal(t, model.StatusQualified, lead.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveConfig_NotFound(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("UPDATE workspaces SET config").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SaveConfig(context.Background(), "missing", model.SystemConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClearLeads(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("DELETE FROM leads WHERE workspace_id").
		WithArgs("ws1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := s.ClearLeads(context.Background(), "ws1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
