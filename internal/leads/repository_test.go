package leads

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiox-platform/internal/common/errors"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"
)

func setupRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db, nil, logger.NewTestLogger(t)), mock
}

func testLead() *models.Lead {
	return &models.Lead{
		Contact: models.Contact{
			Name:    "Maria Silva",
			Email:   "maria@example.com",
			Phone:   "+55 11 99999-0000",
			Source:  "landing-page",
			Consent: true,
		},
		Variant: "business",
		Answers: map[string]interface{}{"education": "bachelors"},
		Score:   72,
		Tier:    scoring.TierHot,
		Result: &scoring.Result{
			Variant:      "business",
			OverallScore: 72,
			Tier:         scoring.TierHot,
		},
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := setupRepository(t)
	lead := testLead()

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM leads WHERE email = \$1`).
		WithArgs(lead.Contact.Email, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO leads`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO lead_audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), lead)
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID, "Create should assign an id")
	assert.False(t, lead.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_DuplicateWithinWindow(t *testing.T) {
	repo, mock := setupRepository(t)
	lead := testLead()

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM leads WHERE email = \$1`).
		WithArgs(lead.Contact.Email, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Create(context.Background(), lead)
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDuplicateLead, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_AuditFailureDoesNotFailCreate(t *testing.T) {
	repo, mock := setupRepository(t)
	lead := testLead()

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM leads`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO leads`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO lead_audit_log`).
		WillReturnError(assert.AnError)

	err := repo.Create(context.Background(), lead)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func leadRow(t *testing.T, lead *models.Lead) *sqlmock.Rows {
	t.Helper()

	answersJSON, err := json.Marshal(lead.Answers)
	require.NoError(t, err)
	resultJSON, err := json.Marshal(lead.Result)
	require.NoError(t, err)

	return sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "source", "consent", "variant",
		"answers", "score", "tier", "result", "narrative", "crm_id",
		"process_key", "created_at", "updated_at",
	}).AddRow(
		lead.ID, lead.Contact.Name, lead.Contact.Email, lead.Contact.Phone,
		lead.Contact.Source, lead.Contact.Consent, lead.Variant,
		answersJSON, lead.Score, string(lead.Tier), resultJSON,
		lead.Narrative, lead.CRMID, lead.ProcessKey,
		lead.CreatedAt, lead.UpdatedAt,
	)
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := setupRepository(t)

	lead := testLead()
	lead.ID = "lead-123"
	lead.Narrative = "Perfil promissor para EB-2 NIW."
	lead.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lead.UpdatedAt = lead.CreatedAt

	mock.ExpectQuery(`SELECT id, name, email, phone, source, consent, variant`).
		WithArgs("lead-123").
		WillReturnRows(leadRow(t, lead))

	got, err := repo.GetByID(context.Background(), "lead-123")
	require.NoError(t, err)

	assert.Equal(t, "lead-123", got.ID)
	assert.Equal(t, "Maria Silva", got.Contact.Name)
	assert.Equal(t, scoring.TierHot, got.Tier)
	assert.Equal(t, "Perfil promissor para EB-2 NIW.", got.Narrative)
	require.NotNil(t, got.Result)
	assert.Equal(t, 72, got.Result.OverallScore)
	assert.Equal(t, "bachelors", got.Answers["education"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectQuery(`SELECT id, name, email, phone, source, consent, variant`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeLeadNotFound, stdErr.Code)
}

func TestRepository_List(t *testing.T) {
	repo, mock := setupRepository(t)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "variant", "score", "tier", "created_at"}).
		AddRow("lead-2", "Joao", "joao@example.com", "business", 80, "hot", time.Now()).
		AddRow("lead-1", "Ana", "ana@example.com", "business", 75, "hot", time.Now().Add(-time.Hour))

	mock.ExpectQuery(`SELECT id, name, email, variant, score, tier, created_at\s+FROM leads WHERE tier = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("hot", 50, 0).
		WillReturnRows(rows)

	summaries, err := repo.List(context.Background(), models.LeadFilter{Tier: scoring.TierHot})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "lead-2", summaries[0].ID)
	assert.Equal(t, scoring.TierHot, summaries[0].Tier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_TierAndVariantFilters(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectQuery(`FROM leads WHERE tier = \$1 AND variant = \$2`).
		WithArgs("warm", "immigration", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "variant", "score", "tier", "created_at"}))

	summaries, err := repo.List(context.Background(), models.LeadFilter{
		Tier:    scoring.TierWarm,
		Variant: "immigration",
		Limit:   10,
		Offset:  20,
	})
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateNarrative(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectExec(`UPDATE leads SET narrative = \$1`).
		WithArgs("Narrativa gerada.", sqlmock.AnyArg(), "lead-123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO lead_audit_log`).
		WithArgs("lead-123", models.AuditNarrativeAttached, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateNarrative(context.Background(), "lead-123", "Narrativa gerada.")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateNarrative_NotFound(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectExec(`UPDATE leads SET narrative = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateNarrative(context.Background(), "missing", "x")
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeLeadNotFound, stdErr.Code)
}

func TestRepository_SetCRMID(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectExec(`UPDATE leads SET crm_id = \$1`).
		WithArgs("zoho-555", sqlmock.AnyArg(), "lead-123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO lead_audit_log`).
		WithArgs("lead-123", models.AuditCRMSynced, "zoho-555").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SetCRMID(context.Background(), "lead-123", "zoho-555")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AuditTrail(t *testing.T) {
	repo, mock := setupRepository(t)

	rows := sqlmock.NewRows([]string{"id", "lead_id", "event", "detail", "created_at"}).
		AddRow(int64(1), "lead-123", models.AuditLeadCaptured, "variant=business score=72 tier=hot", time.Now().Add(-time.Minute)).
		AddRow(int64(2), "lead-123", models.AuditNarrativeAttached, nil, time.Now())

	mock.ExpectQuery(`SELECT id, lead_id, event, detail, created_at\s+FROM lead_audit_log`).
		WithArgs("lead-123").
		WillReturnRows(rows)

	entries, err := repo.AuditTrail(context.Background(), "lead-123")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditLeadCaptured, entries[0].Event)
	assert.Equal(t, "", entries[1].Detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func setupCachedRepository(t *testing.T) (*Repository, sqlmock.Sqlmock, redismock.ClientMock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, rmock := redismock.NewClientMock()
	return NewRepository(db, rdb, logger.NewTestLogger(t)), mock, rmock
}

func TestRepository_GetByID_ServedFromCache(t *testing.T) {
	repo, mock, rmock := setupCachedRepository(t)

	lead := testLead()
	lead.ID = "lead-123"
	raw, err := json.Marshal(lead)
	require.NoError(t, err)

	rmock.ExpectGet("lead:lead-123").SetVal(string(raw))

	got, err := repo.GetByID(context.Background(), "lead-123")
	require.NoError(t, err)
	assert.Equal(t, lead.Contact.Email, got.Contact.Email)
	assert.Equal(t, lead.Score, got.Score)

	// No SQL round-trip on a cache hit.
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestRepository_UpdateNarrative_InvalidatesCache(t *testing.T) {
	repo, mock, rmock := setupCachedRepository(t)

	mock.ExpectExec(`UPDATE leads SET narrative = \$1`).
		WithArgs("Narrativa gerada.", sqlmock.AnyArg(), "lead-123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	rmock.ExpectDel("lead:lead-123").SetVal(1)
	mock.ExpectExec(`INSERT INTO lead_audit_log`).
		WithArgs("lead-123", models.AuditNarrativeAttached, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateNarrative(context.Background(), "lead-123", "Narrativa gerada.")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, rmock.ExpectationsWereMet())
}
