// internal/leads/repository.go

// Package leads owns lead persistence: the Postgres tables, the dedup
// window, the audit log and a short-lived Redis cache in front of reads.
package leads

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"raiox-platform/internal/common/errors"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DedupWindow is how long a repeat submission from the same email counts
// as a duplicate instead of a new lead.
const DedupWindow = 24 * time.Hour

const cacheTTL = 5 * time.Minute

// Repository persists leads. The cache client is optional; a nil cache
// simply sends every read to Postgres.
type Repository struct {
	db    *sql.DB
	cache *redis.Client
	log   logger.Logger
}

func NewRepository(db *sql.DB, cache *redis.Client, log logger.Logger) *Repository {
	return &Repository{db: db, cache: cache, log: log}
}

// Migrate brings the schema up to date using the embedded goose migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Create inserts a new lead after checking the dedup window. On success
// the lead's ID and CreatedAt are filled in and an audit row is written.
func (r *Repository) Create(ctx context.Context, lead *models.Lead) error {
	dup, err := r.hasRecentSubmission(ctx, lead.Contact.Email)
	if err != nil {
		return errors.NewQueryExecutionFailedError("dedup-check", err)
	}
	if dup {
		return errors.NewDuplicateLeadError(lead.Contact.Email)
	}

	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	answersJSON, err := json.Marshal(lead.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	resultJSON, err := json.Marshal(lead.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO leads (id, name, email, phone, source, consent, variant,
		                   answers, score, tier, result, narrative, crm_id,
		                   process_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		lead.ID, lead.Contact.Name, lead.Contact.Email, lead.Contact.Phone,
		lead.Contact.Source, lead.Contact.Consent, lead.Variant,
		answersJSON, lead.Score, string(lead.Tier), resultJSON,
		lead.Narrative, lead.CRMID, lead.ProcessKey,
		lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return errors.NewLeadPersistFailedError(err)
	}

	r.appendAudit(ctx, lead.ID, models.AuditLeadCaptured, fmt.Sprintf("variant=%s score=%d tier=%s", lead.Variant, lead.Score, lead.Tier))
	return nil
}

// GetByID loads one lead, serving from cache when possible.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	if lead := r.cacheGet(ctx, id); lead != nil {
		return lead, nil
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, source, consent, variant, answers,
		       score, tier, result, narrative, crm_id, process_key,
		       created_at, updated_at
		FROM leads
		WHERE id = $1`, id)

	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewLeadNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get-lead", err)
	}

	r.cacheSet(ctx, lead)
	return lead, nil
}

// List returns lead summaries for the back office, newest first.
func (r *Repository) List(ctx context.Context, filter models.LeadFilter) ([]models.LeadSummary, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, name, email, variant, score, tier, created_at
		FROM leads`
	args := []interface{}{}

	where := ""
	if filter.Tier != "" {
		args = append(args, string(filter.Tier))
		where = fmt.Sprintf(" WHERE tier = $%d", len(args))
	}
	if filter.Variant != "" {
		args = append(args, filter.Variant)
		if where == "" {
			where = fmt.Sprintf(" WHERE variant = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND variant = $%d", len(args))
		}
	}

	args = append(args, limit, filter.Offset)
	query += where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list-leads", err)
	}
	defer rows.Close()

	summaries := []models.LeadSummary{}
	for rows.Next() {
		var s models.LeadSummary
		var tier string
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Variant, &s.Score, &tier, &s.CreatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("list-leads", err)
		}
		s.Tier = scoring.LeadTier(tier)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// UpdateNarrative attaches the AI narrative to an already-stored lead.
func (r *Repository) UpdateNarrative(ctx context.Context, id, narrative string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE leads SET narrative = $1, updated_at = $2 WHERE id = $3`,
		narrative, time.Now().UTC(), id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("update-narrative", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewLeadNotFoundError(id)
	}

	r.cacheInvalidate(ctx, id)
	r.appendAudit(ctx, id, models.AuditNarrativeAttached, "")
	return nil
}

// SetCRMID records the CRM record backing this lead after a sync.
func (r *Repository) SetCRMID(ctx context.Context, id, crmID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE leads SET crm_id = $1, updated_at = $2 WHERE id = $3`,
		crmID, time.Now().UTC(), id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("set-crm-id", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewLeadNotFoundError(id)
	}

	r.cacheInvalidate(ctx, id)
	r.appendAudit(ctx, id, models.AuditCRMSynced, crmID)
	return nil
}

// RecordEvent writes a pipeline audit entry for the lead.
func (r *Repository) RecordEvent(ctx context.Context, id, event, detail string) {
	r.appendAudit(ctx, id, event, detail)
}

// AuditTrail returns the lead's lifecycle events in order.
func (r *Repository) AuditTrail(ctx context.Context, leadID string) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, lead_id, event, detail, created_at
		FROM lead_audit_log
		WHERE lead_id = $1
		ORDER BY created_at ASC`, leadID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("audit-trail", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Event, &detail, &e.CreatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("audit-trail", err)
		}
		e.Detail = detail.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repository) hasRecentSubmission(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM leads WHERE email = $1 AND created_at > $2`,
		email, time.Now().UTC().Add(-DedupWindow)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) appendAudit(ctx context.Context, leadID, event, detail string) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lead_audit_log (lead_id, event, detail) VALUES ($1, $2, $3)`,
		leadID, event, detail)
	if err != nil {
		// Audit is best effort; losing an entry must not fail the operation.
		r.log.Warn("failed to append audit entry", map[string]interface{}{
			"leadId": leadID,
			"event":  event,
			"error":  err.Error(),
		})
	}
}

func scanLead(row *sql.Row) (*models.Lead, error) {
	var lead models.Lead
	var phone, source, narrative, crmID sql.NullString
	var processKey sql.NullInt64
	var tier string
	var answersJSON, resultJSON []byte

	err := row.Scan(
		&lead.ID, &lead.Contact.Name, &lead.Contact.Email, &phone, &source,
		&lead.Contact.Consent, &lead.Variant, &answersJSON, &lead.Score,
		&tier, &resultJSON, &narrative, &crmID, &processKey,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Contact.Phone = phone.String
	lead.Contact.Source = source.String
	lead.Narrative = narrative.String
	lead.CRMID = crmID.String
	lead.ProcessKey = processKey.Int64
	lead.Tier = scoring.LeadTier(tier)

	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &lead.Answers); err != nil {
			return nil, fmt.Errorf("corrupt answers payload: %w", err)
		}
	}
	if len(resultJSON) > 0 && string(resultJSON) != "null" {
		lead.Result = &scoring.Result{}
		if err := json.Unmarshal(resultJSON, lead.Result); err != nil {
			return nil, fmt.Errorf("corrupt result payload: %w", err)
		}
	}

	return &lead, nil
}

func (r *Repository) cacheKey(id string) string {
	return "lead:" + id
}

func (r *Repository) cacheGet(ctx context.Context, id string) *models.Lead {
	if r.cache == nil {
		return nil
	}
	raw, err := r.cache.Get(ctx, r.cacheKey(id)).Result()
	if err != nil {
		return nil
	}
	var lead models.Lead
	if err := json.Unmarshal([]byte(raw), &lead); err != nil {
		return nil
	}
	return &lead
}

func (r *Repository) cacheSet(ctx context.Context, lead *models.Lead) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(lead)
	if err != nil {
		return
	}
	_ = r.cache.Set(ctx, r.cacheKey(lead.ID), raw, cacheTTL).Err()
}

func (r *Repository) cacheInvalidate(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Del(ctx, r.cacheKey(id)).Err()
}
