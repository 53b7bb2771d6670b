package synccrm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiox-platform/internal/common/errors"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/common/zoho"
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"
)

type mockRepo struct {
	lead   *models.Lead
	crmID  string
	setErr error
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	if m.lead == nil || m.lead.ID != id {
		return nil, errors.NewLeadNotFoundError(id)
	}
	return m.lead, nil
}

func (m *mockRepo) SetCRMID(ctx context.Context, id, crmID string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.crmID = crmID
	return nil
}

type mockCRM struct {
	existing  []zoho.Lead
	searchErr error
	created   *zoho.Lead
	updated   *zoho.Lead
	updatedID string
	createErr error
}

func (m *mockCRM) CreateLead(ctx context.Context, lead *zoho.Lead) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.created = lead
	return "zoho-555", nil
}

func (m *mockCRM) UpdateLead(ctx context.Context, leadID string, lead *zoho.Lead) error {
	m.updatedID = leadID
	m.updated = lead
	return nil
}

func (m *mockCRM) SearchLeads(ctx context.Context, email string) ([]zoho.Lead, error) {
	return m.existing, m.searchErr
}

func storedLead() *models.Lead {
	return &models.Lead{
		ID: "lead-123",
		Contact: models.Contact{
			Name:  "Maria Silva Santos",
			Email: "maria@example.com",
			Phone: "+5511999990000",
		},
		Variant: "immigration",
		Score:   72,
		Tier:    scoring.TierWarm,
		Result: &scoring.Result{
			RecommendedCodes: []string{"eb2_niw", "h1b"},
		},
	}
}

func TestExecute_CreatesNewCRMLead(t *testing.T) {
	repo := &mockRepo{lead: storedLead()}
	crm := &mockCRM{}
	h := NewHandler(LoadConfig(), repo, crm, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{LeadID: "lead-123"})
	require.NoError(t, err)

	assert.True(t, output.Synced)
	assert.Equal(t, "zoho-555", output.CRMID)
	assert.Equal(t, "zoho-555", repo.crmID)

	require.NotNil(t, crm.created)
	assert.Equal(t, "Maria", crm.created.FirstName)
	assert.Equal(t, "Silva Santos", crm.created.LastName)
	assert.Equal(t, "raiox", crm.created.Source)
	assert.Equal(t, 72, crm.created.RaioxScore)
	assert.Equal(t, "warm", crm.created.LeadTier)
	assert.Equal(t, "eb2_niw", crm.created.RecommendedVisa)
}

func TestExecute_UpdatesExistingCRMLead(t *testing.T) {
	repo := &mockRepo{lead: storedLead()}
	crm := &mockCRM{existing: []zoho.Lead{{ID: "zoho-111", Email: "maria@example.com"}}}
	h := NewHandler(LoadConfig(), repo, crm, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{LeadID: "lead-123"})
	require.NoError(t, err)

	assert.Equal(t, "zoho-111", output.CRMID)
	assert.Equal(t, "zoho-111", crm.updatedID)
	assert.Nil(t, crm.created)
}

func TestExecute_UnknownLead(t *testing.T) {
	h := NewHandler(LoadConfig(), &mockRepo{}, &mockCRM{}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{LeadID: "missing"})
	assert.Error(t, err)
}

func TestExecute_CRMFailurePropagates(t *testing.T) {
	repo := &mockRepo{lead: storedLead()}
	crm := &mockCRM{createErr: errors.NewCRMSyncFailedError(assert.AnError)}
	h := NewHandler(LoadConfig(), repo, crm, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{LeadID: "lead-123"})
	assert.Error(t, err)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
	}{
		{"Maria Silva", "Maria", "Silva"},
		{"Maria Silva Santos", "Maria", "Silva Santos"},
		{"Cher", "", "Cher"},
		{"", "", "—"},
	}

	for _, tt := range tests {
		first, last := splitName(tt.name)
		assert.Equal(t, tt.first, first)
		assert.Equal(t, tt.last, last)
	}
}
