package indexlead

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiox-platform/internal/common/errors"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/models"
)

type mockLoader struct {
	lead *models.Lead
}

func (m *mockLoader) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	if m.lead == nil || m.lead.ID != id {
		return nil, errors.NewLeadNotFoundError(id)
	}
	return m.lead, nil
}

type mockIndexer struct {
	indexed *models.Lead
	err     error
}

func (m *mockIndexer) Index(ctx context.Context, lead *models.Lead) error {
	if m.err != nil {
		return m.err
	}
	m.indexed = lead
	return nil
}

func TestExecute_IndexesLead(t *testing.T) {
	loader := &mockLoader{lead: &models.Lead{ID: "lead-123", Score: 72}}
	indexer := &mockIndexer{}
	h := NewHandler(LoadConfig(), loader, indexer, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{LeadID: "lead-123"})
	require.NoError(t, err)

	assert.True(t, output.Indexed)
	require.NotNil(t, indexer.indexed)
	assert.Equal(t, "lead-123", indexer.indexed.ID)
}

func TestExecute_UnknownLead(t *testing.T) {
	h := NewHandler(LoadConfig(), &mockLoader{}, &mockIndexer{}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{LeadID: "missing"})
	assert.Error(t, err)
}

func TestExecute_IndexFailurePropagates(t *testing.T) {
	loader := &mockLoader{lead: &models.Lead{ID: "lead-123"}}
	indexer := &mockIndexer{err: errors.NewSearchIndexFailedError("lead-123", assert.AnError)}
	h := NewHandler(LoadConfig(), loader, indexer, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{LeadID: "lead-123"})
	assert.Error(t, err)
}

func TestExecute_MissingLeadID(t *testing.T) {
	h := NewHandler(LoadConfig(), &mockLoader{}, &mockIndexer{}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	assert.Error(t, err)
}
