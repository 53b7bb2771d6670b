package augmentnarrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/scoring"
)

type mockStore struct {
	narrative string
	updateErr error
}

func (m *mockStore) UpdateNarrative(ctx context.Context, id, narrative string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.narrative = narrative
	return nil
}

func newTestHandler(t *testing.T, baseURL string, store *mockStore) *Handler {
	cfg := LoadConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 3 * time.Second
	cfg.MaxRetries = 2
	return NewHandler(cfg, store, logger.NewTestLogger(t))
}

func validInput() *Input {
	return &Input{
		LeadID:  "lead-123",
		Variant: "immigration",
		Score:   72,
		Tier:    "warm",
		Result: &scoring.Result{
			Strengths:        []string{"Formação acadêmica sólida"},
			RecommendedCodes: []string{"eb2_niw"},
		},
	}
}

func TestExecute_AttachesNarrative(t *testing.T) {
	var gotPrompt string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotPrompt, _ = body["prompt"].(string)
		json.NewEncoder(w).Encode(map[string]string{"text": "Seu perfil é promissor."})
	}))
	defer ts.Close()

	store := &mockStore{}
	h := newTestHandler(t, ts.URL, store)

	output, err := h.Execute(context.Background(), validInput())
	require.NoError(t, err)

	assert.True(t, output.Augmented)
	assert.Equal(t, "Seu perfil é promissor.", output.Narrative)
	assert.Equal(t, "Seu perfil é promissor.", store.narrative)
	assert.Contains(t, gotPrompt, "72")
	assert.Contains(t, gotPrompt, "eb2_niw")
}

func TestExecute_RetriesOnServerError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "Pronto."})
	}))
	defer ts.Close()

	store := &mockStore{}
	h := newTestHandler(t, ts.URL, store)

	output, err := h.Execute(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, output.Augmented)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestExecute_FailsAfterRetriesExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	h := newTestHandler(t, ts.URL, &mockStore{})

	_, err := h.Execute(context.Background(), validInput())
	assert.Error(t, err)
}

func TestExecute_EmptyResponseIsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": "   "})
	}))
	defer ts.Close()

	h := newTestHandler(t, ts.URL, &mockStore{})

	_, err := h.Execute(context.Background(), validInput())
	assert.Error(t, err)
}

func TestExecute_StoreFailurePropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": "Texto."})
	}))
	defer ts.Close()

	h := newTestHandler(t, ts.URL, &mockStore{updateErr: assert.AnError})

	_, err := h.Execute(context.Background(), validInput())
	assert.Error(t, err)
}

func TestExecute_UnconfiguredServiceFails(t *testing.T) {
	h := newTestHandler(t, "", &mockStore{})

	_, err := h.Execute(context.Background(), validInput())
	assert.Error(t, err)
}

func TestBuildPrompt_WithoutResult(t *testing.T) {
	input := validInput()
	input.Result = nil

	prompt := buildPrompt(input)
	assert.Contains(t, prompt, "72")
	assert.Contains(t, prompt, "warm")
}
