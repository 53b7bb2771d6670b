package scorelead

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiox-platform/internal/common/logger"
)

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func validInput() *Input {
	return &Input{
		LeadID:  "lead-123",
		Variant: "immigration",
		Answers: map[string]interface{}{
			"educationLevel":     "bachelors",
			"fieldOfStudy":       "stem",
			"yearsExperience":    float64(10),
			"englishLevel":       "fluent",
			"investmentCapacity": "100k_500k",
			"primaryGoal":        "long_term_work",
		},
	}
}

func TestExecute_ImmigrationVariant(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "lead-123", output.LeadID)
	assert.GreaterOrEqual(t, output.Score, 0)
	assert.LessOrEqual(t, output.Score, 100)
	require.NotNil(t, output.Result)
	assert.Equal(t, "immigration", output.Result.Variant)
	assert.Equal(t, output.Score, output.Result.OverallScore)
	assert.Equal(t, output.Tier, string(output.Result.Tier))
	assert.NotEmpty(t, output.Result.Classifications)
}

func TestExecute_BusinessVariant(t *testing.T) {
	h := newTestHandler(t)

	input := validInput()
	input.Variant = "business"

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "business", output.Result.Variant)
}

func TestExecute_Deterministic(t *testing.T) {
	h := newTestHandler(t)

	first, err := h.Execute(context.Background(), validInput())
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Result.Classifications, second.Result.Classifications)
}

func TestExecute_EmptyAnswersUsesDefaults(t *testing.T) {
	h := newTestHandler(t)

	input := &Input{LeadID: "lead-123", Variant: "immigration", Answers: map[string]interface{}{}}
	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, output.Score, 0)
}

func TestExecute_InvalidInput(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name  string
		input *Input
	}{
		{"missing lead id", &Input{Variant: "immigration"}},
		{"unknown variant", &Input{LeadID: "lead-123", Variant: "horoscope"}},
		{"bad enum answer", &Input{
			LeadID:  "lead-123",
			Variant: "immigration",
			Answers: map[string]interface{}{"educationLevel": "bootcamp"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), tt.input)
			assert.Error(t, err)
		})
	}
}
