// internal/scoring/questionnaire_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Defaults(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
	}{
		{name: "nil map", raw: nil},
		{name: "empty map", raw: map[string]interface{}{}},
		{name: "unknown keys ignored", raw: map[string]interface{}{"favoriteColor": "blue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Normalize(tt.raw)
			require.NoError(t, err)

			assert.Equal(t, EducationBachelors, a.EducationLevel)
			assert.Equal(t, FieldOther, a.FieldOfStudy)
			assert.Equal(t, 5, a.YearsExperience)
			assert.Equal(t, LanguageIntermediate, a.EnglishLevel)
			assert.Equal(t, LanguageNone, a.SecondaryLanguage)
			assert.Equal(t, InvestmentNone, a.InvestmentCapacity)
			assert.Equal(t, GoalPermanentImmigration, a.PrimaryGoal)
			assert.Equal(t, HistoryNone, a.History)
			assert.Equal(t, FundsDocumented, a.FundsOrigin)
			assert.Zero(t, a.Publications)
			assert.False(t, a.IsManager)
		})
	}
}

func TestNormalize_FullAnswerSet(t *testing.T) {
	raw := map[string]interface{}{
		"educationLevel":             "doctorate",
		"fieldOfStudy":               "stem",
		"publications":               float64(4), // JSON numbers decode as float64
		"patents":                    2,
		"yearsExperience":            12,
		"isManager":                  true,
		"teamSize":                   8,
		"hasInternationalExperience": true,
		"awards":                     3,
		"englishLevel":               "fluent",
		"secondaryLanguage":          "advanced",
		"additionalLanguages":        1,
		"investmentCapacity":         "500k_1m",
		"hasUsBusiness":              true,
		"hasUsJobOffer":              true,
		"speakingEngagements":        6,
		"primaryGoal":                "long_term_work",
		"immigrationHistory":         "none",
		"fundsOrigin":                "documented",
	}

	a, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, EducationDoctorate, a.EducationLevel)
	assert.Equal(t, FieldSTEM, a.FieldOfStudy)
	assert.Equal(t, 4, a.Publications)
	assert.Equal(t, 2, a.Patents)
	assert.Equal(t, 12, a.YearsExperience)
	assert.True(t, a.IsManager)
	assert.Equal(t, 8, a.TeamSize)
	assert.Equal(t, LanguageFluent, a.EnglishLevel)
	assert.Equal(t, LanguageAdvanced, a.SecondaryLanguage)
	assert.Equal(t, Investment500KTo1M, a.InvestmentCapacity)
	assert.Equal(t, GoalLongTermWork, a.PrimaryGoal)
}

func TestNormalize_InvalidEnumValue(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]interface{}
		field string
		value string
	}{
		{
			name:  "unknown education level",
			raw:   map[string]interface{}{"educationLevel": "phd"},
			field: "educationLevel",
			value: "phd",
		},
		{
			name:  "unknown goal",
			raw:   map[string]interface{}{"primaryGoal": "vacation"},
			field: "primaryGoal",
			value: "vacation",
		},
		{
			name:  "non-string enum value",
			raw:   map[string]interface{}{"englishLevel": 3},
			field: "englishLevel",
			value: "3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)

			var ive *InvalidValueError
			require.ErrorAs(t, err, &ive)
			assert.Equal(t, tt.field, ive.Field)
			assert.Equal(t, tt.value, ive.Value)
			assert.Contains(t, ive.Error(), tt.field)
			assert.Contains(t, ive.Error(), tt.value)
		})
	}
}

func TestNormalize_CounterSanitization(t *testing.T) {
	a, err := Normalize(map[string]interface{}{
		"publications":    -3,
		"yearsExperience": "twenty",
		"teamSize":        float64(7),
	})
	require.NoError(t, err)

	// Negative and unparseable counters fall back to their defaults.
	assert.Equal(t, 0, a.Publications)
	assert.Equal(t, 5, a.YearsExperience)
	assert.Equal(t, 7, a.TeamSize)
}
