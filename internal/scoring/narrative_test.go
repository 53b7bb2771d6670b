// internal/scoring/narrative_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStepsByCode_CoversBothCatalogs(t *testing.T) {
	for _, p := range visaProfiles {
		steps, ok := nextStepsByCode[p.Code]
		assert.True(t, ok, "visa %q has no next steps", p.Code)
		assert.NotEmpty(t, steps, p.Code)
	}
	for _, track := range viabilityTracks {
		steps, ok := nextStepsByCode[track.Code]
		assert.True(t, ok, "track %q has no next steps", track.Code)
		assert.NotEmpty(t, steps, track.Code)
	}
}

func TestBuildNextSteps_Structure(t *testing.T) {
	steps := buildNextSteps(VisaEB1A)
	specific := nextStepsByCode[VisaEB1A]

	require.Len(t, steps, 3+len(specific))
	assert.Equal(t, "Organize a documentação pessoal e profissional (diplomas, contratos, comprovantes)", steps[0])
	assert.Equal(t, "Reúna cartas de referência de empregadores, clientes e parceiros", steps[1])
	assert.Equal(t, specific, steps[2:2+len(specific)])
	assert.Equal(t, "Agende uma consulta com um consultor de imigração licenciado", steps[len(steps)-1])
}

func TestBuildNextSteps_PanicsOnUnknownCode(t *testing.T) {
	assert.PanicsWithValue(t,
		`scoring: no next steps defined for classification "b2_tourist"`,
		func() { buildNextSteps("b2_tourist") })
}

func TestVisaName(t *testing.T) {
	assert.Equal(t, "EB-2 NIW (Interesse Nacional)", visaName(VisaEB2NIW))
	assert.Equal(t, "E-2 (Investidor de Tratado)", visaName(TrackE2))
	assert.Panics(t, func() { visaName("f1") })
}

func TestBuildProfileStrengths(t *testing.T) {
	tests := []struct {
		name     string
		answers  QuestionnaireAnswers
		expected []string
	}{
		{
			name:     "empty profile yields no strengths",
			answers:  QuestionnaireAnswers{EducationLevel: EducationHighSchool},
			expected: []string{},
		},
		{
			name: "strengths follow the fixed check order",
			answers: QuestionnaireAnswers{
				EducationLevel:  EducationDoctorate,
				FieldOfStudy:    FieldSTEM,
				YearsExperience: 15,
				EnglishLevel:    LanguageNative,
				Publications:    2,
			},
			expected: []string{
				"Formação acadêmica avançada (mestrado ou superior)",
				"Atuação em área STEM, prioritária nos vistos de habilidade",
				"15 anos de experiência profissional consolidada",
				"Inglês em nível fluente ou nativo",
				"2 publicação(ões) na sua área de atuação",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := ScoreCategories(tt.answers)
			assert.Equal(t, tt.expected, buildProfileStrengths(tt.answers, cs))
		})
	}
}

func TestBuildRecommendations(t *testing.T) {
	top := ClassificationScore{Code: VisaEB1A, Name: "EB-1A (Habilidade Extraordinária)", Score: 72}

	t.Run("opens with the top classification", func(t *testing.T) {
		a := QuestionnaireAnswers{
			EnglishLevel:       LanguageNative,
			Publications:       3,
			HasInternationalXP: true,
		}
		recs := buildRecommendations(top, a, ScoreCategories(a))
		require.NotEmpty(t, recs)
		assert.Equal(t,
			"Melhor enquadramento atual: EB-1A (Habilidade Extraordinária), com 72 pontos de compatibilidade",
			recs[0])
		assert.Len(t, recs, 1, "a complete profile gets no improvement advice")
	})

	t.Run("advice follows the priority order", func(t *testing.T) {
		a := QuestionnaireAnswers{EnglishLevel: LanguageBasic}
		recs := buildRecommendations(top, a, ScoreCategories(a))
		require.Len(t, recs, 4)
		assert.Contains(t, recs[1], "Invista no inglês")
		assert.Contains(t, recs[2], "Publique artigos")
		assert.Contains(t, recs[3], "internacionais")
	})

	t.Run("publication advice only for achievement-driven routes", func(t *testing.T) {
		h1bTop := ClassificationScore{Code: VisaH1B, Name: "H-1B (Trabalho com Patrocínio)", Score: 65}
		a := QuestionnaireAnswers{
			EnglishLevel:       LanguageFluent,
			HasInternationalXP: true,
		}
		recs := buildRecommendations(h1bTop, a, ScoreCategories(a))
		for _, r := range recs {
			assert.NotContains(t, r, "Publique artigos")
		}
		assert.Contains(t, recs[len(recs)-1], "patrocinam vistos")
	})
}
