// internal/scoring/visas_test.go
package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// midCareerProfile is a deliberately mid-range immigration candidate used
// by the delta tests: no bonus or penalty pushes it against the 0/100
// clamps, so rule effects stay observable as exact differences.
func midCareerProfile() QuestionnaireAnswers {
	return QuestionnaireAnswers{
		EducationLevel:     EducationBachelors,
		FieldOfStudy:       FieldSTEM,
		YearsExperience:    10,
		EnglishLevel:       LanguageFluent,
		SecondaryLanguage:  LanguageNone,
		InvestmentCapacity: Investment100To500K,
		PrimaryGoal:        GoalPermanentImmigration,
		History:            HistoryNone,
		FundsOrigin:        FundsDocumented,
	}
}

func TestProfileScorer_Gatekeeper(t *testing.T) {
	scorer := NewProfileScorer()

	strong := midCareerProfile()
	strong.Publications = 10
	strong.Awards = 5
	strong.HasUSJobOffer = true

	for _, goal := range []PrimaryGoal{GoalTourism, GoalStudy, GoalUndecided} {
		t.Run(string(goal), func(t *testing.T) {
			a := strong
			a.PrimaryGoal = goal

			result := scorer.Score(a)
			require.NotNil(t, result)

			assert.Equal(t, VariantImmigration, result.Variant)
			assert.Equal(t, 0, result.OverallScore)
			assert.Equal(t, TierCold, result.Tier)
			assert.Empty(t, result.Classifications)
			assert.Empty(t, result.RecommendedCodes)
			assert.Empty(t, result.NextSteps)
			assert.NotEmpty(t, result.Recommendations, "gatekeeper output still guides the lead")
		})
	}
}

func TestProfileScorer_MidCareerBaseline(t *testing.T) {
	result := NewProfileScorer().Score(midCareerProfile())

	// Categories: education 55, professional 40, language 80, financial 60,
	// achievements 0. Weighted base .20/.25/.15/.20/.20 gives exactly 45.
	assert.Equal(t, CategoryScores{
		Education: 55, Professional: 40, Language: 80, Financial: 60, Achievements: 0,
	}, result.Categories)
	assert.Equal(t, 45, result.OverallScore)
	assert.Equal(t, TierCold, result.Tier)
	assert.Len(t, result.Classifications, len(visaProfiles))
}

func TestProfileScorer_RiskLayerDeltas(t *testing.T) {
	scorer := NewProfileScorer()
	baseline := scorer.Score(midCareerProfile()).OverallScore

	tests := []struct {
		name    string
		mutate  func(*QuestionnaireAnswers)
		penalty int
	}{
		{
			name:    "prior denial",
			mutate:  func(a *QuestionnaireAnswers) { a.History = HistoryPriorDenial },
			penalty: 30,
		},
		{
			name:    "overstay",
			mutate:  func(a *QuestionnaireAnswers) { a.History = HistoryOverstay },
			penalty: 30,
		},
		{
			name:    "entry refusal",
			mutate:  func(a *QuestionnaireAnswers) { a.History = HistoryEntryRefusal },
			penalty: 30,
		},
		{
			name:    "other issues",
			mutate:  func(a *QuestionnaireAnswers) { a.History = HistoryOtherIssues },
			penalty: 10,
		},
		{
			name:    "undocumented funds on investor track",
			mutate:  func(a *QuestionnaireAnswers) { a.FundsOrigin = FundsUndocumented },
			penalty: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := midCareerProfile()
			tt.mutate(&a)
			assert.Equal(t, baseline-tt.penalty, scorer.Score(a).OverallScore)
		})
	}
}

func TestProfileScorer_UndocumentedFundsOnlyPenalizesInvestors(t *testing.T) {
	scorer := NewProfileScorer()

	a := midCareerProfile()
	a.InvestmentCapacity = Investment50To100K
	documented := scorer.Score(a).OverallScore

	a.FundsOrigin = FundsUndocumented
	assert.Equal(t, documented, scorer.Score(a).OverallScore,
		"below the investor bracket funds origin must not move the score")
}

func TestProfileScorer_SituationalBonuses(t *testing.T) {
	scorer := NewProfileScorer()
	baseline := scorer.Score(midCareerProfile()).OverallScore

	// A job offer adds 30 to the financial category (weight .20) plus the
	// flat overall bonus of 10.
	withOffer := midCareerProfile()
	withOffer.HasUSJobOffer = true
	assert.Equal(t, baseline+16, scorer.Score(withOffer).OverallScore)

	// A US business adds 20 to financial (weight .20) plus the flat 5.
	withBusiness := midCareerProfile()
	withBusiness.HasUSBusiness = true
	assert.Equal(t, baseline+9, scorer.Score(withBusiness).OverallScore)
}

func TestProfileScorer_MonotonicInEducation(t *testing.T) {
	scorer := NewProfileScorer()

	bachelors := midCareerProfile()
	masters := midCareerProfile()
	masters.EducationLevel = EducationMasters

	assert.Greater(t, scorer.Score(masters).OverallScore, scorer.Score(bachelors).OverallScore)
}

func TestProfileScorer_Deterministic(t *testing.T) {
	scorer := NewProfileScorer()

	a := midCareerProfile()
	a.Publications = 4
	a.Awards = 2
	a.IsManager = true
	a.TeamSize = 6

	first := scorer.Score(a)
	second := scorer.Score(a)
	assert.Equal(t, first, second, "same answers must produce identical results")
}

func TestProfileScorer_ClassificationsRankedAndBounded(t *testing.T) {
	result := NewProfileScorer().Score(midCareerProfile())

	for i, c := range result.Classifications {
		assert.GreaterOrEqual(t, c.Score, 0, c.Code)
		assert.LessOrEqual(t, c.Score, 100, c.Code)
		assert.Equal(t, compatibilityTier(c.Score), c.Tier, c.Code)
		assert.NotEmpty(t, c.Requirements, c.Code)
		if i > 0 {
			assert.GreaterOrEqual(t, result.Classifications[i-1].Score, c.Score,
				"classifications must be ordered best first")
		}
	}
}

func TestRecommendedCodes(t *testing.T) {
	tests := []struct {
		name     string
		ranked   []ClassificationScore
		expected []string
	}{
		{
			name: "top three above threshold",
			ranked: []ClassificationScore{
				{Code: "a", Score: 90}, {Code: "b", Score: 70},
				{Code: "c", Score: 55}, {Code: "d", Score: 50},
			},
			expected: []string{"a", "b", "c"},
		},
		{
			name: "threshold cuts the list short",
			ranked: []ClassificationScore{
				{Code: "a", Score: 80}, {Code: "b", Score: 39}, {Code: "c", Score: 10},
			},
			expected: []string{"a"},
		},
		{
			name:     "nothing viable",
			ranked:   []ClassificationScore{{Code: "a", Score: 20}},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, recommendedCodes(tt.ranked))
		})
	}
}

func TestRankClassifications_StableOnTies(t *testing.T) {
	list := []ClassificationScore{
		{Code: "first", Score: 60},
		{Code: "second", Score: 60},
		{Code: "third", Score: 80},
		{Code: "fourth", Score: 60},
	}
	rankClassifications(list)

	codes := make([]string, 0, len(list))
	for _, c := range list {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"third", "first", "second", "fourth"}, codes,
		"equal scores keep their declaration order")
}

func TestTierThresholds(t *testing.T) {
	// Tier lower bounds are closed: the boundary score lands in the upper
	// bucket.
	assert.Equal(t, CompatibilityHigh, compatibilityTier(70))
	assert.Equal(t, CompatibilityMedium, compatibilityTier(69))
	assert.Equal(t, CompatibilityMedium, compatibilityTier(40))
	assert.Equal(t, CompatibilityLow, compatibilityTier(39))
	assert.Equal(t, CompatibilityLow, compatibilityTier(0))

	assert.Equal(t, TierHot, leadTier(75))
	assert.Equal(t, TierWarm, leadTier(74))
	assert.Equal(t, TierWarm, leadTier(50))
	assert.Equal(t, TierCold, leadTier(49))
	assert.Equal(t, TierCold, leadTier(0))
}

func TestWeightVectorsSumToOne(t *testing.T) {
	const tolerance = 1e-9

	for _, p := range visaProfiles {
		assert.InDelta(t, 1.0, p.Weights.sum(), tolerance, "visa %s", p.Code)
	}
	for _, track := range viabilityTracks {
		assert.InDelta(t, 1.0, track.Weights.sum(), tolerance, "track %s", track.Code)
	}
	assert.InDelta(t, 1.0, overallWeights.sum(), tolerance, "overall weights")

	var blend float64
	for _, w := range blendWeights {
		blend += w
	}
	assert.True(t, math.Abs(blend-1.0) < tolerance, "blend weights")
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 0, roundScore(-15.0))
	assert.Equal(t, 66, roundScore(66.0))
	assert.Equal(t, 67, roundScore(66.5))
	assert.Equal(t, 66, roundScore(66.49))
	assert.Equal(t, 100, roundScore(123.4))
}
