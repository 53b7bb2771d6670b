// internal/scoring/category.go
package scoring

// CategoryScores holds the five dimension sub-scores of one scoring run.
// Each is an integer in [0, 100].
type CategoryScores struct {
	Education    int `json:"education"`
	Professional int `json:"professional"`
	Language     int `json:"language"`
	Financial    int `json:"financial"`
	Achievements int `json:"achievements"`
}

// Base lookup tables. Exhaustive over their enumerations: adding a tier
// without updating these maps trips the exhaustiveness tests in
// category_test.go.
var educationBase = map[EducationLevel]int{
	EducationHighSchool:    10,
	EducationTechnical:     30,
	EducationBachelors:     45,
	EducationMasters:       65,
	EducationDoctorate:     85,
	EducationPostDoctorate: 100,
}

var languageBase = map[LanguageTier]int{
	LanguageNone:         0,
	LanguageBasic:        20,
	LanguageIntermediate: 40,
	LanguageAdvanced:     60,
	LanguageFluent:       80,
	LanguageNative:       100,
}

var investmentBase = map[InvestmentBracket]int{
	InvestmentNone:      0,
	InvestmentUnder50K:  20,
	Investment50To100K:  40,
	Investment100To500K: 60,
	Investment500KTo1M:  80,
	InvestmentAbove1M:   100,
}

// ScoreCategories runs the five dimension scorers over one answer set.
// Each scorer reads only its own fields, so the results compose into any
// visa profile by reweighting alone.
func ScoreCategories(a QuestionnaireAnswers) CategoryScores {
	return CategoryScores{
		Education:    EducationScore(a),
		Professional: ProfessionalScore(a),
		Language:     LanguageScore(a),
		Financial:    FinancialScore(a),
		Achievements: AchievementsScore(a),
	}
}

// EducationScore: credential base, +10 for STEM, publications at 3 pts each
// (cap 15), patents at 5 pts each (cap 20). Raw sum may exceed 100; the
// clamp applies last, not a rescale.
func EducationScore(a QuestionnaireAnswers) int {
	score := educationBase[a.EducationLevel]
	if a.FieldOfStudy == FieldSTEM {
		score += 10
	}
	score += capped(a.Publications*3, 15)
	score += capped(a.Patents*5, 20)
	return clamp(score)
}

// ProfessionalScore: 4 pts per year of experience (cap 40), management 15
// plus 1 pt per team member (cap 15), international experience 15, awards
// 5 pts each (cap 15).
func ProfessionalScore(a QuestionnaireAnswers) int {
	score := capped(a.YearsExperience*4, 40)
	if a.IsManager {
		score += 15
		score += capped(a.TeamSize, 15)
	}
	if a.HasInternationalXP {
		score += 15
	}
	score += capped(a.Awards*5, 15)
	return clamp(score)
}

// LanguageScore: primary tier base, a tenth of the secondary tier's base,
// and +3 per additional listed language (uncapped on its own, outer clamp
// still applies).
func LanguageScore(a QuestionnaireAnswers) int {
	score := languageBase[a.EnglishLevel]
	score += languageBase[a.SecondaryLanguage] / 10
	score += a.AdditionalLanguages * 3
	return clamp(score)
}

// FinancialScore: investment bracket base, +20 for an existing business,
// +30 for a firm US job offer.
func FinancialScore(a QuestionnaireAnswers) int {
	score := investmentBase[a.InvestmentCapacity]
	if a.HasUSBusiness {
		score += 20
	}
	if a.HasUSJobOffer {
		score += 30
	}
	return clamp(score)
}

// AchievementsScore: speaking 5/each cap 25, publications 5/each cap 25,
// patents 10/each cap 30, awards 5/each cap 20.
func AchievementsScore(a QuestionnaireAnswers) int {
	score := capped(a.SpeakingEngagements*5, 25)
	score += capped(a.Publications*5, 25)
	score += capped(a.Patents*10, 30)
	score += capped(a.Awards*5, 20)
	return clamp(score)
}

func capped(v, cap int) int {
	if v > cap {
		return cap
	}
	return v
}
