// internal/scoring/result.go
package scoring

import "sort"

// CompatibilityTier buckets one classification's score. Thresholds are
// fixed: high >= 70, medium >= 40, low below. Do not confuse with LeadTier.
type CompatibilityTier string

const (
	CompatibilityHigh   CompatibilityTier = "high"
	CompatibilityMedium CompatibilityTier = "medium"
	CompatibilityLow    CompatibilityTier = "low"
)

// LeadTier buckets the overall score for sales triage. Thresholds are
// fixed: hot >= 75, warm >= 50, cold below.
type LeadTier string

const (
	TierHot  LeadTier = "hot"
	TierWarm LeadTier = "warm"
	TierCold LeadTier = "cold"
)

// ClassificationScore is the fitness of one target classification (a visa
// category or business-viability track) for a single scoring run.
// Immutable once built; Strengths/Improvements keep rule evaluation order
// and are not deduplicated.
type ClassificationScore struct {
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	Score        int               `json:"score"`
	Tier         CompatibilityTier `json:"tier"`
	Requirements []string          `json:"requirements"`
	Strengths    []string          `json:"strengths"`
	Improvements []string          `json:"improvements"`
}

// Result is the overall output of one scoring run, shared by both scorer
// variants. Narrative is filled only by the external AI collaborator; the
// rest is complete and valid without it.
type Result struct {
	Variant          string                `json:"variant"`
	OverallScore     int                   `json:"overallScore"`
	Tier             LeadTier              `json:"tier"`
	Categories       CategoryScores        `json:"categories"`
	Classifications  []ClassificationScore `json:"classifications"`
	RecommendedCodes []string              `json:"recommendedCodes"`
	Strengths        []string              `json:"strengths"`
	Recommendations  []string              `json:"recommendations"`
	NextSteps        []string              `json:"nextSteps"`
	Narrative        string                `json:"narrative,omitempty"`
}

// Scorer is the shared capability implemented by the immigration-profile
// and business-viability variants.
type Scorer interface {
	Score(a QuestionnaireAnswers) *Result
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func roundScore(v float64) int {
	if v < 0 {
		return 0
	}
	n := int(v + 0.5)
	if n > 100 {
		return 100
	}
	return n
}

func compatibilityTier(score int) CompatibilityTier {
	switch {
	case score >= 70:
		return CompatibilityHigh
	case score >= 40:
		return CompatibilityMedium
	default:
		return CompatibilityLow
	}
}

func leadTier(score int) LeadTier {
	switch {
	case score >= 75:
		return TierHot
	case score >= 50:
		return TierWarm
	default:
		return TierCold
	}
}

// rankClassifications sorts by score descending. The sort is stable so
// equal scores keep their canonical declaration order.
func rankClassifications(list []ClassificationScore) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
}
