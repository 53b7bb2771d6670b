// internal/scoring/evaluation.go
package scoring

// evalContext threads one classification's running score and narrative
// through its adjustment rules. Rules run in declaration order; every rule
// that fires appends exactly one string, so the narrative is a byproduct of
// rule evaluation rather than a separate pass.
type evalContext struct {
	score        float64
	strengths    []string
	improvements []string
}

func (c *evalContext) bonus(delta float64, note string) {
	c.score += delta
	c.strengths = append(c.strengths, note)
}

func (c *evalContext) penalty(delta float64, note string) {
	c.score -= delta
	c.improvements = append(c.improvements, note)
}

// adjustmentRule inspects the answers (and, when useful, the category
// sub-scores) and applies at most one bonus or penalty to the context.
type adjustmentRule func(a QuestionnaireAnswers, cs CategoryScores, c *evalContext)

// categoryWeights is one classification's fixed weight vector over the five
// category scores. Components must sum to 1.0; the scorer tests enforce it.
type categoryWeights struct {
	Education    float64
	Professional float64
	Language     float64
	Financial    float64
	Achievements float64
}

func (w categoryWeights) sum() float64 {
	return w.Education + w.Professional + w.Language + w.Financial + w.Achievements
}

func (w categoryWeights) weighted(cs CategoryScores) float64 {
	return float64(cs.Education)*w.Education +
		float64(cs.Professional)*w.Professional +
		float64(cs.Language)*w.Language +
		float64(cs.Financial)*w.Financial +
		float64(cs.Achievements)*w.Achievements
}

// educationAtLeast compares credential tiers through the monotonic base
// table instead of string order.
func educationAtLeast(level, min EducationLevel) bool {
	return educationBase[level] >= educationBase[min]
}

// languageAtLeast compares fluency tiers the same way.
func languageAtLeast(tier, min LanguageTier) bool {
	return languageBase[tier] >= languageBase[min]
}

// investmentAtLeast compares capacity brackets the same way.
func investmentAtLeast(b, min InvestmentBracket) bool {
	return investmentBase[b] >= investmentBase[min]
}
