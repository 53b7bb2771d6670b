// internal/scoring/business.go
package scoring

// Business-viability variant: the first generation of the product, scoring
// how viable it is to move to the US through a business the lead owns or
// would open. Same category scorers, different classification set, and the
// overall score is a blend of the top ranked tracks instead of additive
// layers.

const VariantBusiness = "business"

// Canonical business track codes, in declaration order.
const (
	TrackE2   = "e2"
	TrackEB5D = "eb5_direct"
	TrackL1A  = "l1a"
)

// blendWeights blends the top three ranked tracks into the overall score,
// biasing toward the single best-fit path while still rewarding breadth.
var blendWeights = [3]float64{0.5, 0.3, 0.2}

var viabilityTracks = []visaProfile{
	{
		Code: TrackE2,
		Name: "E-2 (Investidor de Tratado)",
		Weights: categoryWeights{
			Education: 0.10, Professional: 0.25, Language: 0.10, Financial: 0.45, Achievements: 0.10,
		},
		Requirements: []string{
			"Investimento substancial em negócio operacional",
			"Nacionalidade de país com tratado (via Grenada/Portugal para brasileiros)",
			"Controle de pelo menos 50% da empresa",
		},
		Rules: []adjustmentRule{
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.HasUSBusiness {
					c.bonus(15, "Negócio americano já em operação encurta a análise do E-2")
				} else {
					c.penalty(15, "Estruture ou adquira uma operação nos EUA antes de aplicar")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if investmentAtLeast(a.InvestmentCapacity, Investment100To500K) {
					c.bonus(10, "Capital disponível dentro da faixa usual de aprovação do E-2")
				}
			},
		},
	},
	{
		Code: TrackEB5D,
		Name: "EB-5 Direto (Investimento Próprio)",
		Weights: categoryWeights{
			Education: 0.10, Professional: 0.15, Language: 0.10, Financial: 0.50, Achievements: 0.15,
		},
		Requirements: []string{
			"Investimento de US$ 1,05 milhão fora de área incentivada",
			"Gestão ativa do empreendimento",
			"Criação comprovada de 10 empregos",
		},
		Rules: []adjustmentRule{
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.InvestmentCapacity == InvestmentAbove1M {
					c.bonus(10, "Capacidade declarada cobre o investimento direto integral")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if !investmentAtLeast(a.InvestmentCapacity, Investment500KTo1M) {
					c.penalty(20, "O investimento direto exige capital acima do declarado; avalie rotas regionais")
				}
			},
		},
	},
	{
		Code: TrackL1A,
		Name: "L-1A (Expansão de Empresa Brasileira)",
		Weights: categoryWeights{
			Education: 0.10, Professional: 0.40, Language: 0.15, Financial: 0.30, Achievements: 0.05,
		},
		Requirements: []string{
			"Empresa brasileira ativa há pelo menos um ano",
			"Cargo gerencial ou executivo comprovado",
			"Plano de negócios para a filial americana",
		},
		Rules: []adjustmentRule{
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.IsManager {
					c.bonus(20, "Cargo gerencial atual atende o requisito executivo do L-1A")
				} else {
					c.penalty(20, "O L-1A exige função gerencial formal na empresa de origem")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.HasInternationalXP {
					c.bonus(5, "Vivência internacional facilita a gestão da filial americana")
				}
			},
		},
	},
}

// ViabilityScorer is the business-viability variant of the Scorer
// capability. Stateless like ProfileScorer.
type ViabilityScorer struct{}

func NewViabilityScorer() *ViabilityScorer { return &ViabilityScorer{} }

func (s *ViabilityScorer) Score(a QuestionnaireAnswers) *Result {
	cs := ScoreCategories(a)

	list := make([]ClassificationScore, 0, len(viabilityTracks))
	for _, t := range viabilityTracks {
		ctx := evalContext{score: t.Weights.weighted(cs)}
		for _, rule := range t.Rules {
			rule(a, cs, &ctx)
		}
		score := roundScore(ctx.score)
		list = append(list, ClassificationScore{
			Code:         t.Code,
			Name:         t.Name,
			Score:        score,
			Tier:         compatibilityTier(score),
			Requirements: t.Requirements,
			Strengths:    ctx.strengths,
			Improvements: ctx.improvements,
		})
	}
	rankClassifications(list)

	overall := blendOverall(list)
	top := list[0]

	return &Result{
		Variant:          VariantBusiness,
		OverallScore:     overall,
		Tier:             leadTier(overall),
		Categories:       cs,
		Classifications:  list,
		RecommendedCodes: recommendedCodes(list),
		Strengths:        buildProfileStrengths(a, cs),
		Recommendations:  buildRecommendations(top, a, cs),
		NextSteps:        buildNextSteps(top.Code),
	}
}

// blendOverall computes round(top1*0.5 + top2*0.3 + top3*0.2) over the
// ranked tracks, clamped to [0, 100]. Fewer than three tracks simply drop
// the missing terms.
func blendOverall(ranked []ClassificationScore) int {
	var sum float64
	for i := 0; i < len(ranked) && i < len(blendWeights); i++ {
		sum += float64(ranked[i].Score) * blendWeights[i]
	}
	return roundScore(sum)
}
