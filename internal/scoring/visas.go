// internal/scoring/visas.go
package scoring

import "fmt"

// Immigration-profile variant: scores the questionnaire against the US work
// visa categories the consultancy advises on.

const VariantImmigration = "immigration"

// Canonical visa codes, in declaration order. Ranking ties resolve to this
// order, so do not reorder without revisiting the ranking tests.
const (
	VisaEB1A   = "eb1a"
	VisaEB2NIW = "eb2_niw"
	VisaO1     = "o1"
	VisaEB5    = "eb5"
	VisaH1B    = "h1b"
	VisaL1     = "l1"
)

type visaProfile struct {
	Code         string
	Name         string
	Weights      categoryWeights
	Requirements []string
	Rules        []adjustmentRule
}

// visaProfiles is the canonical classification set of the immigration
// variant. Weight vectors each sum to 1.0; adjustment rules append exactly
// one narrative string when they fire.
var visaProfiles = []visaProfile{
	{
		Code: VisaEB1A,
		Name: "EB-1A (Habilidade Extraordinária)",
		Weights: categoryWeights{
			Education: 0.25, Professional: 0.20, Language: 0.10, Financial: 0.10, Achievements: 0.35,
		},
		Requirements: []string{
			"Reconhecimento nacional ou internacional na sua área",
			"Evidências em pelo menos 3 dos 10 critérios do USCIS",
			"Intenção de continuar atuando na área nos EUA",
		},
		Rules: []adjustmentRule{
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.Publications >= 3 {
					c.bonus(10, "Volume de publicações fortalece o critério de contribuições originais")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.Patents >= 1 {
					c.bonus(5, "Patentes registradas contam como contribuição original de grande relevância")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.Awards == 0 {
					c.penalty(10, "Busque prêmios ou reconhecimentos formais na sua área")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.SpeakingEngagements >= 5 {
					c.bonus(5, "Histórico consistente de palestras e participação em eventos")
				}
			},
		},
	},
	{
		Code: VisaEB2NIW,
		Name: "EB-2 NIW (Interesse Nacional)",
		Weights: categoryWeights{
			Education: 0.35, Professional: 0.25, Language: 0.10, Financial: 0.10, Achievements: 0.20,
		},
		Requirements: []string{
			"Grau avançado (mestrado+) ou habilidade excepcional",
			"Empreendimento de mérito substancial e importância nacional",
			"Posição favorável para dispensar a oferta de emprego",
		},
		Rules: []adjustmentRule{
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if educationAtLeast(a.EducationLevel, EducationMasters) {
					c.bonus(10, "Grau avançado atende diretamente o requisito acadêmico do EB-2")
				} else {
					c.penalty(10, "Considere concluir um mestrado ou comprovar habilidade excepcional")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.FieldOfStudy == FieldSTEM {
					c.bonus(5, "Áreas STEM recebem tratamento prioritário na análise de interesse nacional")
				}
			},
		},
	},
	{
		Code: VisaO1,
		Name: "O-1 (Habilidade Extraordinária Temporário)",
		Weights: categoryWeights{
			Education: 0.20, Professional: 0.25, Language: 0.10, Financial: 0.05, Achievements: 0.40,
		},
		Requirements: []string{
			"Distinção comprovada por prêmios, imprensa ou associações",
			"Agente ou empregador americano como peticionário",
			"Agenda de trabalho definida nos EUA",
		},
		Rules: []adjustmentRule{
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.Awards >= 3 {
					c.bonus(10, "Múltiplos prêmios sustentam o padrão de distinção do O-1")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.Publications == 0 && a.Patents == 0 {
					c.penalty(15, "Produza material publicado ou registrado que documente sua distinção")
				}
			},
		},
	},
	{
		Code: VisaEB5,
		Name: "EB-5 (Investidor Imigrante)",
		Weights: categoryWeights{
			Education: 0.10, Professional: 0.20, Language: 0.10, Financial: 0.50, Achievements: 0.10,
		},
		Requirements: []string{
			"Investimento mínimo de US$ 800 mil em área incentivada",
			"Criação de 10 empregos diretos nos EUA",
			"Origem lícita e documentada dos recursos",
		},
		Rules: []adjustmentRule{
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if investmentAtLeast(a.InvestmentCapacity, Investment500KTo1M) {
					c.bonus(15, "Capacidade de investimento compatível com o piso do programa EB-5")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if !investmentAtLeast(a.InvestmentCapacity, Investment100To500K) {
					c.penalty(20, "O capital declarado está abaixo do necessário para a rota de investidor")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.HasUSBusiness {
					c.bonus(5, "Negócio já constituído nos EUA reduz o risco do plano de investimento")
				}
			},
		},
	},
	{
		Code: VisaH1B,
		Name: "H-1B (Trabalho com Patrocínio)",
		Weights: categoryWeights{
			Education: 0.20, Professional: 0.25, Language: 0.10, Financial: 0.40, Achievements: 0.05,
		},
		Requirements: []string{
			"Oferta firme de emprego de empresa americana",
			"Formação superior na área da vaga",
			"Seleção na loteria anual do USCIS",
		},
		Rules: []adjustmentRule{
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.HasUSJobOffer {
					c.bonus(20, "Oferta de emprego firme é o requisito central do H-1B")
				} else {
					c.penalty(20, "Sem oferta de emprego americana o H-1B não avança; priorize processos seletivos")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if educationAtLeast(a.EducationLevel, EducationBachelors) {
					c.bonus(5, "Graduação completa atende o requisito mínimo de formação")
				}
			},
		},
	},
	{
		Code: VisaL1,
		Name: "L-1 (Transferência Intraempresa)",
		Weights: categoryWeights{
			Education: 0.15, Professional: 0.40, Language: 0.10, Financial: 0.25, Achievements: 0.10,
		},
		Requirements: []string{
			"Um ano de vínculo com empresa ligada à operação americana",
			"Função gerencial, executiva ou de conhecimento especializado",
			"Operação ativa (ou plano de abertura) nos EUA",
		},
		Rules: []adjustmentRule{
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.IsManager && a.HasInternationalXP {
					c.bonus(15, "Perfil gerencial com vivência internacional é o candidato típico do L-1")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if a.HasUSBusiness {
					c.bonus(10, "Empresa própria pode servir de base para a transferência L-1")
				}
			},
			func(a QuestionnaireAnswers, _ CategoryScores, c *evalContext) {
				if !a.HasInternationalXP {
					c.penalty(10, "Acumule experiência em operações internacionais da sua empresa")
				}
			},
		},
	},
}

// overallWeights blends the category scores into the base layer of the
// immigration overall score before the additive rule layers apply.
var overallWeights = categoryWeights{
	Education: 0.20, Professional: 0.25, Language: 0.15, Financial: 0.20, Achievements: 0.20,
}

// ProfileScorer is the immigration-profile variant of the Scorer
// capability. Zero value is ready to use; it holds no state across runs.
type ProfileScorer struct{}

func NewProfileScorer() *ProfileScorer { return &ProfileScorer{} }

// Score runs the full immigration pipeline: gatekeeper, category scorers,
// per-visa aggregation, ranking, additive overall layers and narrative.
func (s *ProfileScorer) Score(a QuestionnaireAnswers) *Result {
	if !immigrationIntent(a.PrimaryGoal) {
		return gatekeeperResult()
	}

	cs := ScoreCategories(a)

	list := make([]ClassificationScore, 0, len(visaProfiles))
	for _, p := range visaProfiles {
		ctx := evalContext{score: p.Weights.weighted(cs)}
		for _, rule := range p.Rules {
			rule(a, cs, &ctx)
		}
		score := roundScore(ctx.score)
		list = append(list, ClassificationScore{
			Code:         p.Code,
			Name:         p.Name,
			Score:        score,
			Tier:         compatibilityTier(score),
			Requirements: p.Requirements,
			Strengths:    ctx.strengths,
			Improvements: ctx.improvements,
		})
	}
	rankClassifications(list)

	overall := s.overallScore(a, cs)
	top := list[0]

	return &Result{
		Variant:          VariantImmigration,
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

// overallScore accumulates the additive rule layers of the immigration
// variant: a weighted base over the category scores, situational bonuses,
// then the risk layer. Risk penalties stay numeric deltas on the same scale
// as the bonuses; only the goal gatekeeper forces the floor outright.
func (s *ProfileScorer) overallScore(a QuestionnaireAnswers, cs CategoryScores) int {
	score := overallWeights.weighted(cs)

	if a.HasUSJobOffer {
		score += 10
	}
	if a.HasUSBusiness {
		score += 5
	}

	switch a.History {
	case HistoryPriorDenial, HistoryOverstay, HistoryEntryRefusal:
		score -= 30
	case HistoryOtherIssues:
		score -= 10
	}

	if investorTrack(a) && a.FundsOrigin == FundsUndocumented {
		score -= 40
	}

	return roundScore(score)
}

// immigrationIntent reports whether the stated goal is compatible with
// permanent or long-term work immigration. Anything else is scored on
// intent to return, not on merit.
func immigrationIntent(goal PrimaryGoal) bool {
	return goal == GoalPermanentImmigration || goal == GoalLongTermWork
}

// investorTrack marks applicants whose capacity puts an investment visa in
// play and therefore makes funds-of-origin legitimacy material.
func investorTrack(a QuestionnaireAnswers) bool {
	return investmentAtLeast(a.InvestmentCapacity, Investment100To500K)
}

// gatekeeperResult is the short-circuit output for non-immigrant intent:
// overall forced to 0, lowest tier, no per-visa scoring, and only the
// ties-to-home narrative.
func gatekeeperResult() *Result {
	return &Result{
		Variant:          VariantImmigration,
		OverallScore:     0,
		Tier:             TierCold,
		Classifications:  []ClassificationScore{},
		RecommendedCodes: []string{},
		Strengths: []string{
			"Vínculos sólidos com o Brasil (emprego, família, patrimônio) favorecem vistos de curta duração",
		},
		Recommendations: []string{
			"O objetivo informado não envolve imigração de longo prazo; o raio-x de vistos de trabalho não se aplica",
			"Para vistos de visita ou estudo, organize comprovantes de suporte financeiro e de retorno ao Brasil",
		},
		NextSteps: []string{},
	}
}

// recommendedCodes lists the top-ranked visas worth pursuing: at most three,
// medium compatibility or better.
func recommendedCodes(ranked []ClassificationScore) []string {
	codes := make([]string, 0, 3)
	for _, c := range ranked {
		if c.Score < 40 || len(codes) == 3 {
			break
		}
		codes = append(codes, c.Code)
	}
	return codes
}

func visaName(code string) string {
	for _, p := range visaProfiles {
		if p.Code == code {
			return p.Name
		}
	}
	for _, t := range viabilityTracks {
		if t.Code == code {
			return t.Name
		}
	}
	panic(fmt.Sprintf("scoring: unknown classification code %q", code))
}
