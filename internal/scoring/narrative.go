// internal/scoring/narrative.go
package scoring

import "fmt"

// Deterministic narrative generation. No randomness, no time dependence:
// the same answers always produce the same strings in the same order.

// buildProfileStrengths appends one string per satisfied qualitative
// condition, checked in fixed order.
func buildProfileStrengths(a QuestionnaireAnswers, cs CategoryScores) []string {
	strengths := []string{}

	if educationAtLeast(a.EducationLevel, EducationMasters) {
		strengths = append(strengths, "Formação acadêmica avançada (mestrado ou superior)")
	}
	if a.FieldOfStudy == FieldSTEM {
		strengths = append(strengths, "Atuação em área STEM, prioritária nos vistos de habilidade")
	}
	if a.YearsExperience >= 10 {
		strengths = append(strengths, fmt.Sprintf("%d anos de experiência profissional consolidada", a.YearsExperience))
	}
	if a.IsManager {
		strengths = append(strengths, "Experiência comprovada em gestão de equipes")
	}
	if a.HasInternationalXP {
		strengths = append(strengths, "Vivência profissional internacional")
	}
	if languageAtLeast(a.EnglishLevel, LanguageFluent) {
		strengths = append(strengths, "Inglês em nível fluente ou nativo")
	}
	if a.Publications >= 1 {
		strengths = append(strengths, fmt.Sprintf("%d publicação(ões) na sua área de atuação", a.Publications))
	}
	if a.Patents >= 1 {
		strengths = append(strengths, fmt.Sprintf("%d patente(s) registrada(s)", a.Patents))
	}
	if a.Awards >= 1 {
		strengths = append(strengths, fmt.Sprintf("%d prêmio(s) ou reconhecimento(s) formal(is)", a.Awards))
	}
	if a.HasUSJobOffer {
		strengths = append(strengths, "Oferta de emprego firme nos Estados Unidos")
	}
	if a.HasUSBusiness {
		strengths = append(strengths, "Negócio próprio já estabelecido nos EUA")
	}

	return strengths
}

// buildRecommendations always opens by naming the top-ranked classification
// and its score, then walks a fixed priority list of improvement advice.
// Order follows the priority list, never score magnitude.
func buildRecommendations(top ClassificationScore, a QuestionnaireAnswers, cs CategoryScores) []string {
	recs := []string{
		fmt.Sprintf("Melhor enquadramento atual: %s, com %d pontos de compatibilidade", top.Name, top.Score),
	}

	if cs.Language < 60 {
		recs = append(recs, "Invista no inglês: a pontuação de idioma está limitando todas as categorias")
	}
	if achievementSensitive(top.Code) && a.Publications == 0 {
		recs = append(recs, "Publique artigos ou estudos de caso: a rota escolhida depende de produção documentada")
	}
	if !a.HasInternationalXP {
		recs = append(recs, "Busque projetos ou clientes internacionais para fortalecer o histórico global")
	}
	if investmentTrackCode(top.Code) && !investmentAtLeast(a.InvestmentCapacity, Investment500KTo1M) {
		recs = append(recs, "Planeje a composição de capital: a rota de investimento pede reserva acima da declarada")
	}
	if sponsorshipTrackCode(top.Code) && !a.HasUSJobOffer {
		recs = append(recs, "Concentre-se em processos seletivos com empresas que patrocinam vistos")
	}

	return recs
}

func achievementSensitive(code string) bool {
	return code == VisaEB1A || code == VisaO1
}

func investmentTrackCode(code string) bool {
	return code == VisaEB5 || code == TrackEB5D || code == TrackE2
}

func sponsorshipTrackCode(code string) bool {
	return code == VisaH1B || code == VisaL1 || code == TrackL1A
}

// nextStepsByCode maps every canonical classification code (both variants)
// to its specific action items. Coverage is a program invariant: an unknown
// code means the catalog and this table drifted apart, which is a bug, not
// a user error.
var nextStepsByCode = map[string][]string{
	VisaEB1A: {
		"Mapeie os critérios do USCIS que você já atende e os que faltam",
		"Levante cartas de especialistas reconhecidos na sua área",
		"Monte um dossiê de imprensa, citações e repercussão do seu trabalho",
	},
	VisaEB2NIW: {
		"Valide diploma e histórico com uma avaliação de equivalência americana",
		"Redija a tese de interesse nacional do seu projeto profissional",
	},
	VisaO1: {
		"Identifique um empregador ou agente americano disposto a peticionar",
		"Reúna provas de distinção: prêmios, júris, associações seletivas",
		"Estruture a agenda de trabalho que será apresentada ao USCIS",
	},
	VisaEB5: {
		"Solicite a documentação de origem lícita de todo o capital",
		"Compare projetos de centros regionais com investimento direto",
		"Faça a diligência financeira e imigratória do projeto escolhido",
	},
	VisaH1B: {
		"Cadastre-se em processos de empresas com histórico de patrocínio",
		"Prepare a avaliação de equivalência do diploma para a vaga",
	},
	VisaL1: {
		"Formalize um ano de vínculo com a empresa ligada à operação americana",
		"Documente a natureza gerencial ou especializada da sua função",
		"Alinhe com a matriz o plano de transferência e a estrutura nos EUA",
	},
	TrackE2: {
		"Avalie a obtenção de nacionalidade de país com tratado E-2",
		"Selecione um negócio operacional para compra ou abertura",
		"Prepare o plano de negócios no formato exigido pelo consulado",
	},
	TrackEB5D: {
		"Estruture a trilha documental da origem do capital",
		"Contrate o estudo de criação de empregos do empreendimento",
	},
	TrackL1A: {
		"Audite a saúde formal da empresa brasileira (um ano de operação)",
		"Desenhe o organograma que comprova sua função executiva",
		"Elabore o plano de negócios da filial americana para 5 anos",
	},
}

// buildNextSteps assembles the next-step list for the top-ranked
// classification: two universal openers, the classification-specific items,
// and the universal closing step.
func buildNextSteps(code string) []string {
	specific, ok := nextStepsByCode[code]
	if !ok {
		panic(fmt.Sprintf("scoring: no next steps defined for classification %q", code))
	}

	steps := []string{
		"Organize a documentação pessoal e profissional (diplomas, contratos, comprovantes)",
		"Reúna cartas de referência de empregadores, clientes e parceiros",
	}
	steps = append(steps, specific...)
	steps = append(steps, "Agende uma consulta com um consultor de imigração licenciado")
	return steps
}
