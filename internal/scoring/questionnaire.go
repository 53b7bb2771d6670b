// internal/scoring/questionnaire.go
package scoring

import (
	"fmt"
)

// Enumerated questionnaire fields. Every value submitted by the form layer
// must belong to one of these closed sets; the normalizer rejects anything
// else before it can reach a lookup table.

type EducationLevel string

const (
	EducationHighSchool    EducationLevel = "high_school"
	EducationTechnical     EducationLevel = "technical"
	EducationBachelors     EducationLevel = "bachelors"
	EducationMasters       EducationLevel = "masters"
	EducationDoctorate     EducationLevel = "doctorate"
	EducationPostDoctorate EducationLevel = "post_doctorate"
)

type FieldOfStudy string

const (
	FieldSTEM     FieldOfStudy = "stem"
	FieldBusiness FieldOfStudy = "business"
	FieldHealth   FieldOfStudy = "health"
	FieldLaw      FieldOfStudy = "law"
	FieldArts     FieldOfStudy = "arts"
	FieldOther    FieldOfStudy = "other"
)

type LanguageTier string

const (
	LanguageNone         LanguageTier = "none"
	LanguageBasic        LanguageTier = "basic"
	LanguageIntermediate LanguageTier = "intermediate"
	LanguageAdvanced     LanguageTier = "advanced"
	LanguageFluent       LanguageTier = "fluent"
	LanguageNative       LanguageTier = "native"
)

type InvestmentBracket string

const (
	InvestmentNone      InvestmentBracket = "none"
	InvestmentUnder50K  InvestmentBracket = "under_50k"
	Investment50To100K  InvestmentBracket = "50k_100k"
	Investment100To500K InvestmentBracket = "100k_500k"
	Investment500KTo1M  InvestmentBracket = "500k_1m"
	InvestmentAbove1M   InvestmentBracket = "above_1m"
)

type PrimaryGoal string

const (
	GoalPermanentImmigration PrimaryGoal = "permanent_immigration"
	GoalLongTermWork         PrimaryGoal = "long_term_work"
	GoalStudy                PrimaryGoal = "study"
	GoalTourism              PrimaryGoal = "tourism"
	GoalUndecided            PrimaryGoal = "undecided"
)

type ImmigrationHistory string

const (
	HistoryNone         ImmigrationHistory = "none"
	HistoryPriorDenial  ImmigrationHistory = "prior_denial"
	HistoryOverstay     ImmigrationHistory = "overstay"
	HistoryEntryRefusal ImmigrationHistory = "entry_refusal"
	HistoryOtherIssues  ImmigrationHistory = "other_issues"
)

type FundsOrigin string

const (
	FundsDocumented    FundsOrigin = "documented"
	FundsUndocumented  FundsOrigin = "undocumented"
	FundsNotApplicable FundsOrigin = "not_applicable"
)

// QuestionnaireAnswers is the fully-typed, immutable input of a scoring run.
// Build it through Normalize; do not construct partially by hand outside
// tests.
type QuestionnaireAnswers struct {
	EducationLevel EducationLevel `json:"educationLevel"`
	FieldOfStudy   FieldOfStudy   `json:"fieldOfStudy"`
	Publications   int            `json:"publications"`
	Patents        int            `json:"patents"`

	YearsExperience    int  `json:"yearsExperience"`
	IsManager          bool `json:"isManager"`
	TeamSize           int  `json:"teamSize"`
	HasInternationalXP bool `json:"hasInternationalExperience"`
	Awards             int  `json:"awards"`

	EnglishLevel        LanguageTier `json:"englishLevel"`
	SecondaryLanguage   LanguageTier `json:"secondaryLanguage"`
	AdditionalLanguages int          `json:"additionalLanguages"`

	InvestmentCapacity InvestmentBracket `json:"investmentCapacity"`
	HasUSBusiness      bool              `json:"hasUsBusiness"`
	HasUSJobOffer      bool              `json:"hasUsJobOffer"`

	SpeakingEngagements int `json:"speakingEngagements"`

	PrimaryGoal PrimaryGoal        `json:"primaryGoal"`
	History     ImmigrationHistory `json:"immigrationHistory"`
	FundsOrigin FundsOrigin        `json:"fundsOrigin"`
}

// InvalidValueError reports a questionnaire field whose value is outside its
// declared enumeration. It is the scoring core's single error class.
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid questionnaire value: field %q has unrecognized value %q", e.Field, e.Value)
}

// Defaults applied when a field is absent from the raw answer map. The
// questionnaire is filled incrementally across UI steps, so absence is
// normal and never an error.
const (
	defaultEducation  = EducationBachelors
	defaultField      = FieldOther
	defaultYears      = 5
	defaultEnglish    = LanguageIntermediate
	defaultSecondary  = LanguageNone
	defaultInvestment = InvestmentNone
	defaultGoal       = GoalPermanentImmigration
	defaultHistory    = HistoryNone
	defaultFunds      = FundsDocumented
)

var (
	educationSet = map[EducationLevel]bool{
		EducationHighSchool: true, EducationTechnical: true, EducationBachelors: true,
		EducationMasters: true, EducationDoctorate: true, EducationPostDoctorate: true,
	}
	fieldSet = map[FieldOfStudy]bool{
		FieldSTEM: true, FieldBusiness: true, FieldHealth: true,
		FieldLaw: true, FieldArts: true, FieldOther: true,
	}
	languageSet = map[LanguageTier]bool{
		LanguageNone: true, LanguageBasic: true, LanguageIntermediate: true,
		LanguageAdvanced: true, LanguageFluent: true, LanguageNative: true,
	}
	investmentSet = map[InvestmentBracket]bool{
		InvestmentNone: true, InvestmentUnder50K: true, Investment50To100K: true,
		Investment100To500K: true, Investment500KTo1M: true, InvestmentAbove1M: true,
	}
	goalSet = map[PrimaryGoal]bool{
		GoalPermanentImmigration: true, GoalLongTermWork: true,
		GoalStudy: true, GoalTourism: true, GoalUndecided: true,
	}
	historySet = map[ImmigrationHistory]bool{
		HistoryNone: true, HistoryPriorDenial: true, HistoryOverstay: true,
		HistoryEntryRefusal: true, HistoryOtherIssues: true,
	}
	fundsSet = map[FundsOrigin]bool{
		FundsDocumented: true, FundsUndocumented: true, FundsNotApplicable: true,
	}
)

// Normalize builds a fully-populated QuestionnaireAnswers from a raw,
// possibly-partial answer map. Missing keys get documented defaults.
// Present keys whose value is outside the field's enumeration produce an
// *InvalidValueError so garbage never reaches the lookup tables.
func Normalize(raw map[string]interface{}) (QuestionnaireAnswers, error) {
	a := QuestionnaireAnswers{
		EducationLevel:     defaultEducation,
		FieldOfStudy:       defaultField,
		YearsExperience:    defaultYears,
		EnglishLevel:       defaultEnglish,
		SecondaryLanguage:  defaultSecondary,
		InvestmentCapacity: defaultInvestment,
		PrimaryGoal:        defaultGoal,
		History:            defaultHistory,
		FundsOrigin:        defaultFunds,
	}
	if raw == nil {
		return a, nil
	}

	if err := readEnum(raw, "educationLevel", educationSet, &a.EducationLevel); err != nil {
		return a, err
	}
	if err := readEnum(raw, "fieldOfStudy", fieldSet, &a.FieldOfStudy); err != nil {
		return a, err
	}
	if err := readEnum(raw, "englishLevel", languageSet, &a.EnglishLevel); err != nil {
		return a, err
	}
	if err := readEnum(raw, "secondaryLanguage", languageSet, &a.SecondaryLanguage); err != nil {
		return a, err
	}
	if err := readEnum(raw, "investmentCapacity", investmentSet, &a.InvestmentCapacity); err != nil {
		return a, err
	}
	if err := readEnum(raw, "primaryGoal", goalSet, &a.PrimaryGoal); err != nil {
		return a, err
	}
	if err := readEnum(raw, "immigrationHistory", historySet, &a.History); err != nil {
		return a, err
	}
	if err := readEnum(raw, "fundsOrigin", fundsSet, &a.FundsOrigin); err != nil {
		return a, err
	}

	a.Publications = readCount(raw, "publications", 0)
	a.Patents = readCount(raw, "patents", 0)
	a.YearsExperience = readCount(raw, "yearsExperience", defaultYears)
	a.TeamSize = readCount(raw, "teamSize", 0)
	a.Awards = readCount(raw, "awards", 0)
	a.AdditionalLanguages = readCount(raw, "additionalLanguages", 0)
	a.SpeakingEngagements = readCount(raw, "speakingEngagements", 0)

	a.IsManager = readBool(raw, "isManager")
	a.HasInternationalXP = readBool(raw, "hasInternationalExperience")
	a.HasUSBusiness = readBool(raw, "hasUsBusiness")
	a.HasUSJobOffer = readBool(raw, "hasUsJobOffer")

	return a, nil
}

func readEnum[T ~string](raw map[string]interface{}, key string, allowed map[T]bool, dst *T) error {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return &InvalidValueError{Field: key, Value: fmt.Sprintf("%v", v)}
	}
	if !allowed[T(s)] {
		return &InvalidValueError{Field: key, Value: s}
	}
	*dst = T(s)
	return nil
}

// readCount tolerates the numeric types JSON decoding produces. Negative or
// unparseable values fall back to the default; counters are non-negative by
// invariant.
func readCount(raw map[string]interface{}, key string, def int) int {
	v, ok := raw[key]
	if !ok || v == nil {
		return def
	}
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		n = int(t)
	default:
		return def
	}
	if n < 0 {
		return def
	}
	return n
}

func readBool(raw map[string]interface{}, key string) bool {
	if v, ok := raw[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}
