// Package scoring computes multi-factor quality scores for knowledge
// entries. All scores use the 0-10 raw scale: completeness 0-3, relevance
// 0-2, specificity 0-2, persona usefulness 0-2, deployment priority 0-1.
package scoring

import (
	"math"
	"regexp"
	"strings"

	"factkb/internal/persona"
	"factkb/internal/similarity"
	"factkb/models"
)

// MaxScore is the top of the raw quality scale.
const MaxScore = 10.0

// Sub-score maxima.
const (
	maxCompleteness       = 3.0
	maxRelevance          = 2.0
	maxSpecificity        = 2.0
	maxPersonaUsefulness  = 2.0
	maxDeploymentPriority = 1.0
)

// failedQuestionThreshold is the word-Jaccard overlap above which a question
// is considered to cover a known failed test question.
const failedQuestionThreshold = 0.6

var (
	costPattern      = regexp.MustCompile(`\$\s*\d`)
	timePattern      = regexp.MustCompile(`(?i)\b\d+\s*(?:business\s+)?(?:day|week|month|year)s?\b`)
	percentPattern   = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:%|percent)`)
	stepListPattern  = regexp.MustCompile(`(?m)(?:^|\s)\d+[.)]\s`)
	stateCodePattern = regexp.MustCompile(`\b(?:AL|AK|AZ|AR|CA|CO|CT|DE|FL|GA|HI|ID|IL|IN|IA|KS|KY|LA|ME|MD|MA|MI|MN|MS|MO|MT|NE|NV|NH|NJ|NM|NY|NC|ND|OH|OK|OR|PA|RI|SC|SD|TN|TX|UT|VT|VA|WA|WV|WI|WY)\b`)
)

var actionablePhrases = []string{"next step", "here s how", "requirement"}

var domainTerms = []string{
	"license", "bond", "permit", "exam", "qualifier", "insurance",
	"contractor", "certification", "reciprocity", "apprenticeship",
}

// Breakdown carries the five sub-scores plus the clamped total. The letter
// grade is derived for reporting only and never feeds back into selection.
type Breakdown struct {
	Completeness       float64 `json:"completeness"`
	Relevance          float64 `json:"relevance"`
	Specificity        float64 `json:"specificity"`
	PersonaUsefulness  float64 `json:"persona_usefulness"`
	DeploymentPriority float64 `json:"deployment_priority"`
	Total              float64 `json:"total"`
	Grade              string  `json:"grade"`
	BestPersona        string  `json:"best_persona,omitempty"`
}

// Config tunes the deployment-priority bonuses. Zero values disable the
// corresponding bonus.
type Config struct {
	FailedQuestions     []string
	HighValueCategories []string
	CriticalKeywords    []string
}

// Scorer scores entries. It is a pure function of (entry, config); scoring
// never mutates the entry it is given.
type Scorer struct {
	cfg           Config
	highValue     map[string]struct{}
	criticalLower []string
}

func New(cfg Config) *Scorer {
	s := &Scorer{cfg: cfg, highValue: make(map[string]struct{}, len(cfg.HighValueCategories))}
	for _, c := range cfg.HighValueCategories {
		s.highValue[c] = struct{}{}
	}
	for _, kw := range cfg.CriticalKeywords {
		s.criticalLower = append(s.criticalLower, strings.ToLower(kw))
	}
	return s
}

// Score computes the breakdown for a single entry. A malformed entry is the
// only error path; the caller decides whether that means skip or score zero.
func (s *Scorer) Score(e *models.KnowledgeEntry) (Breakdown, error) {
	if err := e.Validate(); err != nil {
		return Breakdown{Grade: "F"}, err
	}

	b := Breakdown{
		Completeness: s.completeness(e),
		Relevance:    s.relevance(e),
		Specificity:  s.specificity(e),
	}
	b.PersonaUsefulness, b.BestPersona = s.personaUsefulness(e)
	b.DeploymentPriority = s.deploymentPriority(e)

	total := b.Completeness + b.Relevance + b.Specificity + b.PersonaUsefulness + b.DeploymentPriority
	b.Total = math.Min(math.Max(total, 0), MaxScore)
	b.Grade = Grade(b.Total)
	return b, nil
}

// completeness rewards thorough, concrete answers with diminishing returns;
// length alone is never worth more than the mid tier.
func (s *Scorer) completeness(e *models.KnowledgeEntry) float64 {
	answer := e.Answer
	var score float64
	switch n := len(answer); {
	case n < 50:
		score = 0.5
	case n < 150:
		score = 1.5
	default:
		score = 2.0
	}

	if costPattern.MatchString(answer) {
		score += 0.4
	}
	if timePattern.MatchString(answer) {
		score += 0.3
	}
	norm := similarity.Normalize(answer)
	for _, phrase := range actionablePhrases {
		if strings.Contains(norm, phrase) {
			score += 0.3
			break
		}
	}
	return math.Min(score, maxCompleteness)
}

// relevance starts at the maximum and is penalized: weak keyword overlap
// between question and answer, a "how much" question without cost markers,
// or a "how long" question without duration markers each subtract.
func (s *Scorer) relevance(e *models.KnowledgeEntry) float64 {
	score := maxRelevance

	qWords := similarity.Keywords(e.Question)
	if len(qWords) > 0 {
		aWords := similarity.Keywords(e.Answer)
		overlap := 0
		for w := range qWords {
			if _, ok := aWords[w]; ok {
				overlap++
			}
		}
		ratio := float64(overlap) / float64(len(qWords))
		if ratio < 0.3 {
			score -= 1.0
		} else if ratio < 0.5 {
			score -= 0.5
		}
	}

	qNorm := similarity.Normalize(e.Question)
	if strings.Contains(qNorm, "how much") && !costPattern.MatchString(e.Answer) {
		score -= 0.5
	}
	if strings.Contains(qNorm, "how long") && !timePattern.MatchString(e.Answer) {
		score -= 0.5
	}
	return math.Max(score, 0)
}

// specificity sums bounded increments for concrete markers: dollar amounts,
// time spans, percentages, numbered steps, state references and trade
// terminology.
func (s *Scorer) specificity(e *models.KnowledgeEntry) float64 {
	text := e.Question + " " + e.Answer
	var score float64
	if costPattern.MatchString(text) {
		score += 0.5
	}
	if timePattern.MatchString(text) {
		score += 0.4
	}
	if percentPattern.MatchString(text) {
		score += 0.3
	}
	if stepListPattern.MatchString(e.Answer) {
		score += 0.3
	}
	if (e.State != "" && e.State != "ALL") || stateCodePattern.MatchString(text) {
		score += 0.3
	}
	norm := similarity.Normalize(text)
	for _, term := range domainTerms {
		if strings.Contains(norm, term) {
			score += 0.4
			break
		}
	}
	return math.Min(score, maxSpecificity)
}

// personaUsefulness scores the entry by its single best-fit persona. A small
// bonus applies when the best fit is the overwhelmed-user persona and the
// answer uses supportive language.
func (s *Scorer) personaUsefulness(e *models.KnowledgeEntry) (float64, string) {
	name, hits := persona.BestFit(e)
	if hits == 0 {
		return 0, ""
	}
	score := math.Min(0.4*float64(hits), 1.7)
	if name == persona.OverwhelmedVeteran && persona.Supportive(e.Answer) {
		score += 0.3
	}
	return math.Min(score, maxPersonaUsefulness), name
}

// deploymentPriority boosts entries that cover known gaps: questions close
// to a failed test question, membership in a high-value category, or
// presence of a critical keyword.
func (s *Scorer) deploymentPriority(e *models.KnowledgeEntry) float64 {
	var score float64
	for _, fq := range s.cfg.FailedQuestions {
		if similarity.WordJaccard(e.Question, fq) >= failedQuestionThreshold {
			score += 0.5
			break
		}
	}
	if _, ok := s.highValue[e.Category]; ok {
		score += 0.3
	}
	lower := strings.ToLower(e.Question + " " + e.Answer)
	for _, kw := range s.criticalLower {
		if strings.Contains(lower, kw) {
			score += 0.2
			break
		}
	}
	return math.Min(score, maxDeploymentPriority)
}

// Grade maps a total score to its reporting letter grade.
func Grade(total float64) string {
	pct := total * (100 / MaxScore)
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}
