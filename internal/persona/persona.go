// Package persona holds the fixed persona vocabulary and the deterministic
// keyword-membership matching used by scoring and coverage analysis.
// Matching stays keyword-based so two runs over the same pool always agree.
package persona

import (
	"math"
	"sort"
	"strings"

	"factkb/internal/similarity"
	"factkb/models"
)

const (
	PriceConscious        = "price_conscious"
	OverwhelmedVeteran    = "overwhelmed_veteran"
	SkepticalResearcher   = "skeptical_researcher"
	TimePressed           = "time_pressed"
	AmbitiousEntrepreneur = "ambitious_entrepreneur"
)

// Keywords maps each persona to the terms that mark an entry as relevant to
// it. The vocabulary is fixed; entries carry persona hints of their own but
// matching always runs against this table.
var Keywords = map[string][]string{
	PriceConscious: {
		"cost", "price", "fee", "cheap", "affordable", "expensive",
		"budget", "payment", "money", "save", "discount",
	},
	OverwhelmedVeteran: {
		"help", "confused", "complicated", "simple", "guide", "step",
		"overwhelmed", "start", "begin", "easy", "support",
	},
	SkepticalResearcher: {
		"proof", "success", "rate", "guarantee", "data", "statistics",
		"evidence", "reviews", "legitimate", "accredited", "verified",
	},
	TimePressed: {
		"fast", "quick", "urgent", "deadline", "expedite", "rush",
		"timeline", "soon", "immediately", "days", "weeks",
	},
	AmbitiousEntrepreneur: {
		"grow", "expand", "business", "scale", "opportunity", "revenue",
		"profit", "commercial", "multiple", "network", "qualifier",
	},
}

// supportive marks the language that earns the overwhelmed-user bonus.
// Matched against normalized answers, so "step-by-step" counts too.
var supportive = []string{"step by step", "simple", "help"}

// Names returns the persona vocabulary in stable sorted order.
func Names() []string {
	names := make([]string, 0, len(Keywords))
	for name := range Keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hits counts keyword matches for one persona across an entry's question,
// answer and tags.
func Hits(e *models.KnowledgeEntry, name string) int {
	words := similarity.Keywords(e.Question + " " + e.Answer + " " + strings.Join(e.Tags, " "))
	hits := 0
	for _, kw := range Keywords[name] {
		if _, ok := words[kw]; ok {
			hits++
		}
	}
	return hits
}

// BestFit returns the persona with the most keyword hits for the entry and
// that hit count. An entry is scored by its single best-fit persona; strong
// matches against several personas earn no extra credit. Ties resolve to the
// alphabetically first persona so results are stable.
func BestFit(e *models.KnowledgeEntry) (string, int) {
	bestName := ""
	bestHits := 0
	for _, name := range Names() {
		if h := Hits(e, name); h > bestHits {
			bestName, bestHits = name, h
		}
	}
	return bestName, bestHits
}

// Supportive reports whether the answer carries the reassuring phrasing that
// pairs with the overwhelmed-user persona.
func Supportive(answer string) bool {
	norm := similarity.Normalize(answer)
	for _, marker := range supportive {
		if strings.Contains(norm, marker) {
			return true
		}
	}
	return false
}

// Coverage tallies per-persona relevance over a pool and scores how evenly
// the pool spreads across personas.
type Coverage struct {
	Counts  map[string]int `json:"counts"`
	Balance float64        `json:"balance_score"`
}

// Analyze counts, per persona, how many entries have at least one keyword
// hit, then derives a balance score on the 0-10 scale:
// max(0, 10 - stdev/mean*10). It never mutates the entries.
func Analyze(pool []*models.KnowledgeEntry) Coverage {
	cov := Coverage{Counts: make(map[string]int, len(Keywords))}
	for _, name := range Names() {
		cov.Counts[name] = 0
	}
	for _, e := range pool {
		for _, name := range Names() {
			if Hits(e, name) > 0 {
				cov.Counts[name]++
			}
		}
	}
	cov.Balance = balance(cov.Counts)
	return cov
}

func balance(counts map[string]int) float64 {
	if len(counts) == 0 {
		return 0
	}
	var sum float64
	for _, c := range counts {
		sum += float64(c)
	}
	mean := sum / float64(len(counts))
	if mean <= 0 {
		return 0
	}
	var variance float64
	for _, c := range counts {
		d := float64(c) - mean
		variance += d * d
	}
	stdev := math.Sqrt(variance / float64(len(counts)))
	return math.Max(0, 10-(stdev/mean)*10)
}
