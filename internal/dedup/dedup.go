// Package dedup groups near-duplicate knowledge entries and consolidates
// each group into a single representative entry.
package dedup

import (
	"log"
	"math"

	"factkb/internal/similarity"
	"factkb/models"
)

// Threshold above which two question phrasings are considered the same
// wording when picking the consolidated question.
const uniqueQuestionThreshold = 0.9

// corroborationBonus is added to the best member's score when duplicates
// confirm the same content.
const corroborationBonus = 0.1

// maxScore caps the post-consolidation quality score.
const maxScore = 10.0

// Group is an ephemeral cluster of entries believed to be near-duplicates.
// It is produced by grouping and consumed immediately by consolidation.
type Group struct {
	Members []*models.KnowledgeEntry
}

// Stats summarises a consolidation run.
type Stats struct {
	Input  int
	Groups int
	Merged int
	Output int
}

// Consolidator deduplicates a pool of entries.
type Consolidator struct {
	logger *log.Logger
}

func NewConsolidator(logger *log.Logger) *Consolidator {
	if logger == nil {
		logger = log.New(log.Writer(), "[DEDUP] ", log.LstdFlags)
	}
	return &Consolidator{logger: logger}
}

// Consolidate groups near-duplicates and merges each group into one entry.
// Groups of one pass through unchanged. The output never exceeds the input
// in size and input order of group representatives is preserved.
func (c *Consolidator) Consolidate(pool []*models.KnowledgeEntry) ([]*models.KnowledgeEntry, Stats) {
	groups := c.group(pool)
	stats := Stats{Input: len(pool), Groups: len(groups)}

	out := make([]*models.KnowledgeEntry, 0, len(groups))
	for _, g := range groups {
		if len(g.Members) == 1 {
			out = append(out, g.Members[0])
			continue
		}
		merged := c.merge(g)
		stats.Merged += len(g.Members) - 1
		out = append(out, merged)
	}
	stats.Output = len(out)
	if stats.Merged > 0 {
		c.logger.Printf("consolidated %d entries into %d (%d merged away)", stats.Input, stats.Output, stats.Merged)
	}
	return out, stats
}

// group partitions entries by fingerprint equality or the near-duplicate
// rule. Membership is first-touched: once an entry joins a group it is never
// re-evaluated against later groups, so no transitive closure is computed.
func (c *Consolidator) group(pool []*models.KnowledgeEntry) []Group {
	groups := make([]Group, 0, len(pool))
	for _, e := range pool {
		if e.Fingerprint == "" {
			e.Fingerprint = similarity.Fingerprint(e)
		}
		placed := false
		for i := range groups {
			rep := groups[i].Members[0]
			if e.Fingerprint == rep.Fingerprint || similarity.NearDuplicates(e, rep) {
				groups[i].Members = append(groups[i].Members, e)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, Group{Members: []*models.KnowledgeEntry{e}})
		}
	}
	return groups
}

// merge combines a group into one entry: the best-scoring member donates its
// id, category, state, priority and difficulty; the longest answer wins; the
// question is the richest phrasing that is not a rewording of one already
// chosen; tag and persona sets are unioned across the group.
func (c *Consolidator) merge(g Group) *models.KnowledgeEntry {
	best := g.Members[0]
	for _, m := range g.Members[1:] {
		if m.QualityScore > best.QualityScore {
			best = m
		}
	}

	answerDonor := g.Members[0]
	for _, m := range g.Members[1:] {
		if len(m.Answer) > len(answerDonor.Answer) {
			answerDonor = m
		}
	}

	merged := best.Clone()
	merged.Answer = answerDonor.Answer
	merged.Question = pickQuestion(g.Members, answerDonor)
	for _, m := range g.Members {
		if m == best {
			continue
		}
		merged.MergeTags(m.Tags)
		merged.MergePersonas(m.Personas)
	}
	merged.QualityScore = math.Min(best.QualityScore+corroborationBonus, maxScore)
	merged.Fingerprint = similarity.Fingerprint(merged)
	return merged
}

// pickQuestion selects the most character-rich phrasing among variants that
// are not >=0.9-similar to an already-chosen one. The scan is order-dependent
// on purpose; if every variant collapses into the donor's wording, the answer
// donor's own question is kept.
func pickQuestion(members []*models.KnowledgeEntry, answerDonor *models.KnowledgeEntry) string {
	chosen := []string{answerDonor.Question}
	best := answerDonor.Question
	for _, m := range members {
		if m == answerDonor {
			continue
		}
		reworded := false
		for _, q := range chosen {
			if similarity.Ratio(m.Question, q) >= uniqueQuestionThreshold {
				reworded = true
				break
			}
		}
		if reworded {
			continue
		}
		chosen = append(chosen, m.Question)
		if len(m.Question) > len(best) {
			best = m.Question
		}
	}
	return best
}
