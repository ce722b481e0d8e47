// Package selector picks the target-size deployment subset from a scored,
// deduplicated pool while preserving per-category representation.
package selector

import (
	"log"
	"sort"

	"factkb/internal/scoring"
	"factkb/models"
)

// Config controls selection. CategoryTargets is the per-category minimum
// table; categories absent from it fall back to DefaultCategoryTarget.
// Targets are soft: when the table sums past the target count, floors are
// satisfied first-come on quality order until the budget runs out.
type Config struct {
	CategoryTargets       map[string]int
	DefaultCategoryTarget int
}

type Selector struct {
	cfg    Config
	scorer *scoring.Scorer
	logger *log.Logger
}

func New(cfg Config, scorer *scoring.Scorer, logger *log.Logger) *Selector {
	if logger == nil {
		logger = log.New(log.Writer(), "[SELECT] ", log.LstdFlags)
	}
	return &Selector{cfg: cfg, scorer: scorer, logger: logger}
}

// Select returns min(target, len(pool)) entries, sorted by quality score
// descending. Two passes over the quality-sorted pool: the first admits
// entries whose category floor is unmet, the second backfills with the best
// remaining entries. A category whose candidates run out in pass one relies
// entirely on pass two.
func (s *Selector) Select(pool []*models.KnowledgeEntry, target int) []*models.KnowledgeEntry {
	if target <= 0 || len(pool) == 0 {
		return nil
	}

	sorted := make([]*models.KnowledgeEntry, len(pool))
	copy(sorted, pool)
	s.ensureScored(sorted)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].QualityScore > sorted[j].QualityScore
	})

	if len(sorted) <= target {
		return sorted
	}

	admitted := make(map[int]bool, target)
	perCategory := make(map[string]int)
	out := make([]*models.KnowledgeEntry, 0, target)

	// Pass one: category floors.
	for _, e := range sorted {
		if len(out) >= target {
			break
		}
		if perCategory[e.Category] < s.categoryTarget(e.Category) {
			admitted[e.ID] = true
			perCategory[e.Category]++
			out = append(out, e)
		}
	}

	// Pass two: fill the remainder with the best of what's left.
	for _, e := range sorted {
		if len(out) >= target {
			break
		}
		if admitted[e.ID] {
			continue
		}
		admitted[e.ID] = true
		perCategory[e.Category]++
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].QualityScore > out[j].QualityScore
	})
	s.logger.Printf("selected %d of %d entries across %d categories", len(out), len(pool), len(perCategory))
	return out
}

// ensureScored scores any entry that still carries the zero value. Scoring
// is idempotent, so re-scoring a legitimately zero-quality entry is a no-op.
func (s *Selector) ensureScored(pool []*models.KnowledgeEntry) {
	if s.scorer == nil {
		return
	}
	for _, e := range pool {
		if e.QualityScore != 0 {
			continue
		}
		b, err := s.scorer.Score(e)
		if err != nil {
			continue
		}
		e.QualityScore = b.Total
	}
}

func (s *Selector) categoryTarget(category string) int {
	if t, ok := s.cfg.CategoryTargets[category]; ok {
		return t
	}
	return s.cfg.DefaultCategoryTarget
}
