// Package pipeline wires ingestion, consolidation, scoring, coverage
// analysis and selection into one synchronous batch run. The run is a pure
// function of (candidate pool, config, failed-question set); all IDs arrive
// assigned by upstream generators.
package pipeline

import (
	"fmt"
	"log"

	"factkb/internal/dedup"
	"factkb/internal/persona"
	"factkb/internal/scoring"
	"factkb/internal/selector"
	"factkb/models"
)

// Config carries everything a run needs beyond the candidate pool.
type Config struct {
	TargetCount int
	Scoring     scoring.Config
	Selection   selector.Config
}

// ScoreResult keeps a scored entry together with its breakdown, or the error
// that forced the minimum score. Callers can tell "scored zero because it
// broke" apart from "legitimately low quality"; the selector treats both the
// same.
type ScoreResult struct {
	Entry     *models.KnowledgeEntry
	Breakdown scoring.Breakdown
	Err       error
}

// Stats summarises a pipeline run for logs and the CLI summary.
type Stats struct {
	Ingested       int              `json:"ingested"`
	Skipped        int              `json:"skipped"`
	Merged         int              `json:"merged"`
	Scored         int              `json:"scored"`
	ScoreFailures  int              `json:"score_failures"`
	Selected       int              `json:"selected"`
	AverageQuality float64          `json:"average_quality"`
	Coverage       persona.Coverage `json:"persona_coverage"`
}

type Pipeline struct {
	cfg          Config
	consolidator *dedup.Consolidator
	scorer       *scoring.Scorer
	selector     *selector.Selector
	metrics      *Metrics
	logger       *log.Logger
}

func New(cfg Config, metrics *Metrics, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags)
	}
	scorer := scoring.New(cfg.Scoring)
	return &Pipeline{
		cfg:          cfg,
		consolidator: dedup.NewConsolidator(logger),
		scorer:       scorer,
		selector:     selector.New(cfg.Selection, scorer, logger),
		metrics:      metrics,
		logger:       logger,
	}
}

// Run executes the full batch: validate, consolidate, score, analyze
// coverage, select. Per-entry problems are logged and counted, never fatal;
// the only error is a structurally empty input.
func (p *Pipeline) Run(candidates []*models.KnowledgeEntry) (*Artifact, Stats, error) {
	var stats Stats

	pool := p.ingest(candidates, &stats)
	if len(pool) == 0 {
		return nil, stats, fmt.Errorf("no valid entries in input (%d candidates, %d skipped)", len(candidates), stats.Skipped)
	}

	// Score before consolidation: the merge step picks its surviving member
	// by pre-consolidation quality and stamps the corroboration bonus on
	// top, so merged entries are not re-scored afterwards.
	results := p.score(pool, &stats)
	prescored := make([]*models.KnowledgeEntry, 0, len(results))
	for _, r := range results {
		prescored = append(prescored, r.Entry)
	}

	scored, dedupStats := p.consolidator.Consolidate(prescored)
	stats.Merged = dedupStats.Merged
	if p.metrics != nil {
		p.metrics.add(p.metrics.Merged, stats.Merged)
	}

	stats.Coverage = persona.Analyze(scored)

	target := p.cfg.TargetCount
	if target <= 0 || target > len(scored) {
		target = len(scored)
	}
	selected := p.selector.Select(scored, target)
	stats.Selected = len(selected)
	if p.metrics != nil {
		p.metrics.add(p.metrics.Selected, stats.Selected)
	}

	var sum float64
	for _, e := range selected {
		sum += e.QualityScore
	}
	if len(selected) > 0 {
		stats.AverageQuality = sum / float64(len(selected))
	}

	p.logger.Printf("run complete: %d ingested, %d skipped, %d merged, %d selected, avg quality %.2f",
		stats.Ingested, stats.Skipped, stats.Merged, stats.Selected, stats.AverageQuality)

	return NewArtifact(selected, stats), stats, nil
}

// ingest validates and normalizes each candidate exactly once. Malformed
// entries are skipped with a warning; downstream stages never re-validate.
func (p *Pipeline) ingest(candidates []*models.KnowledgeEntry, stats *Stats) []*models.KnowledgeEntry {
	pool := make([]*models.KnowledgeEntry, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			p.logger.Printf("WARN skipping malformed entry: %v", err)
			stats.Skipped++
			if p.metrics != nil {
				p.metrics.add(p.metrics.Skipped, 1)
			}
			continue
		}
		e := c.Clone()
		e.Normalize()
		pool = append(pool, e)
		stats.Ingested++
	}
	return pool
}

// score computes quality for every entry. A scoring failure assigns the
// minimum score and records the error on the result instead of aborting.
func (p *Pipeline) score(pool []*models.KnowledgeEntry, stats *Stats) []ScoreResult {
	results := make([]ScoreResult, 0, len(pool))
	for _, e := range pool {
		b, err := p.scorer.Score(e)
		if err != nil {
			p.logger.Printf("WARN scoring entry %d failed, assigning 0: %v", e.ID, err)
			stats.ScoreFailures++
			if p.metrics != nil {
				p.metrics.add(p.metrics.ScoreFailures, 1)
			}
			e.QualityScore = 0
			results = append(results, ScoreResult{Entry: e, Err: err})
			continue
		}
		e.QualityScore = b.Total
		stats.Scored++
		if p.metrics != nil {
			p.metrics.add(p.metrics.Scored, 1)
		}
		results = append(results, ScoreResult{Entry: e, Breakdown: b})
	}
	return results
}
