package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"factkb/internal/selector"
	"factkb/models"
)

func testConfig(target int) Config {
	return Config{
		TargetCount: target,
		Selection:   selector.Config{DefaultCategoryTarget: 1},
	}
}

func TestRunConsolidatesNearDuplicates(t *testing.T) {
	t.Parallel()
	candidates := []*models.KnowledgeEntry{
		{
			ID:       1,
			Question: "What are the Georgia contractor license requirements for general contractors?",
			Answer:   "Georgia requires four years of experience, a qualifying exam and a surety bond for general contractors.",
			Category: "state_licensing_requirements",
		},
		{
			ID:       2,
			Question: "What are the Georgia contractor license requirements for general contractor applicants?",
			Answer:   "Georgia requires four years of experience, a qualifying exam and a $10,000 surety bond for general contractors applying statewide.",
			Category: "state_licensing_requirements",
		},
		{
			ID:       3,
			Question: "How do I set up a payment schedule with clients?",
			Answer:   "Use milestone billing: collect a deposit, then invoice at each completed phase.",
			Category: "financial_planning_roi",
		},
	}
	p := New(testConfig(0), nil, nil)
	artifact, stats, err := p.Run(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artifact.KnowledgeBase) != 2 {
		t.Fatalf("expected 2 entries after consolidation, got %d", len(artifact.KnowledgeBase))
	}
	if stats.Merged != 1 {
		t.Fatalf("expected 1 merged entry, got %d", stats.Merged)
	}
	ids := map[int]bool{}
	for _, e := range artifact.KnowledgeBase {
		if ids[e.ID] {
			t.Fatalf("duplicate id %d in output", e.ID)
		}
		ids[e.ID] = true
	}
}

func TestRunSkipsMalformedEntries(t *testing.T) {
	t.Parallel()
	candidates := []*models.KnowledgeEntry{
		{ID: 1, Question: "Valid question about license bonds?", Answer: "A valid answer about surety bonds and fees.", Category: "insurance_bonding"},
		{ID: 2, Question: "", Answer: "orphan answer"},
		{ID: 3, Question: "orphan question", Answer: "   "},
	}
	p := New(testConfig(0), nil, nil)
	artifact, stats, err := p.Run(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Skipped != 2 {
		t.Fatalf("expected 2 skipped, got %d", stats.Skipped)
	}
	if len(artifact.KnowledgeBase) != 1 {
		t.Fatalf("expected 1 surviving entry, got %d", len(artifact.KnowledgeBase))
	}
}

func TestRunFailsOnEmptyInput(t *testing.T) {
	t.Parallel()
	p := New(testConfig(0), nil, nil)
	if _, _, err := p.Run([]*models.KnowledgeEntry{{ID: 1}}); err == nil {
		t.Fatalf("a pool with zero valid entries must be fatal")
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	original := &models.KnowledgeEntry{
		ID:       1,
		Question: "What does the exam cost?",
		Answer:   "The exam costs $150 in most states.",
		Category: "exam_preparation_testing",
		Tags:     []string{"Exam", "COST"},
	}
	p := New(testConfig(0), nil, nil)
	if _, _, err := p.Run([]*models.KnowledgeEntry{original}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if original.QualityScore != 0 {
		t.Fatalf("input entry must not be scored in place")
	}
	if !reflect.DeepEqual(original.Tags, []string{"Exam", "COST"}) {
		t.Fatalf("input tags must not be normalized in place: %v", original.Tags)
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	t.Parallel()
	candidates := []*models.KnowledgeEntry{
		{ID: 1, Question: "How much is a Utah license bond?", Answer: "A Utah license bond runs about $100 to $300 per year.", Category: "insurance_bonding", Tags: []string{"bond"}},
		{ID: 2, Question: "What score passes the trade exam?", Answer: "Most states require 70% or better on the trade exam.", Category: "exam_preparation_testing"},
	}
	p := New(testConfig(0), nil, nil)
	artifact, _, err := p.Run(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "kb.json")
	if err := artifact.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Metadata.RunID != artifact.Metadata.RunID {
		t.Fatalf("run id lost in round trip")
	}
	if !reflect.DeepEqual(loaded.KnowledgeBase, artifact.KnowledgeBase) {
		t.Fatalf("knowledge base lost in round trip")
	}
	if !reflect.DeepEqual(loaded.Metadata.CategoryDistribution, artifact.Metadata.CategoryDistribution) {
		t.Fatalf("category distribution lost in round trip")
	}
}

func TestLoadCandidatesAcceptsCommaJoinedTags(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "candidates.json")
	payload := `[
		{"id": 1, "question": "q1?", "answer": "a1", "category": "c", "tags": "alpha, beta", "personas": ["price_conscious"]},
		{"id": 2, "question": "q2?", "answer": "a2", "category": "c", "tags": ["gamma"]}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	entries, err := LoadCandidates(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if len(entries[0].Tags) != 2 {
		t.Fatalf("comma-joined tags must split: %v", entries[0].Tags)
	}
	if entries[1].Tags[0] != "gamma" {
		t.Fatalf("array tags must pass through: %v", entries[1].Tags)
	}
}
