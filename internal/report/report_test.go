package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"factkb/internal/persona"
	"factkb/internal/pipeline"
	"factkb/models"
)

func sampleArtifact() *pipeline.Artifact {
	entries := []*models.KnowledgeEntry{
		{ID: 1, Question: "How much does a Georgia license cost?", Answer: "Around $200.", Category: "state_licensing_requirements", QualityScore: 8.5},
		{ID: 2, Question: "What is on the trade exam?", Answer: "Business and law plus trade topics.", Category: "exam_preparation_testing", QualityScore: 6.0},
	}
	stats := pipeline.Stats{
		Ingested: 2,
		Scored:   2,
		Selected: 2,
		Coverage: persona.Coverage{
			Counts:  map[string]int{"price_conscious": 1, "time_pressed": 1},
			Balance: 10,
		},
	}
	return pipeline.NewArtifact(entries, stats)
}

func TestGenerateSections(t *testing.T) {
	t.Parallel()

	out := Generate(sampleArtifact())
	for _, want := range []string{
		"# Knowledge Base Quality Report",
		"## Grades",
		"## Categories",
		"| state_licensing_requirements | 1 |",
		"| exam_preparation_testing | 1 |",
		"## Persona coverage",
		"| price_conscious | 1 |",
		"Balance score: 10.0 / 10",
		"## Top entries",
		"How much does a Georgia license cost?",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateTopEntriesCapped(t *testing.T) {
	t.Parallel()

	entries := make([]*models.KnowledgeEntry, 0, 15)
	for i := 0; i < 15; i++ {
		entries = append(entries, &models.KnowledgeEntry{
			ID:       i + 1,
			Question: "q",
			Answer:   "a",
			Category: "general_licensing_process",
		})
	}
	out := Generate(pipeline.NewArtifact(entries, pipeline.Stats{}))
	if strings.Contains(out, "\n11. ") {
		t.Fatalf("expected top entries capped at 10:\n%s", out)
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.md")
	if err := Write(sampleArtifact(), path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(raw), "# Knowledge Base Quality Report") {
		t.Fatalf("written report missing header")
	}
}
