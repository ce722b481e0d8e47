// Package report renders a human-readable quality report from a produced
// artifact. Report failures are never fatal to the pipeline; the artifact
// remains the source of truth.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"factkb/internal/pipeline"
	"factkb/internal/scoring"
)

// Generate renders the artifact as markdown.
func Generate(a *pipeline.Artifact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Knowledge Base Quality Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", a.Metadata.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", a.Metadata.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "- Entries: %d\n", a.Metadata.TotalEntries)
	fmt.Fprintf(&b, "- Average quality: %.2f / %.0f (%s)\n\n",
		a.Metadata.AverageQuality, scoring.MaxScore, scoring.Grade(a.Metadata.AverageQuality))

	b.WriteString("## Grades\n\n| Grade | Entries |\n|---|---|\n")
	for _, g := range []string{"A", "B", "C", "D", "F"} {
		if n, ok := a.Metadata.GradeDistribution[g]; ok {
			fmt.Fprintf(&b, "| %s | %d |\n", g, n)
		}
	}
	b.WriteString("\n## Categories\n\n| Category | Entries |\n|---|---|\n")
	for _, cat := range a.Categories() {
		fmt.Fprintf(&b, "| %s | %d |\n", cat, a.Metadata.CategoryDistribution[cat])
	}

	b.WriteString("\n## Persona coverage\n\n| Persona | Relevant entries |\n|---|---|\n")
	personas := make([]string, 0, len(a.Metadata.PersonaCoverage.Counts))
	for p := range a.Metadata.PersonaCoverage.Counts {
		personas = append(personas, p)
	}
	sort.Strings(personas)
	for _, p := range personas {
		fmt.Fprintf(&b, "| %s | %d |\n", p, a.Metadata.PersonaCoverage.Counts[p])
	}
	fmt.Fprintf(&b, "\nBalance score: %.1f / 10\n", a.Metadata.PersonaCoverage.Balance)

	b.WriteString("\n## Top entries\n\n")
	top := a.KnowledgeBase
	if len(top) > 10 {
		top = top[:10]
	}
	for i, e := range top {
		fmt.Fprintf(&b, "%d. (%.1f, %s) %s\n", i+1, e.QualityScore, scoring.Grade(e.QualityScore), e.Question)
	}
	return b.String()
}

// Write renders the report to path.
func Write(a *pipeline.Artifact, path string) error {
	if err := os.WriteFile(path, []byte(Generate(a)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
