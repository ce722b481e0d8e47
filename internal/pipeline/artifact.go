package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"factkb/internal/persona"
	"factkb/internal/scoring"
	"factkb/models"
)

// Metadata describes a produced knowledge base for auditing and readback.
type Metadata struct {
	RunID                string           `json:"run_id"`
	GeneratedAt          time.Time        `json:"generated_at"`
	TotalEntries         int              `json:"total_entries"`
	AverageQuality       float64          `json:"average_quality"`
	CategoryDistribution map[string]int   `json:"category_distribution"`
	GradeDistribution    map[string]int   `json:"grade_distribution"`
	PersonaCoverage      persona.Coverage `json:"persona_coverage"`
	Stats                *Stats           `json:"stats,omitempty"`
}

// Artifact is the hand-off file between the pipeline and the deployment
// batcher. It must round-trip through JSON without loss.
type Artifact struct {
	Metadata      Metadata                 `json:"metadata"`
	KnowledgeBase []*models.KnowledgeEntry `json:"knowledge_base"`
}

// NewArtifact stamps a fresh run id and derives the distribution metadata
// from the selected entries.
func NewArtifact(selected []*models.KnowledgeEntry, stats Stats) *Artifact {
	categories := make(map[string]int)
	grades := make(map[string]int)
	for _, e := range selected {
		categories[e.Category]++
		grades[scoring.Grade(e.QualityScore)]++
	}
	statsCopy := stats
	return &Artifact{
		Metadata: Metadata{
			RunID:                uuid.NewString(),
			GeneratedAt:          time.Now().UTC(),
			TotalEntries:         len(selected),
			AverageQuality:       stats.AverageQuality,
			CategoryDistribution: categories,
			GradeDistribution:    grades,
			PersonaCoverage:      stats.Coverage,
			Stats:                &statsCopy,
		},
		KnowledgeBase: selected,
	}
}

// Save writes the artifact as indented JSON.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads an artifact produced by Save.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	return &a, nil
}

// Categories lists the artifact's categories in stable order.
func (a *Artifact) Categories() []string {
	out := make([]string, 0, len(a.Metadata.CategoryDistribution))
	for c := range a.Metadata.CategoryDistribution {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// rawEntry tolerates the loose upstream candidate format, where tags and
// personas may arrive either as arrays or as comma-joined strings.
type rawEntry struct {
	ID         int               `json:"id"`
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Category   string            `json:"category"`
	State      string            `json:"state"`
	Tags       json.RawMessage   `json:"tags"`
	Personas   json.RawMessage   `json:"personas"`
	Priority   models.Priority   `json:"priority"`
	Difficulty models.Difficulty `json:"difficulty"`
}

// LoadCandidates reads a candidate pool from path. It accepts either a bare
// JSON array of entries or an artifact-shaped file with a knowledge_base
// key. Field shape is normalized here, once; parse failures on the file are
// fatal, loose fields inside an entry are not.
func LoadCandidates(path string) ([]*models.KnowledgeEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}

	var raws []rawEntry
	if err := json.Unmarshal(data, &raws); err != nil {
		var wrapped struct {
			KnowledgeBase []rawEntry `json:"knowledge_base"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("parse candidates %s: %w", path, err)
		}
		raws = wrapped.KnowledgeBase
	}

	entries := make([]*models.KnowledgeEntry, 0, len(raws))
	for _, r := range raws {
		entries = append(entries, &models.KnowledgeEntry{
			ID:         r.ID,
			Question:   r.Question,
			Answer:     r.Answer,
			Category:   r.Category,
			State:      r.State,
			Tags:       parseStringSet(r.Tags),
			Personas:   parseStringSet(r.Personas),
			Priority:   r.Priority,
			Difficulty: r.Difficulty,
		})
	}
	return entries, nil
}

func parseStringSet(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		if joined == "" {
			return nil
		}
		return strings.Split(joined, ",")
	}
	return nil
}
