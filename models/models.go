package models

import (
	"fmt"
	"strings"
)

// Priority is the author-asserted importance of an entry. It is independent
// of the computed quality score.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// Difficulty classifies how advanced the entry's content is.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// KnowledgeEntry is the unit of content flowing through the pipeline.
// IDs are assigned by upstream generators and never mutated here. Tags and
// personas are semantically sets; they are normalized once at ingestion and
// never contain empty elements after that.
type KnowledgeEntry struct {
	ID         int        `json:"id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Category   string     `json:"category"`
	State      string     `json:"state,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Personas   []string   `json:"personas,omitempty"`
	Priority   Priority   `json:"priority,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`

	// QualityScore is computed by the scorer on a 0-10 scale and never
	// hand-edited afterwards.
	QualityScore float64 `json:"quality_score"`

	// Fingerprint is derived from the normalized question+answer and used
	// only for duplicate grouping.
	Fingerprint string `json:"dedup_fingerprint,omitempty"`
}

// MalformedEntryError reports an entry that fails ingestion validation.
// Malformed entries are skipped with a warning, never fatal to the batch.
type MalformedEntryError struct {
	ID    int
	Field string
}

func (e MalformedEntryError) Error() string {
	return fmt.Sprintf("entry %d: missing required field %q", e.ID, e.Field)
}

// Validate checks the required fields. Category, state and the enums are
// open vocabulary and left to upstream generators.
func (e *KnowledgeEntry) Validate() error {
	if strings.TrimSpace(e.Question) == "" {
		return MalformedEntryError{ID: e.ID, Field: "question"}
	}
	if strings.TrimSpace(e.Answer) == "" {
		return MalformedEntryError{ID: e.ID, Field: "answer"}
	}
	return nil
}

// Normalize lowercases tags, trims whitespace and drops empty elements from
// the tag and persona sets. Called once at the ingestion boundary.
func (e *KnowledgeEntry) Normalize() {
	e.Question = strings.TrimSpace(e.Question)
	e.Answer = strings.TrimSpace(e.Answer)
	e.State = strings.ToUpper(strings.TrimSpace(e.State))
	e.Tags = cleanSet(e.Tags, true)
	e.Personas = cleanSet(e.Personas, false)
	if e.Priority == "" {
		e.Priority = PriorityNormal
	}
	if e.Difficulty == "" {
		e.Difficulty = DifficultyBasic
	}
}

// HasPersona reports set membership in the entry's persona list.
func (e *KnowledgeEntry) HasPersona(persona string) bool {
	for _, p := range e.Personas {
		if p == persona {
			return true
		}
	}
	return false
}

// Clone produces a deep copy of the entry.
func (e *KnowledgeEntry) Clone() *KnowledgeEntry {
	clone := *e
	if e.Tags != nil {
		clone.Tags = append([]string(nil), e.Tags...)
	}
	if e.Personas != nil {
		clone.Personas = append([]string(nil), e.Personas...)
	}
	return &clone
}

// MergeTags unions extra into the entry's tag set, preserving existing order
// and appending unseen tags in the order given.
func (e *KnowledgeEntry) MergeTags(extra []string) {
	e.Tags = mergeSet(e.Tags, extra)
}

// MergePersonas unions extra into the entry's persona set.
func (e *KnowledgeEntry) MergePersonas(extra []string) {
	e.Personas = mergeSet(e.Personas, extra)
}

func cleanSet(in []string, lower bool) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, v := range in {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func mergeSet(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	for _, v := range extra {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		base = append(base, v)
	}
	return base
}
