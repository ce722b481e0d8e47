package models

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	e := &KnowledgeEntry{ID: 7, Question: "How do I apply?", Answer: "Submit the form."}
	if err := e.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e = &KnowledgeEntry{ID: 7, Question: "   ", Answer: "Submit the form."}
	err := e.Validate()
	if err == nil {
		t.Fatalf("expected error for blank question")
	}
	var malformed MalformedEntryError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedEntryError, got %T", err)
	}
	if malformed.ID != 7 || malformed.Field != "question" {
		t.Fatalf("unexpected error detail: %+v", malformed)
	}

	e = &KnowledgeEntry{ID: 8, Question: "q", Answer: ""}
	if err := e.Validate(); err == nil {
		t.Fatalf("expected error for empty answer")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	e := &KnowledgeEntry{
		ID:       1,
		Question: "  How much?  ",
		Answer:   " Around $200. ",
		State:    " ga ",
		Tags:     []string{" Licensing ", "licensing", "", "Exam"},
		Personas: []string{"price_conscious", "price_conscious", " "},
	}
	e.Normalize()

	if e.Question != "How much?" || e.Answer != "Around $200." {
		t.Fatalf("whitespace not trimmed: %+v", e)
	}
	if e.State != "GA" {
		t.Fatalf("state not uppercased: %q", e.State)
	}
	if len(e.Tags) != 2 || e.Tags[0] != "licensing" || e.Tags[1] != "exam" {
		t.Fatalf("tags not deduplicated and lowercased: %v", e.Tags)
	}
	if len(e.Personas) != 1 || e.Personas[0] != "price_conscious" {
		t.Fatalf("personas not deduplicated: %v", e.Personas)
	}
	if e.Priority != PriorityNormal || e.Difficulty != DifficultyBasic {
		t.Fatalf("enum defaults not applied: %q %q", e.Priority, e.Difficulty)
	}
}

func TestNormalizeKeepsExplicitEnums(t *testing.T) {
	t.Parallel()

	e := &KnowledgeEntry{Question: "q", Answer: "a", Priority: PriorityCritical, Difficulty: DifficultyAdvanced}
	e.Normalize()
	if e.Priority != PriorityCritical || e.Difficulty != DifficultyAdvanced {
		t.Fatalf("explicit enums overwritten: %q %q", e.Priority, e.Difficulty)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := &KnowledgeEntry{ID: 1, Question: "q", Answer: "a", Tags: []string{"one"}, Personas: []string{"time_pressed"}}
	clone := orig.Clone()
	clone.Tags[0] = "changed"
	clone.Personas[0] = "changed"
	clone.Question = "changed"

	if orig.Tags[0] != "one" || orig.Personas[0] != "time_pressed" || orig.Question != "q" {
		t.Fatalf("clone shares state with original: %+v", orig)
	}
}

func TestMergeSets(t *testing.T) {
	t.Parallel()

	e := &KnowledgeEntry{Tags: []string{"a", "b"}, Personas: []string{"time_pressed"}}
	e.MergeTags([]string{"b", "c", ""})
	e.MergePersonas([]string{"time_pressed", "price_conscious"})

	if len(e.Tags) != 3 || e.Tags[2] != "c" {
		t.Fatalf("tag union wrong: %v", e.Tags)
	}
	if len(e.Personas) != 2 || e.Personas[1] != "price_conscious" {
		t.Fatalf("persona union wrong: %v", e.Personas)
	}
}

func TestHasPersona(t *testing.T) {
	t.Parallel()

	e := &KnowledgeEntry{Personas: []string{"time_pressed"}}
	if !e.HasPersona("time_pressed") {
		t.Fatalf("expected membership")
	}
	if e.HasPersona("price_conscious") {
		t.Fatalf("unexpected membership")
	}
}
