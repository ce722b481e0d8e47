package scoring

import (
	"testing"

	"factkb/models"
)

func TestScoreBounds(t *testing.T) {
	t.Parallel()
	s := New(Config{
		FailedQuestions:     []string{"what are georgia contractor license requirements"},
		HighValueCategories: []string{"state_licensing_requirements"},
		CriticalKeywords:    []string{"license"},
	})
	entries := []*models.KnowledgeEntry{
		{
			ID:       1,
			Question: "What are Georgia contractor license requirements?",
			Answer:   "Georgia requires a $2,500 bond, 4 years experience, and a passing exam. Requirement details: 1. Submit the application. 2. Pay the $200 fee. Approval takes 2 weeks, about 90% pass on the first try.",
			Category: "state_licensing_requirements",
			State:    "GA",
		},
		{ID: 2, Question: "q?", Answer: "short"},
		{ID: 3, Question: "Unicode üñî", Answer: "藍色 answer text"},
		{ID: 4, Question: "empty sets", Answer: "some answer here", Tags: []string{}, Personas: []string{}},
	}
	for _, e := range entries {
		b, err := s.Score(e)
		if err != nil {
			t.Fatalf("entry %d: unexpected error: %v", e.ID, err)
		}
		if b.Total < 0 || b.Total > MaxScore {
			t.Fatalf("entry %d: total %f out of bounds", e.ID, b.Total)
		}
	}
}

func TestScoreMalformedEntry(t *testing.T) {
	t.Parallel()
	s := New(Config{})
	if _, err := s.Score(&models.KnowledgeEntry{ID: 7, Question: "only a question"}); err == nil {
		t.Fatalf("expected malformed entry error")
	}
}

func TestRichAnswerOutscoresVagueAnswer(t *testing.T) {
	t.Parallel()
	s := New(Config{})
	question := "What are Georgia contractor license requirements?"
	rich, err := s.Score(&models.KnowledgeEntry{
		ID: 1, Question: question,
		Answer: "Georgia requires a $2,500 bond and 4 years experience.",
		State:  "GA",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vague, err := s.Score(&models.KnowledgeEntry{ID: 2, Question: question, Answer: "Requirements vary."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rich.Completeness <= vague.Completeness {
		t.Fatalf("concrete answer must beat vague one on completeness: %f vs %f", rich.Completeness, vague.Completeness)
	}
	if rich.Specificity <= vague.Specificity {
		t.Fatalf("concrete answer must beat vague one on specificity: %f vs %f", rich.Specificity, vague.Specificity)
	}
}

func TestRelevancePenalizesCostQuestionWithoutCostAnswer(t *testing.T) {
	t.Parallel()
	s := New(Config{})
	withCost, _ := s.Score(&models.KnowledgeEntry{
		ID: 1, Question: "How much does a contractor license cost?",
		Answer: "The contractor license cost is $200 plus a $100 application fee.",
	})
	withoutCost, _ := s.Score(&models.KnowledgeEntry{
		ID: 2, Question: "How much does a contractor license cost?",
		Answer: "The contractor license cost depends on the licensing board and application type.",
	})
	if withCost.Relevance <= withoutCost.Relevance {
		t.Fatalf("missing cost markers must be penalized: %f vs %f", withCost.Relevance, withoutCost.Relevance)
	}
}

func TestRelevancePenalizesDurationQuestionWithoutTimeframe(t *testing.T) {
	t.Parallel()
	s := New(Config{})
	with, _ := s.Score(&models.KnowledgeEntry{
		ID: 1, Question: "How long does license approval take?",
		Answer: "License approval takes 2 to 4 weeks in most states.",
	})
	without, _ := s.Score(&models.KnowledgeEntry{
		ID: 2, Question: "How long does license approval take?",
		Answer: "License approval takes a while depending on the state board workload.",
	})
	if with.Relevance <= without.Relevance {
		t.Fatalf("missing duration markers must be penalized: %f vs %f", with.Relevance, without.Relevance)
	}
}

func TestDeploymentPriorityBonuses(t *testing.T) {
	t.Parallel()
	boosted := New(Config{
		FailedQuestions:     []string{"What are the Utah contractor license requirements?"},
		HighValueCategories: []string{"state_licensing_requirements"},
	})
	plain := New(Config{})
	e := &models.KnowledgeEntry{
		ID:       1,
		Question: "What are the Utah contractor license requirements?",
		Answer:   "Utah requires a pre-license course and an exam.",
		Category: "state_licensing_requirements",
	}
	bb, _ := boosted.Score(e)
	pb, _ := plain.Score(e)
	if bb.DeploymentPriority <= pb.DeploymentPriority {
		t.Fatalf("failed-question and category bonuses must raise priority: %f vs %f", bb.DeploymentPriority, pb.DeploymentPriority)
	}
	if bb.DeploymentPriority > 1.0 {
		t.Fatalf("deployment priority is capped at 1.0, got %f", bb.DeploymentPriority)
	}
}

func TestPersonaUsefulnessSupportiveBonus(t *testing.T) {
	t.Parallel()
	s := New(Config{})
	supportive, _ := s.Score(&models.KnowledgeEntry{
		ID: 1, Question: "I'm overwhelmed, where do I start?",
		Answer: "Don't panic. This simple step-by-step guide will help you start: begin with the application.",
	})
	if supportive.BestPersona != "overwhelmed_veteran" {
		t.Fatalf("expected overwhelmed_veteran best fit, got %q", supportive.BestPersona)
	}
	if supportive.PersonaUsefulness <= 0 {
		t.Fatalf("supportive entry must earn persona usefulness, got %f", supportive.PersonaUsefulness)
	}
}

func TestGradeThresholds(t *testing.T) {
	t.Parallel()
	cases := map[float64]string{9.5: "A", 8.2: "B", 7.0: "C", 6.1: "D", 3.0: "F"}
	for total, want := range cases {
		if got := Grade(total); got != want {
			t.Fatalf("Grade(%f) = %q, want %q", total, got, want)
		}
	}
}
