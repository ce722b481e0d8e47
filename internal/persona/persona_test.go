package persona

import (
	"testing"

	"factkb/models"
)

func TestBestFitPicksStrongestPersona(t *testing.T) {
	t.Parallel()
	e := &models.KnowledgeEntry{
		Question: "How much does a contractor license cost?",
		Answer:   "The license fee is $200 and the total cost with exam prep is around $500, well within most budget plans.",
		Tags:     []string{"price"},
	}
	name, hits := BestFit(e)
	if name != PriceConscious {
		t.Fatalf("expected price_conscious, got %q (%d hits)", name, hits)
	}
	if hits < 3 {
		t.Fatalf("expected at least 3 keyword hits, got %d", hits)
	}
}

func TestBestFitEmptyEntry(t *testing.T) {
	t.Parallel()
	name, hits := BestFit(&models.KnowledgeEntry{Question: "zzz", Answer: "qqq"})
	if name != "" || hits != 0 {
		t.Fatalf("no-hit entry should have no best-fit persona, got %q/%d", name, hits)
	}
}

func TestSupportiveMatchesNormalizedPhrasing(t *testing.T) {
	t.Parallel()
	if !Supportive("We provide a step-by-step checklist.") {
		t.Fatalf("hyphenated phrasing should count as supportive")
	}
	if Supportive("Submit form B-202 to the board.") {
		t.Fatalf("plain procedural text is not supportive")
	}
}

func TestAnalyzeBalance(t *testing.T) {
	t.Parallel()
	even := []*models.KnowledgeEntry{
		{Question: "cost", Answer: "the fee is low cost"},
		{Question: "help", Answer: "simple guide to help you start"},
		{Question: "proof", Answer: "success rate data and evidence"},
		{Question: "fast", Answer: "quick urgent expedite options"},
		{Question: "grow", Answer: "expand your business revenue"},
	}
	skewed := []*models.KnowledgeEntry{
		{Question: "cost", Answer: "the fee is low cost"},
		{Question: "price", Answer: "cheap affordable budget payment"},
		{Question: "money", Answer: "save money on the fee"},
	}
	evenCov := Analyze(even)
	skewedCov := Analyze(skewed)
	if evenCov.Balance <= skewedCov.Balance {
		t.Fatalf("even spread should beat skewed: %f vs %f", evenCov.Balance, skewedCov.Balance)
	}
	if evenCov.Balance < 0 || evenCov.Balance > 10 {
		t.Fatalf("balance out of range: %f", evenCov.Balance)
	}
	if got := Analyze(nil).Balance; got != 0 {
		t.Fatalf("empty pool balance must be 0, got %f", got)
	}
}

func TestAnalyzeCountsArePerEntry(t *testing.T) {
	t.Parallel()
	pool := []*models.KnowledgeEntry{
		{Question: "what is the cost", Answer: "the fee and price are low"},
	}
	cov := Analyze(pool)
	if cov.Counts[PriceConscious] != 1 {
		t.Fatalf("multiple keyword hits must still count the entry once, got %d", cov.Counts[PriceConscious])
	}
}
