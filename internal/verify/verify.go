// Package verify queries the hosted retrieval service with a question set
// and grades the answers it returns. Failed questions feed the next optimize
// run's deployment-priority bonus.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"factkb/internal/similarity"
	"factkb/models"
)

// Searcher is the one service capability the harness needs.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.KnowledgeEntry, error)
}

// Question is a single graded test case. ExpectedKeywords are matched
// against the best returned answer; with none given, grading falls back to
// question similarity alone.
type Question struct {
	Question         string   `json:"question"`
	ExpectedKeywords []string `json:"expected_keywords,omitempty"`
	Category         string   `json:"category,omitempty"`
}

// Result grades one question. Err is recorded, never propagated: a broken
// question must not abort the run.
type Result struct {
	Question string  `json:"question"`
	Passed   bool    `json:"passed"`
	Score    float64 `json:"score"`
	Error    string  `json:"error,omitempty"`
}

// Run is the persisted record of one harness execution.
type Run struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"ts"`
	Type      string    `json:"type"`
	Total     int       `json:"total"`
	Passed    int       `json:"passed"`
	Results   []Result  `json:"results"`
}

// Grading thresholds. A question passes when the best result's question is
// close enough, and, if keywords were declared, at least half of them show
// up in the returned answer.
const (
	questionMatchThreshold = 0.6
	keywordPassRatio       = 0.5
	searchLimit            = 3
)

type Harness struct {
	searcher Searcher
	logger   *log.Logger
}

func NewHarness(searcher Searcher, logger *log.Logger) *Harness {
	if logger == nil {
		logger = log.New(log.Writer(), "[VERIFY] ", log.LstdFlags)
	}
	return &Harness{searcher: searcher, logger: logger}
}

// Execute grades every question against the service. Per-question search
// errors are recorded as failures; the run itself only errors when no
// questions were given.
func (h *Harness) Execute(ctx context.Context, questions []Question) (*Run, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("no test questions given")
	}
	run := &Run{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Type:      "verify_run",
		Total:     len(questions),
	}
	for _, q := range questions {
		r := h.grade(ctx, q)
		if r.Passed {
			run.Passed++
		}
		run.Results = append(run.Results, r)
	}
	h.logger.Printf("verify run %s: %d/%d passed", run.RunID, run.Passed, run.Total)
	return run, nil
}

func (h *Harness) grade(ctx context.Context, q Question) Result {
	results, err := h.searcher.Search(ctx, q.Question, searchLimit)
	if err != nil {
		h.logger.Printf("WARN search failed for %q: %v", q.Question, err)
		return Result{Question: q.Question, Error: err.Error()}
	}
	if len(results) == 0 {
		return Result{Question: q.Question}
	}

	best := results[0]
	bestSim := similarity.WordJaccard(q.Question, best.Question)
	for _, r := range results[1:] {
		if sim := similarity.WordJaccard(q.Question, r.Question); sim > bestSim {
			best, bestSim = r, sim
		}
	}

	score := bestSim
	passed := bestSim >= questionMatchThreshold
	if len(q.ExpectedKeywords) > 0 {
		answerWords := similarity.Keywords(best.Answer)
		hits := 0
		for _, kw := range q.ExpectedKeywords {
			if _, ok := answerWords[similarity.Normalize(kw)]; ok {
				hits++
			}
		}
		ratio := float64(hits) / float64(len(q.ExpectedKeywords))
		score = (bestSim + ratio) / 2
		passed = passed && ratio >= keywordPassRatio
	}
	return Result{Question: q.Question, Passed: passed, Score: score}
}

// FailedQuestions lists the questions that did not pass.
func (r *Run) FailedQuestions() []string {
	var out []string
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res.Question)
		}
	}
	return out
}

// Save appends the run as one JSONL record under dir.
func (r *Run) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal run: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("verify_%d.jsonl", r.Timestamp.Unix()))
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write run record: %w", err)
	}
	return path, nil
}

// LoadQuestions reads a question set. Entries may be bare strings or full
// Question objects.
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	var questions []Question
	if err := json.Unmarshal(data, &questions); err == nil {
		return questions, nil
	}
	var plain []string
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, fmt.Errorf("parse questions %s: %w", path, err)
	}
	questions = make([]Question, 0, len(plain))
	for _, q := range plain {
		questions = append(questions, Question{Question: q})
	}
	return questions, nil
}

// LoadFailedQuestions extracts the failed questions from a saved run record.
func LoadFailedQuestions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run record: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse run record %s: %w", path, err)
	}
	return run.FailedQuestions(), nil
}
