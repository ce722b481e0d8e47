package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes pipeline outcome counters. A nil *Metrics is valid and
// records nothing, which keeps library callers and tests free of registry
// plumbing.
type Metrics struct {
	Skipped       prometheus.Counter
	Merged        prometheus.Counter
	Scored        prometheus.Counter
	ScoreFailures prometheus.Counter
	Selected      prometheus.Counter
}

// NewMetrics builds and registers the pipeline counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "factkb_entries_skipped_total",
			Help: "Candidate entries skipped as malformed at ingestion.",
		}),
		Merged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "factkb_entries_merged_total",
			Help: "Entries merged away during deduplication.",
		}),
		Scored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "factkb_entries_scored_total",
			Help: "Entries scored successfully.",
		}),
		ScoreFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "factkb_score_failures_total",
			Help: "Entries that failed scoring and were assigned the minimum score.",
		}),
		Selected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "factkb_entries_selected_total",
			Help: "Entries admitted to the deployment set.",
		}),
	}
	reg.MustRegister(m.Skipped, m.Merged, m.Scored, m.ScoreFailures, m.Selected)
	return m
}

func (m *Metrics) add(c prometheus.Counter, n int) {
	if m == nil || c == nil || n <= 0 {
		return
	}
	c.Add(float64(n))
}
