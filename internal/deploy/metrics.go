package deploy

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts upload outcomes. A nil *Metrics records nothing.
type Metrics struct {
	UploadedEntries prometheus.Counter
	FailedChunks    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UploadedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "factkb_uploaded_entries_total",
			Help: "Entries uploaded in chunks that returned success.",
		}),
		FailedChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "factkb_failed_chunks_total",
			Help: "Upload chunks that failed and were skipped.",
		}),
	}
	reg.MustRegister(m.UploadedEntries, m.FailedChunks)
	return m
}

func (m *Metrics) uploaded(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.UploadedEntries.Add(float64(n))
}

func (m *Metrics) chunkFailed() {
	if m == nil {
		return
	}
	m.FailedChunks.Inc()
}
