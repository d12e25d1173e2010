package observability

import (
	"sync"

	"github.com/spec-kit/user-migration/internal/domain"
)

// Metrics provides basic in-memory counters for one run.
type Metrics struct {
	mu          sync.Mutex
	fetched     map[domain.SourceSystem]int64
	transformed int64
	winners     int64
	suppressed  int64
	written     map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		fetched: make(map[domain.SourceSystem]int64),
		written: make(map[string]int64),
	}
}

// RecordFetched counts rows read from a source.
func (m *Metrics) RecordFetched(source domain.SourceSystem, rows int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched[source] += int64(rows)
	m.transformed += int64(rows)
}

// RecordResolution counts the resolver outcome.
func (m *Metrics) RecordResolution(winners, suppressed int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.winners += int64(winners)
	m.suppressed += int64(suppressed)
}

// RecordWritten counts users written per document.
func (m *Metrics) RecordWritten(document string, users int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written[document] += int64(users)
}

// Snapshot returns a flat copy of every counter.
func (m *Metrics) Snapshot() map[string]int64 {
	out := map[string]int64{}
	if m == nil {
		return out
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for source, n := range m.fetched {
		out["fetched."+string(source)] = n
	}
	for doc, n := range m.written {
		out["written."+doc] = n
	}
	out["transformed"] = m.transformed
	out["winners"] = m.winners
	out["suppressed"] = m.suppressed
	return out
}
