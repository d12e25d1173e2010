package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/user-migration/internal/domain"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for _, source := range domain.AllSources {
		wg.Add(1)
		go func(s domain.SourceSystem) {
			defer wg.Done()
			m.RecordFetched(s, 2)
		}(source)
	}
	wg.Wait()
	m.RecordResolution(3, 1)
	m.RecordWritten("merged", 3)
	m.RecordWritten("suppressed", 1)

	assert.Equal(t, map[string]int64{
		"fetched.clinical-records-system": 2,
		"fetched.erp-system":              2,
		"transformed":                     4,
		"winners":                         3,
		"suppressed":                      1,
		"written.merged":                  3,
		"written.suppressed":              1,
	}, m.Snapshot())
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordFetched(domain.SourceERP, 1)
	m.RecordResolution(1, 1)
	m.RecordWritten("merged", 1)
	assert.Empty(t, m.Snapshot())
}
