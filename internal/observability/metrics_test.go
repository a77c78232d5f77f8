package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 4*time.Millisecond)
	m.RecordError("/tickets/:id", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.Requests["GET /tickets|200"])
	assert.EqualValues(t, 3000, snap.AvgLatencyMicro["GET /tickets|200"])
	assert.EqualValues(t, 1, snap.Errors["GET /tickets/:id|NOT_FOUND"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}
