package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters keyed by route, method and outcome.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	requestNanos map[string]int64
	errorCount   map[string]int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests        map[string]int64 `json:"requests"`
	AvgLatencyMicro map[string]int64 `json:"avg_latency_us"`
	Errors          map[string]int64 `json:"errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		requestNanos: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestNanos[key] += duration.Nanoseconds()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := pathKey(path, method, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Requests:        map[string]int64{},
		AvgLatencyMicro: map[string]int64{},
		Errors:          map[string]int64{},
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, n := range m.requestCount {
		snap.Requests[k] = n
		if n > 0 {
			snap.AvgLatencyMicro[k] = m.requestNanos[k] / n / int64(time.Microsecond)
		}
	}
	for k, n := range m.errorCount {
		snap.Errors[k] = n
	}
	return snap
}

func pathKey(path, method, outcome string) string {
	return method + " " + path + "|" + outcome
}
