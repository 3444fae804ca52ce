package metrics

import (
	"sync"
	"sync/atomic"
)

// MetricKey names one counter or gauge in a Registry.
type MetricKey string

const (
	// store writes
	PastesStoredTotal      MetricKey = "pastes_stored_total"
	PastesOverwrittenTotal MetricKey = "pastes_overwritten_total"
	PastesEvictedTotal     MetricKey = "pastes_evicted_total"
	PastesLive             MetricKey = "pastes_live" // gauge

	// store reads
	PasteFetchesTotal MetricKey = "paste_fetches_total"
	PasteMissesTotal  MetricKey = "paste_misses_total"

	// HTTP
	PasteRejectedTotal  MetricKey = "paste_rejected_total"
	RenderFailuresTotal MetricKey = "render_failures_total"

	ReportRunsTotal MetricKey = "report_runs_total"
)

// Registry holds int64 values keyed by MetricKey. Values are created on
// first use and updated atomically; the map lock only guards creation.
type Registry struct {
	mu     sync.RWMutex
	values map[MetricKey]*int64
}

func NewRegistry() *Registry {
	return &Registry{values: make(map[MetricKey]*int64)}
}

// Inc adds one to key.
func (r *Registry) Inc(key MetricKey) {
	r.Add(key, 1)
}

// Add adds delta to key. Gauges such as PastesLive take negative deltas.
func (r *Registry) Add(key MetricKey, delta int64) {
	atomic.AddInt64(r.value(key), delta)
}

// value returns the cell for key, creating it on first use.
func (r *Registry) value(key MetricKey) *int64 {
	r.mu.RLock()
	v, ok := r.values[key]
	r.mu.RUnlock()
	if ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok = r.values[key]; !ok {
		v = new(int64)
		r.values[key] = v
	}
	return v
}
