package metrics

import "sync/atomic"

// Get returns the current value of key, or zero if it was never touched.
func (r *Registry) Get(key MetricKey) int64 {
	r.mu.RLock()
	v, ok := r.values[key]
	r.mu.RUnlock()

	if !ok {
		return 0
	}
	return atomic.LoadInt64(v)
}

// Snapshot copies every value, keyed by metric name.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int64, len(r.values))
	for key, v := range r.values {
		out[string(key)] = atomic.LoadInt64(v)
	}
	return out
}
