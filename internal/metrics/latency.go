// Package metrics holds the latency tracker the client feeds per-query
// execution samples into. It is an observability collaborator, not part of
// the query pipeline; instances are constructor-injected so tests can use
// a fresh tracker per case.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// LatencyTracker is a bounded ring buffer of recent duration samples with
// simple percentile extraction. Safe for concurrent use.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	full    bool
}

// NewLatencyTracker creates a tracker retaining the most recent capacity
// samples. Capacity must be positive; a non-positive value falls back to 128.
func NewLatencyTracker(capacity int) *LatencyTracker {
	if capacity <= 0 {
		capacity = 128
	}
	return &LatencyTracker{samples: make([]time.Duration, capacity)}
}

// Record adds one sample, evicting the oldest when the buffer is full.
func (t *LatencyTracker) Record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples[t.next] = d
	t.next++
	if t.next == len(t.samples) {
		t.next = 0
		t.full = true
	}
}

// Count returns the number of samples currently held.
func (t *LatencyTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countLocked()
}

func (t *LatencyTracker) countLocked() int {
	if t.full {
		return len(t.samples)
	}
	return t.next
}

// Percentile returns the p-th percentile (0 < p <= 100) of the held
// samples via nearest-rank on a sorted copy. Returns 0 when empty.
func (t *LatencyTracker) Percentile(p float64) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.countLocked()
	if n == 0 {
		return 0
	}

	sorted := make([]time.Duration, n)
	copy(sorted, t.samples[:n])
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rank := int(p / 100 * float64(n))
	if rank >= n {
		rank = n - 1
	}
	if rank < 0 {
		rank = 0
	}
	return sorted[rank]
}

// Snapshot returns p50/p95/p99 in one pass.
func (t *LatencyTracker) Snapshot() (p50, p95, p99 time.Duration) {
	return t.Percentile(50), t.Percentile(95), t.Percentile(99)
}
