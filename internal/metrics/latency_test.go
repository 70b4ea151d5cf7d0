package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyTrackerEmpty(t *testing.T) {
	tr := NewLatencyTracker(8)
	assert.Equal(t, 0, tr.Count())
	assert.Equal(t, time.Duration(0), tr.Percentile(50))

	p50, p95, p99 := tr.Snapshot()
	assert.Zero(t, p50)
	assert.Zero(t, p95)
	assert.Zero(t, p99)
}

func TestLatencyTrackerPercentiles(t *testing.T) {
	tr := NewLatencyTracker(100)
	for i := 1; i <= 100; i++ {
		tr.Record(time.Duration(i) * time.Millisecond)
	}

	assert.Equal(t, 100, tr.Count())
	assert.Equal(t, 51*time.Millisecond, tr.Percentile(50))
	assert.Equal(t, 96*time.Millisecond, tr.Percentile(95))
	assert.Equal(t, 100*time.Millisecond, tr.Percentile(99))
	assert.Equal(t, 100*time.Millisecond, tr.Percentile(100))
}

func TestLatencyTrackerSingleSample(t *testing.T) {
	tr := NewLatencyTracker(4)
	tr.Record(7 * time.Millisecond)

	assert.Equal(t, 1, tr.Count())
	p50, p95, p99 := tr.Snapshot()
	assert.Equal(t, 7*time.Millisecond, p50)
	assert.Equal(t, 7*time.Millisecond, p95)
	assert.Equal(t, 7*time.Millisecond, p99)
}

func TestLatencyTrackerEvictsOldest(t *testing.T) {
	tr := NewLatencyTracker(4)
	for i := 1; i <= 6; i++ {
		tr.Record(time.Duration(i) * time.Second)
	}

	// Buffer holds 3s..6s; 1s and 2s were evicted.
	assert.Equal(t, 4, tr.Count())
	assert.Equal(t, 3*time.Second, tr.Percentile(1))
	assert.Equal(t, 6*time.Second, tr.Percentile(100))
}

func TestLatencyTrackerFallbackCapacity(t *testing.T) {
	tr := NewLatencyTracker(0)
	for i := 0; i < 200; i++ {
		tr.Record(time.Millisecond)
	}
	assert.Equal(t, 128, tr.Count())
}

func TestLatencyTrackerConcurrentRecord(t *testing.T) {
	tr := NewLatencyTracker(64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Record(time.Millisecond)
				tr.Percentile(95)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 64, tr.Count())
}
