package build

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.Record(1, &Result{Pages: []string{"a.html"}}, nil, 10)
	m.Record(2, nil, assert.AnError, 30)

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.TotalBuilds)
	assert.EqualValues(t, 20, snap.AverageDuration)
	assert.Equal(t, 2, snap.LastBuildID)
	assert.Equal(t, assert.AnError.Error(), snap.LastError)
	assert.InDelta(t, 50.0, m.SuccessRate(), 0.001)

	m.Reset()
	assert.Zero(t, m.Snapshot().TotalBuilds)
	assert.Zero(t, m.SuccessRate())
}

func TestMetricsSuccessClearsLastError(t *testing.T) {
	m := NewMetrics()
	m.Record(1, nil, assert.AnError, time.Millisecond)
	m.Record(2, &Result{}, nil, time.Millisecond)

	snap := m.Snapshot()
	assert.Empty(t, snap.LastError)
	assert.EqualValues(t, 1, snap.FailedBuilds)
	assert.EqualValues(t, 1, snap.SuccessfulBuilds)
}

func TestMetricsConcurrentRecord(t *testing.T) {
	m := NewMetrics()

	const goroutines, perGoroutine = 8, 50
	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perGoroutine {
				if i%5 == 0 {
					m.Record(g, nil, assert.AnError, time.Millisecond)
				} else {
					m.Record(g, &Result{Pages: []string{"index.html", "404.html"}}, nil, time.Millisecond)
				}
				_ = m.Snapshot()
				_ = m.SuccessRate()
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.EqualValues(t, goroutines*perGoroutine, snap.TotalBuilds)
	assert.EqualValues(t, goroutines*perGoroutine/5, snap.FailedBuilds)
	assert.Equal(t, snap.TotalBuilds, snap.SuccessfulBuilds+snap.FailedBuilds)
	assert.EqualValues(t, 2*snap.SuccessfulBuilds, snap.PagesWritten)
	assert.Equal(t, time.Millisecond, snap.AverageDuration)
	assert.InDelta(t, 80.0, m.SuccessRate(), 0.001)
}
