package build

import (
	"sync"
	"time"
)

// Metrics tracks builds across a watch session.
type Metrics struct {
	TotalBuilds      int64
	SuccessfulBuilds int64
	FailedBuilds     int64
	PagesWritten     int64
	AverageDuration  time.Duration
	TotalDuration    time.Duration
	LastBuildID      int
	LastError        string
	mutex            sync.RWMutex
}

// NewMetrics creates an empty tracker.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record adds one build. res may be nil when the build failed.
func (m *Metrics) Record(buildID int, res *Result, err error, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalBuilds++
	m.TotalDuration += duration
	m.LastBuildID = buildID

	if err != nil {
		m.FailedBuilds++
		m.LastError = err.Error()
	} else {
		m.SuccessfulBuilds++
		m.LastError = ""
		if res != nil {
			m.PagesWritten += int64(len(res.Pages))
		}
	}

	m.AverageDuration = m.TotalDuration / time.Duration(m.TotalBuilds)
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Metrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return Metrics{
		TotalBuilds:      m.TotalBuilds,
		SuccessfulBuilds: m.SuccessfulBuilds,
		FailedBuilds:     m.FailedBuilds,
		PagesWritten:     m.PagesWritten,
		AverageDuration:  m.AverageDuration,
		TotalDuration:    m.TotalDuration,
		LastBuildID:      m.LastBuildID,
		LastError:        m.LastError,
	}
}

// SuccessRate returns the share of successful builds as a percentage.
func (m *Metrics) SuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalBuilds == 0 {
		return 0.0
	}

	return float64(m.SuccessfulBuilds) / float64(m.TotalBuilds) * 100.0
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalBuilds = 0
	m.SuccessfulBuilds = 0
	m.FailedBuilds = 0
	m.PagesWritten = 0
	m.AverageDuration = 0
	m.TotalDuration = 0
	m.LastBuildID = 0
	m.LastError = ""
}
