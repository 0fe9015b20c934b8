// Package resource samples peak/P50/P95/P99 heap usage and concurrency
// over a unit of work, for benchmarking batch extraction runs. Built on
// runtime.MemStats so there is no system-metrics dependency to install.
package resource

import (
	"runtime"
	"sort"
	"sync"
	"time"
)

// Sample is one point-in-time reading taken by Monitor.
type Sample struct {
	At           time.Time
	HeapAllocMB  float64
	NumGoroutine int
}

// Stats summarizes a monitoring run: peak and percentile heap usage plus
// an average goroutine count used as a proxy for CPU-bound concurrency
// (there is no portable way to sample process CPU time without a
// third-party dependency, so goroutine count is the stand-in metric).
type Stats struct {
	PeakMemoryMB    float64
	P50MemoryMB     float64
	P95MemoryMB     float64
	P99MemoryMB     float64
	AverageCPUProxy float64
	SampleCount     int
	Duration        time.Duration
}

// Monitor periodically samples runtime.MemStats on a background ticker
// until Stop is called. It is safe to start and stop around any unit of
// work the caller wants to profile: a single extraction, a whole batch,
// a server request.
type Monitor struct {
	interval time.Duration

	mu      sync.Mutex
	samples []Sample
	started time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// New returns a Monitor that samples every interval; a non-positive
// interval defaults to 50ms.
func New(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Monitor{interval: interval}
}

// Start begins sampling in a background goroutine. Calling Start twice
// without an intervening Stop is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.stopCh != nil {
		m.mu.Unlock()
		return
	}
	m.started = time.Now()
	m.samples = nil
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stopCh := m.stopCh
	doneCh := m.doneCh
	m.mu.Unlock()

	go m.run(stopCh, doneCh)
}

func (m *Monitor) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.sample()
	for {
		select {
		case <-stopCh:
			m.sample()
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

func (m *Monitor) sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.mu.Lock()
	m.samples = append(m.samples, Sample{
		At:           time.Now(),
		HeapAllocMB:  float64(memStats.HeapAlloc) / (1024 * 1024),
		NumGoroutine: runtime.NumGoroutine(),
	})
	m.mu.Unlock()
}

// Stop halts sampling and returns the aggregated Stats over the whole
// run. Calling Stop without a prior Start returns a zero Stats.
func (m *Monitor) Stop() Stats {
	m.mu.Lock()
	stopCh := m.stopCh
	m.mu.Unlock()

	if stopCh == nil {
		return Stats{}
	}
	close(stopCh)
	<-m.doneCh

	m.mu.Lock()
	defer m.mu.Unlock()
	stats := summarize(m.samples, time.Since(m.started))
	m.stopCh = nil
	m.doneCh = nil
	return stats
}

func summarize(samples []Sample, duration time.Duration) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	memory := make([]float64, len(samples))
	goroutineSum := 0
	for i, s := range samples {
		memory[i] = s.HeapAllocMB
		goroutineSum += s.NumGoroutine
	}
	sort.Float64s(memory)

	return Stats{
		PeakMemoryMB:    memory[len(memory)-1],
		P50MemoryMB:     percentile(memory, 0.50),
		P95MemoryMB:     percentile(memory, 0.95),
		P99MemoryMB:     percentile(memory, 0.99),
		AverageCPUProxy: float64(goroutineSum) / float64(len(samples)),
		SampleCount:     len(samples),
		Duration:        duration,
	}
}

// percentile returns sorted[floor(p*(n-1))] for sorted (ascending), with
// no interpolation between neighbouring samples.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := int(p * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Measure runs fn while sampling at interval, returning fn's error
// alongside the resulting Stats. This is the common case: profile one
// bounded unit of work instead of manually Start/Stop-ing around it.
func Measure(interval time.Duration, fn func() error) (Stats, error) {
	m := New(interval)
	m.Start()
	err := fn()
	stats := m.Stop()
	return stats, err
}
