// Package metrics provides in-memory timing statistics for text-generation calls.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single generation label.
type OperationMetrics struct {
	Count     int64
	Failures  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Label     string
	Count     int64
	Failures  int64
	TotalTime time.Duration
	AvgTime   time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// Snapshot represents all collected statistics at a point in time.
type Snapshot struct {
	Uptime     time.Duration
	Operations []OperationSnapshot // sorted by label
}

// Collector aggregates in-memory timing statistics keyed by label.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for a label.
// Caller must hold write lock.
func (c *Collector) getOrCreate(label string) *OperationMetrics {
	m, ok := c.ops[label]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[label] = m
	}
	return m
}

// RecordTiming records the duration of one call under label.
func (c *Collector) RecordTiming(label string, duration time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(label)
	m.Count++
	m.TotalTime += duration
	if failed {
		m.Failures++
	}

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Uptime:     time.Since(c.startTime),
		Operations: make([]OperationSnapshot, 0, len(c.ops)),
	}
	for label, m := range c.ops {
		if m.Count == 0 {
			continue
		}
		snap.Operations = append(snap.Operations, OperationSnapshot{
			Label:     label,
			Count:     m.Count,
			Failures:  m.Failures,
			TotalTime: m.TotalTime,
			AvgTime:   m.TotalTime / time.Duration(m.Count),
			MinTime:   m.MinTime,
			MaxTime:   m.MaxTime,
		})
	}
	sort.Slice(snap.Operations, func(i, j int) bool {
		return snap.Operations[i].Label < snap.Operations[j].Label
	})
	return snap
}

// Total sums call counts and durations across all labels.
func (s Snapshot) Total() (count int64, total time.Duration) {
	for _, op := range s.Operations {
		count += op.Count
		total += op.TotalTime
	}
	return count, total
}
