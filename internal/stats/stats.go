// Package stats implements the per-node and per-workload Statistics
// record described in spec.md §3: a completion count, exception count,
// running sum and sum-of-squares of durations (microseconds), min, and
// max, with an atomic snapshot-with-reset.
package stats

import (
	"math"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// Stats is one node's or one workload's running statistics. The integer
// counters are lock-free (go.uber.org/atomic); the float aggregates share
// one mutex, mirroring the teacher's types.Metrics (sync.Mutex guarding
// float slices/sums rather than trying to make float64 additions atomic).
type Stats struct {
	count     atomic.Int64
	exceptions atomic.Int64

	mu     sync.Mutex
	sum    float64
	sumSq  float64
	min    float64
	max    float64
	hasMin bool
}

// New returns a zeroed Stats record.
func New() *Stats {
	return &Stats{}
}

// Record adds one completed execution's duration to the statistics.
func (s *Stats) Record(d time.Duration) {
	micros := float64(d.Microseconds())
	s.count.Inc()

	s.mu.Lock()
	s.sum += micros
	s.sumSq += micros * micros
	if !s.hasMin || micros < s.min {
		s.min = micros
		s.hasMin = true
	}
	if micros > s.max {
		s.max = micros
	}
	s.mu.Unlock()
}

// RecordException increments the exception counter (§7: "the operation
// records the exception on its owning node's statistics
// (exceptionCount++)"). It does not imply a Record call — an operation
// that errors still completes its traversal step and is counted normally
// by the node's own Record call in the core loop.
func (s *Stats) RecordException() {
	s.exceptions.Inc()
}

// Count returns the current completion count.
func (s *Stats) Count() int64 { return s.count.Load() }

// Exceptions returns the current exception count.
func (s *Stats) Exceptions() int64 { return s.exceptions.Load() }

// Snapshot is an immutable read of one Stats record at a point in time.
type Snapshot struct {
	Count      int64
	Exceptions int64
	AvgMicros  float64
	MinMicros  float64
	MaxMicros  float64
	StdDev     float64
}

// SnapshotWithReset atomically reads the current counters and, if reset is
// true, zeroes them (§3: "Supports snapshot-with-reset producing a Value
// document and atomically zeroing the counters"; §8 property 4).
func (s *Stats) SnapshotWithReset(reset bool) Snapshot {
	count := s.count.Load()
	exceptions := s.exceptions.Load()

	s.mu.Lock()
	sum, sumSq, min, max := s.sum, s.sumSq, s.min, s.max
	if reset {
		s.sum, s.sumSq, s.min, s.max, s.hasMin = 0, 0, 0, 0, false
	}
	s.mu.Unlock()

	if reset {
		s.count.Store(0)
		s.exceptions.Store(0)
	}

	snap := Snapshot{Count: count, Exceptions: exceptions, MinMicros: min, MaxMicros: max}
	if count > 0 {
		snap.AvgMicros = sum / float64(count)
		variance := sumSq/float64(count) - snap.AvgMicros*snap.AvgMicros
		if variance < 0 {
			variance = 0
		}
		snap.StdDev = math.Sqrt(variance)
	}
	return snap
}

// ToValue renders a Snapshot as the document shape §6 describes:
// {count, avg_us, min_us, max_us, exceptions, stddev_us}.
func (snap Snapshot) ToValue() value.Value {
	return value.NewDocument([]value.DocEntry{
		{Key: "count", Value: value.NewInt(snap.Count)},
		{Key: "exceptions", Value: value.NewInt(snap.Exceptions)},
		{Key: "avg_us", Value: value.NewFloat(snap.AvgMicros)},
		{Key: "min_us", Value: value.NewFloat(snap.MinMicros)},
		{Key: "max_us", Value: value.NewFloat(snap.MaxMicros)},
		{Key: "stddev_us", Value: value.NewFloat(snap.StdDev)},
	})
}
