// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package timer records named timing spans.
package timer

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/vechain/benchtop/metrics"
)

var metricSpanDuration = metrics.LazyLoadHistogramVec("span_duration_us", []string{"span"}, metrics.BucketMicros)

// Stat is the accumulated timing of one span name.
type Stat struct {
	Count int           `json:"count"`
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
}

// Mean returns the average span duration.
func (s Stat) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Timer accumulates spans by name. A nil Timer records nothing.
type Timer struct {
	lock  sync.Mutex
	stats map[string]*Stat
	now   func() time.Time
}

// New creates a timer.
func New() *Timer {
	return &Timer{
		stats: make(map[string]*Stat),
		now:   time.Now,
	}
}

// Span is a running span. The zero Span is a no-op.
type Span struct {
	t     *Timer
	name  string
	start time.Time
}

// RecordSpan starts a span of the given name. The span is recorded when End is called.
func (t *Timer) RecordSpan(name string) Span {
	if t == nil {
		return Span{}
	}
	return Span{t, name, t.now()}
}

// End records the span, and returns its duration.
func (s Span) End() time.Duration {
	if s.t == nil {
		return 0
	}
	d := s.t.now().Sub(s.start)
	s.t.add(s.name, d)
	return d
}

func (t *Timer) add(name string, d time.Duration) {
	t.lock.Lock()
	st := t.stats[name]
	if st == nil {
		st = &Stat{Min: d, Max: d}
		t.stats[name] = st
	}
	st.Count++
	st.Total += d
	st.Min = min(st.Min, d)
	st.Max = max(st.Max, d)
	t.lock.Unlock()

	metricSpanDuration().ObserveWithLabels(d.Microseconds(), map[string]string{"span": name})
}

// Stat returns the accumulated timing of the named span.
func (t *Timer) Stat(name string) Stat {
	if t == nil {
		return Stat{}
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if st := t.stats[name]; st != nil {
		return *st
	}
	return Stat{}
}

// Snapshot returns a copy of all accumulated timings.
func (t *Timer) Snapshot() map[string]Stat {
	if t == nil {
		return nil
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	snap := make(map[string]Stat, len(t.stats))
	for name, st := range t.stats {
		snap[name] = *st
	}
	return snap
}

// Names returns recorded span names in order.
func (t *Timer) Names() []string {
	return slices.Sorted(maps.Keys(t.Snapshot()))
}
