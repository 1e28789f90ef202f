// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimer(t *testing.T) {
	tm := New()
	tm.now = fakeClock(time.Millisecond)

	outer := tm.RecordSpan("workload")
	for range 3 {
		tm.RecordSpan("read").End()
	}
	assert.Equal(t, 7*time.Millisecond, outer.End())

	read := tm.Stat("read")
	assert.Equal(t, 3, read.Count)
	assert.Equal(t, 3*time.Millisecond, read.Total)
	assert.Equal(t, time.Millisecond, read.Mean())
	assert.Equal(t, time.Millisecond, read.Min)
	assert.Equal(t, time.Millisecond, read.Max)

	assert.Equal(t, []string{"read", "workload"}, tm.Names())
	assert.Equal(t, Stat{}, tm.Stat("unknown"))
	assert.Zero(t, Stat{}.Mean())
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	span := tm.RecordSpan("read")
	assert.Zero(t, span.End())
	assert.Equal(t, Stat{}, tm.Stat("read"))
	assert.Nil(t, tm.Snapshot())
	assert.Empty(t, tm.Names())
}
