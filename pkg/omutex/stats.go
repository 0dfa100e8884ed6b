// Copyright 2026 The AudioLock Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package omutex

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Registry accumulates per-order lock contention statistics. All updates are
// plain atomics: the registry observes every lock in the process and must
// never itself take part in the ordering protocol, so it cannot be built on
// any mutex.
type Registry struct {
	slots [orderCount]waitSlot
}

type waitSlot struct {
	count      atomic.Uint64
	totalNanos atomic.Int64
	maxNanos   atomic.Int64
}

// WaitStats is a snapshot of one order's accumulator.
type WaitStats struct {
	// Count is the number of successful lock acquisitions.
	Count uint64
	// TotalWait is the accumulated time spent blocked acquiring.
	TotalWait time.Duration
	// MaxWait is the longest single blocked acquisition.
	MaxWait time.Duration
}

var statsOnce = sync.OnceValue(func() *Registry { return &Registry{} })

// Stats returns the process-wide registry. It is lazily constructed on first
// use and lives for the process lifetime, so it is safe to use from teardown
// paths of other package-level state.
func Stats() *Registry {
	return statsOnce()
}

// record appends a sample. Safe to call from any goroutine, with any set of
// mutexes held.
func (r *Registry) record(order Order, wait time.Duration) {
	s := &r.slots[order]
	s.count.Add(1)
	if wait <= 0 {
		return
	}
	n := wait.Nanoseconds()
	s.totalNanos.Add(n)
	for {
		max := s.maxNanos.Load()
		if n <= max || s.maxNanos.CompareAndSwap(max, n) {
			return
		}
	}
}

// Snapshot returns the current accumulator for one order. The fields are
// read individually, so a snapshot taken concurrently with updates may be
// internally skewed by in-flight samples; it is for diagnostics, not
// accounting.
func (r *Registry) Snapshot(order Order) WaitStats {
	order.checkValid()
	s := &r.slots[order]
	return WaitStats{
		Count:     s.count.Load(),
		TotalWait: time.Duration(s.totalNanos.Load()),
		MaxWait:   time.Duration(s.maxNanos.Load()),
	}
}

// String renders a human-readable dump of all categories, one per line, for
// logs and bug reports. Off the hot path; free to allocate.
func (r *Registry) String() string {
	var b strings.Builder
	b.WriteString("lock contention by order:\n")
	for o := Order(0); o < orderCount; o++ {
		ws := r.Snapshot(o)
		avg := time.Duration(0)
		if ws.Count > 0 {
			avg = ws.TotalWait / time.Duration(ws.Count)
		}
		fmt.Fprintf(&b, "  %-12s locks=%-10d avg=%-12v max=%v\n",
			o.String(), ws.Count, avg, ws.MaxWait)
	}
	return b.String()
}
