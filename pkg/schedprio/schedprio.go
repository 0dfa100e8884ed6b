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

// Package schedprio converts between the unified scheduler priority space
// and the kernel's real-time and fair-share scheduling parameters, and
// assigns priorities to threads. Audio threads (the callback threads, the
// loudness background worker) are placed with SetThreadPriority.
//
// The unified space is linear with 0 the highest priority:
//
//	unified   0..98    SCHED_FIFO, rtprio 99..1
//	unified   99       invalid (would be rtprio 0, which SCHED_FIFO rejects)
//	unified 100..139   CFS, nice -20..19
package schedprio

import "errors"

// Unified priority space bounds.
const (
	// MaxRTPrio is the first unified value past the real-time range.
	MaxRTPrio = 100
	// MaxPrio is the first unified value past the CFS range.
	MaxPrio = 140
	// DefaultPrio is the unified value of nice 0.
	DefaultPrio = 120

	MinNice = -20
	MaxNice = 19
	// MinRTPrio is the lowest valid SCHED_FIFO sched_priority.
	MinRTPrio = 1
)

// ErrInvalidPriority is returned for unified values outside both scheduling
// ranges (negative, 99, or >= MaxPrio).
var ErrInvalidPriority = errors.New("schedprio: invalid unified priority")

// NiceToUnified maps a niceness to the unified space.
func NiceToUnified(nice int) int {
	return DefaultPrio + nice
}

// UnifiedToNice maps a unified priority to a niceness, clamped to the valid
// nice range.
func UnifiedToNice(p int) int {
	return clamp(p-DefaultPrio, MinNice, MaxNice)
}

// RTPrioToUnified maps a SCHED_FIFO sched_priority to the unified space.
func RTPrioToUnified(rtprio int) int {
	return MaxRTPrio - 1 - rtprio
}

// UnifiedToRTPrio maps a unified priority to a SCHED_FIFO sched_priority,
// clamped to the valid [1, 99] range.
func UnifiedToRTPrio(p int) int {
	return clamp(MaxRTPrio-1-p, MinRTPrio, MaxRTPrio-1)
}

// IsRealtime reports whether p is in the real-time range. Unified 99 maps to
// rtprio 0, which the kernel rejects for SCHED_FIFO, so the range is
// exclusive of it: IsRealtime(98) is true, IsRealtime(99) is false.
func IsRealtime(p int) bool {
	return p >= 0 && p < MaxRTPrio-1
}

// IsCFS reports whether p is in the fair-share range [MaxRTPrio, MaxPrio).
func IsCFS(p int) bool {
	return p >= MaxRTPrio && p < MaxPrio
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
