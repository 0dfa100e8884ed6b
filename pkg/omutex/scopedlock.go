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
	"time"

	"github.com/cenkalti/backoff"

	"audiolock.dev/audiolock/pkg/omutex/lockdep"
)

// ScopedLock owns a set of mutexes acquired together. LockAll is
// deadlock-free regardless of the textual argument order at different call
// sites, so jointly-acquired mutexes need no declared-order compliance among
// themselves; the declared order still governs anything acquired separately
// while the set is held.
type ScopedLock struct {
	ms     []*Mutex
	noCopy noCopy
}

// Retry pacing for contended multi-acquisition. Tuned short: the immediate
// retry usually succeeds because the blocking holder is running.
const (
	lockAllInitialBackoff = 2 * time.Microsecond
	lockAllMaxBackoff     = time.Millisecond
)

// LockAll acquires all supplied mutexes and returns a ScopedLock owning
// them, releasing all on Unlock. In the concrete pipeline the set has one,
// two or three members, but any count works.
//
// The algorithm is the standard lock-everything idiom: block on one mutex,
// try-lock the rest; on a failed try, release everything, rotate so the
// contended mutex is blocked on first, back off briefly and retry. No thread
// ever keeps a partial subset while blocked on a member another thread can
// hold indefinitely, so two call sites listing the same mutexes in opposite
// order cannot deadlock each other.
func LockAll(ms ...*Mutex) *ScopedLock {
	s := &ScopedLock{ms: ms}
	switch len(ms) {
	case 0:
		return s
	case 1:
		ms[0].lockScoped()
		return s
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = lockAllInitialBackoff
	bo.MaxInterval = lockAllMaxBackoff
	bo.MaxElapsedTime = 0 // retry until acquired
	bo.Reset()

	first := 0
	for {
		ms[first].lockScoped()
		failed := -1
		for i := 1; i < len(ms); i++ {
			m := ms[(first+i)%len(ms)]
			if !m.tryLockScoped() {
				failed = (first + i) % len(ms)
				break
			}
		}
		if failed < 0 {
			return s
		}
		// Release everything acquired this round, contended mutex
		// included in the next round's blocking slot.
		ms[first].Unlock()
		for i := 1; (first+i)%len(ms) != failed; i++ {
			ms[(first+i)%len(ms)].Unlock()
		}
		first = failed
		time.Sleep(bo.NextBackOff())
	}
}

// Unlock releases all owned mutexes.
func (s *ScopedLock) Unlock() {
	for _, m := range s.ms {
		m.Unlock()
	}
}

// lockScoped acquires for a ScopedLock: the held set is still registered
// with the validator, but the acquisition itself is exempt from the declared
// order check.
func (m *Mutex) lockScoped() {
	lockdep.AddLock(uint32(m.order), false)
	m.lockUnchecked()
}

func (m *Mutex) tryLockScoped() bool {
	if !m.tryAcquire() {
		return false
	}
	lockdep.AddLock(uint32(m.order), false)
	Stats().record(m.order, 0)
	return true
}
