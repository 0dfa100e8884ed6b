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

// Package omutex provides the ordered, priority-inheritance-aware mutex used
// by the audio pipeline, together with its scoped-acquisition wrappers,
// condition variable and contention statistics.
//
// Every Mutex carries an Order, its position in the process-wide lock
// acquisition order. Code that holds several mutexes at once must acquire
// them in increasing order; the declared order is the single source of truth
// consumed by the static order checker (tools/ordercheck) and, under the
// lockdep build tag, by a runtime validator. The mutex itself does not
// enforce the order at runtime.
//
// When priority inheritance is enabled process-wide, mutexes are backed by a
// PI futex so that a low-priority holder is boosted by the kernel to the
// priority of the highest-priority waiter, bounding priority inversion on
// real-time audio threads. Otherwise an atomic word plus wake channel is
// used.
package omutex

import (
	"sync/atomic"
	"time"

	"audiolock.dev/audiolock/pkg/omutex/lockdep"
)

// Mutex is a mutual exclusion primitive tagged with a lock order. It is
// non-reentrant: locking it twice from the same goroutine, or unlocking it
// from a goroutine that does not hold it, is undefined behavior, matching
// the underlying primitive's contract.
//
// A Mutex must not be copied after first use, and must not be destroyed (or
// allowed to be garbage collected with finalizer side effects) while held.
type Mutex struct {
	order Order
	pi    bool

	// Channel backend state: v is 1 (free), 0 (held, uncontended) or -1
	// (held, contended); ch carries at most one wake token.
	v  atomic.Int32
	ch chan struct{}

	// PI futex backend word: owner TID, or 0 when free. The kernel
	// manages the waiters bit and the owner's priority boost.
	word uint32

	noCopy noCopy
}

func init() {
	lockdep.Init(orderNames[:])
}

// NewMutex returns a mutex at the given order. It aborts if order is not a
// declared order: an out-of-range order is a programming error that would
// void the global ordering guarantee, not a recoverable condition.
//
// The process-wide priority inheritance setting is read (and memoized, on
// first construction) and applied here. If the PI protocol turns out to be
// unavailable the mutex silently degrades to the default protocol; it never
// fails to construct.
func NewMutex(order Order) *Mutex {
	m := &Mutex{}
	m.Init(order)
	return m
}

// NewUnordered returns a mutex in the catch-all leaf category. It may never
// be held while acquiring an ordered mutex.
func NewUnordered() *Mutex {
	return NewMutex(OrderUnordered)
}

// Init initializes an embedded Mutex at the given order. It aborts on an
// out-of-range order, like NewMutex.
func (m *Mutex) Init(order Order) {
	order.checkValid()
	m.order = order
	m.pi = PriorityInheritanceEnabled()
	if !m.pi {
		m.v.Store(1)
		m.ch = make(chan struct{}, 1)
	}
}

// Order returns the order the mutex was constructed with.
func (m *Mutex) Order() Order {
	return m.order
}

// Lock acquires the mutex, blocking until it is available.
func (m *Mutex) Lock() {
	lockdep.AddLock(uint32(m.order), true)
	m.lockUnchecked()
}

// lockUnchecked acquires without touching lockdep; shared with ScopedLock, whose
// rotating acquisition intentionally ignores the declared order.
func (m *Mutex) lockUnchecked() {
	if m.tryAcquire() {
		Stats().record(m.order, 0)
		return
	}
	start := time.Now()
	if m.pi {
		m.piLock()
	} else {
		m.lockChan()
	}
	Stats().record(m.order, time.Since(start))
}

// TryLock attempts to acquire the mutex without blocking.
func (m *Mutex) TryLock() bool {
	if !m.tryAcquire() {
		return false
	}
	lockdep.AddLock(uint32(m.order), true)
	Stats().record(m.order, 0)
	return true
}

// TryLockFor acquires the mutex, giving up after d. A non-positive d is an
// immediate, non-blocking attempt.
func (m *Mutex) TryLockFor(d time.Duration) bool {
	if d <= 0 {
		return m.TryLock()
	}
	return m.TryLockUntil(time.Now().Add(d))
}

// TryLockUntil acquires the mutex, giving up at the given absolute deadline.
// The wait is a single absolute-deadline block, not a sleep-and-retry loop,
// so it does not drift under scheduling jitter.
func (m *Mutex) TryLockUntil(deadline time.Time) bool {
	if m.TryLock() {
		return true
	}
	start := time.Now()
	var ok bool
	if m.pi {
		ok = m.piTryLockUntil(deadline)
	} else {
		ok = m.tryLockChanUntil(deadline)
	}
	if !ok {
		return false
	}
	lockdep.AddLock(uint32(m.order), true)
	Stats().record(m.order, time.Since(start))
	return true
}

// Unlock releases the mutex. The caller must hold it.
func (m *Mutex) Unlock() {
	lockdep.DelLock(uint32(m.order))
	m.release()
}

func (m *Mutex) release() {
	if m.pi {
		m.piUnlock()
		return
	}
	if m.v.Swap(1) == 0 {
		// No pending waiters.
		return
	}
	select {
	case m.ch <- struct{}{}:
	default:
	}
}

// tryAcquire is the raw non-blocking acquisition, with no lockdep or
// statistics side effects.
func (m *Mutex) tryAcquire() bool {
	if m.pi {
		return m.piTryLock()
	}
	v := m.v.Load()
	return v > 0 && m.v.CompareAndSwap(1, 0)
}

// lockChan is the contended path of the channel backend.
func (m *Mutex) lockChan() {
	for {
		// Try to acquire, at the same time forcing v negative so that
		// the holder knows it is contended and must post a wake token
		// on release.
		if v := m.v.Load(); v >= 0 && m.v.Swap(-1) == 1 {
			return
		}
		<-m.ch
	}
}

// tryLockChanUntil is the contended timed path of the channel backend.
func (m *Mutex) tryLockChanUntil(deadline time.Time) bool {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	for {
		if v := m.v.Load(); v >= 0 && m.v.Swap(-1) == 1 {
			return true
		}
		select {
		case <-m.ch:
		case <-timer.C:
			// One last attempt at the deadline.
			v := m.v.Load()
			return v >= 0 && m.v.Swap(-1) == 1
		}
	}
}

// noCopy triggers go vet's copylocks check when a containing type is copied.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
