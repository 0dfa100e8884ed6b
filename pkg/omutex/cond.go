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
	"sync"
	"time"
)

// Cond is a condition variable for UniqueLock. It is not bound to any one
// mutex: each wait operates through whichever UniqueLock is passed in, which
// must be held by the calling goroutine (undefined behavior otherwise, as
// with the underlying wait primitive).
//
// Waits may wake spuriously; callers must re-check their condition in a
// loop, or use the predicate forms which encapsulate the loop.
type Cond struct {
	// mu guards the waiter queue only. It is internal, leaf, and never
	// held while blocking, so it takes no part in the declared order.
	mu      sync.Mutex
	waiters []*condWaiter
}

type condWaiter struct {
	ch chan struct{}
}

// NewCond returns a new condition variable.
func NewCond() *Cond {
	return &Cond{}
}

// Wait atomically releases u's mutex and blocks until notified (or a
// spurious wakeup), then re-acquires the mutex before returning.
func (c *Cond) Wait(u *UniqueLock) {
	w := c.enqueue()
	u.Unlock()
	<-w.ch
	u.Lock()
}

// WaitFor is Wait with a bound of d. It returns false if the wait timed out
// before a notification. The mutex is re-acquired before returning either
// way.
func (c *Cond) WaitFor(u *UniqueLock, d time.Duration) bool {
	return c.WaitUntil(u, time.Now().Add(d))
}

// WaitUntil is Wait with an absolute deadline.
func (c *Cond) WaitUntil(u *UniqueLock, deadline time.Time) bool {
	w := c.enqueue()
	u.Unlock()
	woken := true
	timer := time.NewTimer(time.Until(deadline))
	select {
	case <-w.ch:
	case <-timer.C:
		woken = !c.abort(w)
	}
	timer.Stop()
	u.Lock()
	return woken
}

// WaitPred waits until pred() is true. pred is evaluated with the mutex
// held, and on return the mutex is held with pred() true.
func (c *Cond) WaitPred(u *UniqueLock, pred func() bool) {
	for !pred() {
		c.Wait(u)
	}
}

// WaitPredFor is WaitPred with a bound of d. It returns the final value of
// pred(), evaluated with the mutex held: false means the deadline passed
// with the predicate still unsatisfied.
func (c *Cond) WaitPredFor(u *UniqueLock, d time.Duration, pred func() bool) bool {
	return c.WaitPredUntil(u, time.Now().Add(d), pred)
}

// WaitPredUntil is WaitPred with an absolute deadline.
func (c *Cond) WaitPredUntil(u *UniqueLock, deadline time.Time, pred func() bool) bool {
	for !pred() {
		if !c.WaitUntil(u, deadline) {
			return pred()
		}
	}
	return true
}

// NotifyOne wakes one waiter, if any. May be called with or without the
// associated mutex held.
func (c *Cond) NotifyOne() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.waiters) == 0 {
		return
	}
	w := c.waiters[0]
	c.waiters = c.waiters[1:]
	close(w.ch)
}

// NotifyAll wakes all waiters. May be called with or without the associated
// mutex held.
func (c *Cond) NotifyAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range c.waiters {
		close(w.ch)
	}
	c.waiters = nil
}

func (c *Cond) enqueue() *condWaiter {
	w := &condWaiter{ch: make(chan struct{})}
	c.mu.Lock()
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()
	return w
}

// abort removes a timed-out waiter from the queue. It reports false if the
// waiter had already been taken by a notification, in which case that wakeup
// is treated as delivered rather than re-queued.
func (c *Cond) abort(w *condWaiter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, q := range c.waiters {
		if q == w {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}
