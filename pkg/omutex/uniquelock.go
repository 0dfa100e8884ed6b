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

import "time"

// UniqueLock exclusively owns zero or one acquired Mutex. It is created in
// the locked state by Acquire and may be unlocked and relocked during its
// lifetime; a ConditionVariable drives the temporary release/re-acquire
// through it while waiting.
//
// The usual shape is:
//
//	u := omutex.Acquire(m)
//	defer u.Release()
//
// which guarantees release on every exit path, including panics. A
// UniqueLock must not be copied and must not be handed to another goroutine
// while holding the mutex.
type UniqueLock struct {
	m      *Mutex
	held   bool
	noCopy noCopy
}

// Acquire locks m and returns a UniqueLock owning the acquisition. It blocks
// until the mutex is available.
func Acquire(m *Mutex) *UniqueLock {
	u := &UniqueLock{m: m}
	u.Lock()
	return u
}

// Lock re-acquires the owned mutex. The UniqueLock must not currently hold
// it.
func (u *UniqueLock) Lock() {
	u.m.Lock()
	u.held = true
}

// Unlock releases the owned mutex. The UniqueLock must currently hold it.
func (u *UniqueLock) Unlock() {
	u.held = false
	u.m.Unlock()
}

// TryLock attempts to re-acquire the owned mutex without blocking.
func (u *UniqueLock) TryLock() bool {
	if u.m.TryLock() {
		u.held = true
		return true
	}
	return false
}

// TryLockFor attempts to re-acquire the owned mutex, giving up after d.
func (u *UniqueLock) TryLockFor(d time.Duration) bool {
	if u.m.TryLockFor(d) {
		u.held = true
		return true
	}
	return false
}

// TryLockUntil attempts to re-acquire the owned mutex, giving up at the
// absolute deadline.
func (u *UniqueLock) TryLockUntil(deadline time.Time) bool {
	if u.m.TryLockUntil(deadline) {
		u.held = true
		return true
	}
	return false
}

// Held reports whether the UniqueLock currently holds its mutex.
func (u *UniqueLock) Held() bool {
	return u.held
}

// Release unlocks if still held. Idempotent, meant for defer.
func (u *UniqueLock) Release() {
	if u.held {
		u.Unlock()
	}
}
