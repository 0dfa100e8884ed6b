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
	"testing"
	"time"
)

func TestUniqueLockLifecycle(t *testing.T) {
	m := NewMutex(OrderStream)

	u := Acquire(m)
	if !u.Held() {
		t.Fatalf("Acquire returned an unheld lock")
	}
	if m.TryLock() {
		t.Fatalf("mutex free while UniqueLock held")
	}

	u.Unlock()
	if u.Held() {
		t.Fatalf("Held() true after Unlock")
	}
	if !m.TryLock() {
		t.Fatalf("mutex held after UniqueLock release")
	}
	m.Unlock()

	// Relock within the same lifetime.
	u.Lock()
	if !u.Held() {
		t.Fatalf("Held() false after relock")
	}
	u.Release()
	u.Release() // idempotent
	if u.Held() {
		t.Fatalf("Held() true after Release")
	}
}

func TestUniqueLockReleaseOnPanic(t *testing.T) {
	m := NewMutex(OrderTrack)

	func() {
		defer func() { recover() }()
		u := Acquire(m)
		defer u.Release()
		panic("unwinding")
	}()

	if !m.TryLock() {
		t.Fatalf("mutex leaked across panic unwind")
	}
	m.Unlock()
}

func TestUniqueLockTimed(t *testing.T) {
	m := NewMutex(OrderTrack)
	u := &UniqueLock{m: m}

	if !u.TryLock() {
		t.Fatalf("TryLock failed on free mutex")
	}
	u.Unlock()

	m.Lock()
	if u.TryLockFor(50 * time.Millisecond) {
		t.Fatalf("TryLockFor succeeded on held mutex")
	}
	if u.TryLockUntil(time.Now().Add(50 * time.Millisecond)) {
		t.Fatalf("TryLockUntil succeeded on held mutex")
	}
	m.Unlock()

	if !u.TryLockFor(time.Second) {
		t.Fatalf("TryLockFor failed on free mutex")
	}
	u.Release()
}
