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

//go:build linux
// +build linux

package omutex

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// The priority inheritance backend is a PI futex: the 32-bit word holds the
// owner's TID (0 when free), and the kernel manages the FUTEX_WAITERS bit and
// the priority boost of the owner thread. Because the kernel boosts by owner
// TID, the owning goroutine is pinned to its OS thread between Lock and
// Unlock.
//
// Timed acquisition uses the absolute CLOCK_REALTIME timeout of
// FUTEX_LOCK_PI, so contended timed locks wake exactly at the deadline
// rather than drifting through relative-sleep retries.

// From <linux/futex.h>. x/sys/unix exports the futex syscall number but not
// the opcodes.
const (
	futexLockPI      = 6
	futexUnlockPI    = 7
	futexTryLockPI   = 8
	futexPrivateFlag = 128
)

func futex(addr *uint32, op int, val uint32, ts *unix.Timespec) unix.Errno {
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(op|futexPrivateFlag),
		uintptr(val),
		uintptr(unsafe.Pointer(ts)),
		0, 0)
	return errno
}

// lockPI acquires the PI futex, blocking until the deadline described by ts
// (nil means block forever). Returns false only on timeout. The caller must
// already be pinned to its OS thread and tid must be that thread's id.
func (m *Mutex) lockPI(tid uint32, ts *unix.Timespec) bool {
	if atomic.CompareAndSwapUint32(&m.word, 0, tid) {
		return true
	}
	for {
		switch errno := futex(&m.word, futexLockPI, 0, ts); errno {
		case 0:
			return true
		case unix.EINTR:
			continue
		case unix.ETIMEDOUT:
			return false
		case unix.EDEADLK:
			// Already owned by the calling thread. The mutex is
			// non-reentrant, so an untimed relock can never
			// succeed: fail fast. A timed attempt reports timeout,
			// like any contended acquisition the holder never
			// releases.
			if ts == nil {
				panic("omutex: FUTEX_LOCK_PI: mutex already held by calling thread")
			}
			deadline := time.Unix(int64(ts.Sec), int64(ts.Nsec))
			if d := time.Until(deadline); d > 0 {
				time.Sleep(d)
			}
			return false
		default:
			panic(fmt.Sprintf("omutex: FUTEX_LOCK_PI: %v", errno))
		}
	}
}

// tryLockPI attempts a non-blocking acquisition of the PI futex.
func (m *Mutex) tryLockPI(tid uint32) bool {
	if atomic.CompareAndSwapUint32(&m.word, 0, tid) {
		return true
	}
	switch errno := futex(&m.word, futexTryLockPI, 0, nil); errno {
	case 0:
		return true
	case unix.EAGAIN, unix.EDEADLK:
		// Held by another thread (or, EDEADLK, by this one: calling
		// thread contract violation, reported as failure like any
		// other contended try).
		return false
	default:
		panic(fmt.Sprintf("omutex: FUTEX_TRYLOCK_PI: %v", errno))
	}
}

// unlockPI releases the PI futex. Must be called on the owning thread.
func (m *Mutex) unlockPI(tid uint32) {
	if atomic.CompareAndSwapUint32(&m.word, tid, 0) {
		// No waiters.
		return
	}
	if errno := futex(&m.word, futexUnlockPI, 0, nil); errno != 0 {
		panic(fmt.Sprintf("omutex: FUTEX_UNLOCK_PI: %v", errno))
	}
}

// gettid returns the calling thread's id. Only meaningful while the calling
// goroutine is pinned with runtime.LockOSThread.
func gettid() uint32 {
	return uint32(unix.Gettid())
}

// piLock blocks until the PI futex is acquired, pinning the goroutine to its
// OS thread for the duration of the critical section.
func (m *Mutex) piLock() {
	runtime.LockOSThread()
	m.lockPI(gettid(), nil)
}

// piTryLock attempts a non-blocking acquisition, leaving the goroutine
// pinned only on success.
func (m *Mutex) piTryLock() bool {
	runtime.LockOSThread()
	if m.tryLockPI(gettid()) {
		return true
	}
	runtime.UnlockOSThread()
	return false
}

// piTryLockUntil blocks until the PI futex is acquired or the CLOCK_REALTIME
// deadline passes, leaving the goroutine pinned only on success.
func (m *Mutex) piTryLockUntil(deadline time.Time) bool {
	runtime.LockOSThread()
	ts := unix.NsecToTimespec(deadline.UnixNano())
	if m.lockPI(gettid(), &ts) {
		return true
	}
	runtime.UnlockOSThread()
	return false
}

// piUnlock releases the PI futex and unpins the goroutine.
func (m *Mutex) piUnlock() {
	m.unlockPI(gettid())
	runtime.UnlockOSThread()
}

// piProbe verifies that the kernel accepts PI futex operations. Run once when
// the priority inheritance flag is first resolved.
func piProbe() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var word uint32
	tid := gettid()
	if errno := futex(&word, futexTryLockPI, 0, nil); errno != 0 {
		return fmt.Errorf("FUTEX_TRYLOCK_PI probe: %w", errno)
	}
	if !atomic.CompareAndSwapUint32(&word, tid, 0) {
		if errno := futex(&word, futexUnlockPI, 0, nil); errno != 0 {
			return fmt.Errorf("FUTEX_UNLOCK_PI probe: %w", errno)
		}
	}
	return nil
}
