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
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestLockAllSingle(t *testing.T) {
	m := NewMutex(OrderStream)
	s := LockAll(m)
	if m.TryLock() {
		t.Fatalf("mutex free while scoped lock held")
	}
	s.Unlock()
	if !m.TryLock() {
		t.Fatalf("mutex held after scoped unlock")
	}
	m.Unlock()
}

func TestLockAllEmpty(t *testing.T) {
	LockAll().Unlock()
}

// TestLockAllReversedOrder is the deadlock-freedom stress: two goroutines
// repeatedly acquire the same pair in opposite textual order. With a plain
// lock-in-argument-order acquisition this deadlocks almost immediately.
func TestLockAllReversedOrder(t *testing.T) {
	m1 := NewMutex(OrderStream)
	m2 := NewMutex(OrderTrack)

	const iters = 5000
	var held atomic.Int32
	body := func(a, b *Mutex) error {
		for i := 0; i < iters; i++ {
			s := LockAll(a, b)
			if n := held.Add(1); n != 1 {
				t.Errorf("%d holders of the pair", n)
			}
			held.Add(-1)
			s.Unlock()
		}
		return nil
	}

	var g errgroup.Group
	g.Go(func() error { return body(m1, m2) })
	g.Go(func() error { return body(m2, m1) })

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(60 * time.Second):
		t.Fatalf("reversed-order scoped locking deadlocked")
	}
}

func TestLockAllThreeWayStress(t *testing.T) {
	ms := []*Mutex{
		NewMutex(OrderClient),
		NewMutex(OrderStream),
		NewMutex(OrderTrack),
	}

	const iters = 2000
	var g errgroup.Group
	// Every rotation of the three mutexes, concurrently.
	for r := 0; r < 3; r++ {
		order := []*Mutex{ms[r], ms[(r+1)%3], ms[(r+2)%3]}
		g.Go(func() error {
			for i := 0; i < iters; i++ {
				s := LockAll(order[0], order[1], order[2])
				s.Unlock()
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(60 * time.Second):
		t.Fatalf("three-way scoped locking deadlocked")
	}
}

// TestLockAllAgainstSingleLocks mixes scoped sets with plain declared-order
// acquisition of the same mutexes, the expected production pattern.
func TestLockAllAgainstSingleLocks(t *testing.T) {
	m1 := NewMutex(OrderStream)
	m2 := NewMutex(OrderTrack)

	const iters = 2000
	var g errgroup.Group
	g.Go(func() error {
		for i := 0; i < iters; i++ {
			s := LockAll(m2, m1)
			s.Unlock()
		}
		return nil
	})
	g.Go(func() error {
		for i := 0; i < iters; i++ {
			m1.Lock()
			m2.Lock()
			m2.Unlock()
			m1.Unlock()
		}
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(60 * time.Second):
		t.Fatalf("scoped versus ordered locking deadlocked")
	}
}
