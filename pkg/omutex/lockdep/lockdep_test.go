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

//go:build lockdep
// +build lockdep

package lockdep

import (
	"sync"
	"testing"
)

func TestAscending(t *testing.T) {
	AddLock(1, true)
	AddLock(2, true)
	DelLock(2)
	DelLock(1)
}

func TestReverse(t *testing.T) {
	AddLock(2, true)
	defer DelLock(2)
	defer func() {
		if r := recover(); r != nil {
			t.Logf("%s", r)
			return
		}
		t.Error("the reverse lock order has not been detected")
	}()
	AddLock(1, true)
	DelLock(1)
}

func TestSameOrder(t *testing.T) {
	AddLock(3, true)
	defer DelLock(3)
	defer func() {
		if r := recover(); r != nil {
			t.Logf("%s", r)
			return
		}
		t.Error("same-order nesting has not been detected")
	}()
	AddLock(3, true)
	DelLock(3)
}

func TestUncheckedBypassesOrder(t *testing.T) {
	// A scoped acquisition registers without the order check...
	AddLock(5, false)
	AddLock(4, false)
	// ...but a later checked acquisition still sees the held set.
	defer func() {
		DelLock(4)
		DelLock(5)
		if recover() == nil {
			t.Error("checked acquisition under an unchecked set has not been detected")
		}
	}()
	AddLock(3, true)
	DelLock(3)
}

func TestReleaseUnheld(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("release of an unheld order has not been detected")
		}
	}()
	DelLock(7)
}

func TestPerGoroutineIsolation(t *testing.T) {
	// A held order in one goroutine must not constrain another.
	AddLock(6, true)
	defer DelLock(6)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		AddLock(1, true)
		DelLock(1)
	}()
	wg.Wait()
}
