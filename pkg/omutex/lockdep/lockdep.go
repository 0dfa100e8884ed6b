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

// Package lockdep implements a runtime validator for the declared lock
// acquisition order, enabled with the lockdep build tag.
//
// The validator keeps, per goroutine, the stack of currently held orders.
// A checked acquisition of order k aborts if the goroutine already holds any
// order >= k: with every goroutine acquiring in strictly increasing order no
// circular wait can form, so any decrease (or same-order nesting outside a
// scoped acquisition) is a latent deadlock even if this particular run does
// not hang.
package lockdep

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu    sync.Mutex
	names []string
	held  = map[uint64][]uint32{}
)

// Init records the declared order names for diagnostics.
func Init(n []string) {
	mu.Lock()
	defer mu.Unlock()
	names = append([]string(nil), n...)
}

// goid returns the calling goroutine's id, parsed from the runtime.Stack
// header. Far too slow for production, which is why this whole package sits
// behind a build tag.
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		panic(fmt.Sprintf("lockdep: unparseable stack header %q", buf[:n]))
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		panic(fmt.Sprintf("lockdep: unparseable goroutine id in %q", buf[:n]))
	}
	return id
}

func name(order uint32) string {
	if int(order) < len(names) {
		return names[order]
	}
	return fmt.Sprintf("order%d", order)
}

// AddLock notes that the calling goroutine acquired a mutex of the given
// order, aborting on a declared-order violation if checked.
func AddLock(order uint32, checked bool) {
	id := goid()
	mu.Lock()
	defer mu.Unlock()
	if checked {
		for _, h := range held[id] {
			if h >= order {
				msg := fmt.Sprintf("lockdep: goroutine %d acquires %q (order %d) while holding %q (order %d)",
					id, name(order), order, name(h), h)
				logrus.Error(msg)
				panic(msg)
			}
		}
	}
	held[id] = append(held[id], order)
}

// DelLock notes that the calling goroutine released a mutex of the given
// order.
func DelLock(order uint32) {
	id := goid()
	mu.Lock()
	defer mu.Unlock()
	s := held[id]
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == order {
			s = append(s[:i], s[i+1:]...)
			if len(s) == 0 {
				delete(held, id)
			} else {
				held[id] = s
			}
			return
		}
	}
	panic(fmt.Sprintf("lockdep: goroutine %d releases %q (order %d) which it does not hold",
		id, name(order), order))
}
