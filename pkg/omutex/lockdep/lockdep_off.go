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

//go:build !lockdep
// +build !lockdep

// Package lockdep implements a runtime validator for the declared lock
// acquisition order. It is compiled in only under the lockdep build tag;
// this file provides the zero-cost stubs used otherwise.
package lockdep

// Init records the declared order names for diagnostics.
func Init(names []string) {}

// AddLock notes that the calling goroutine acquired a mutex of the given
// order. With checked set, it aborts if the acquisition violates the
// declared order relative to the mutexes the goroutine already holds.
//
//go:inline
func AddLock(order uint32, checked bool) {}

// DelLock notes that the calling goroutine released a mutex of the given
// order.
//
//go:inline
func DelLock(order uint32) {}
