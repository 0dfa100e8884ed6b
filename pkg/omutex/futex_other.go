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

//go:build !linux
// +build !linux

package omutex

import (
	"errors"
	"time"
)

// piProbe always fails off Linux, which forces the priority inheritance flag
// to resolve to disabled. The pi* methods below are therefore unreachable.
func piProbe() error {
	return errors.New("priority inheritance futexes require linux")
}

func (m *Mutex) piLock() {
	panic("omutex: priority inheritance backend on non-linux platform")
}

func (m *Mutex) piTryLock() bool {
	panic("omutex: priority inheritance backend on non-linux platform")
}

func (m *Mutex) piTryLockUntil(time.Time) bool {
	panic("omutex: priority inheritance backend on non-linux platform")
}

func (m *Mutex) piUnlock() {
	panic("omutex: priority inheritance backend on non-linux platform")
}
