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

package schedprio

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SetThreadPriority places thread tid (0 for the calling thread) at the
// given unified priority. A real-time value switches the thread to
// SCHED_FIFO with the mapped rtprio; a CFS value switches the policy back to
// SCHED_NORMAL only if needed and sets the mapped niceness. Errors (bad tid,
// insufficient privilege, invalid unified value) are returned; the caller
// must not assume the priority took effect without checking.
func SetThreadPriority(tid int, p int) error {
	switch {
	case IsRealtime(p):
		attr := &unix.SchedAttr{
			Size:     unix.SizeofSchedAttr,
			Policy:   unix.SCHED_FIFO,
			Priority: uint32(UnifiedToRTPrio(p)),
		}
		if err := unix.SchedSetAttr(tid, attr, 0); err != nil {
			return fmt.Errorf("sched_setattr(%d, FIFO/%d): %w", tid, attr.Priority, err)
		}
		return nil
	case IsCFS(p):
		nice := UnifiedToNice(p)
		cur, err := unix.SchedGetAttr(tid, 0)
		if err != nil {
			return fmt.Errorf("sched_getattr(%d): %w", tid, err)
		}
		if cur.Policy != unix.SCHED_NORMAL {
			attr := &unix.SchedAttr{
				Size:   unix.SizeofSchedAttr,
				Policy: unix.SCHED_NORMAL,
				Nice:   int32(nice),
			}
			if err := unix.SchedSetAttr(tid, attr, 0); err != nil {
				return fmt.Errorf("sched_setattr(%d, NORMAL/%d): %w", tid, nice, err)
			}
			return nil
		}
		if err := unix.Setpriority(unix.PRIO_PROCESS, tid, nice); err != nil {
			return fmt.Errorf("setpriority(%d, %d): %w", tid, nice, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidPriority, p)
	}
}

// GetThreadPriority returns the unified priority of thread tid (0 for the
// calling thread). A non-nil error (no such thread, permission) means the
// returned value is meaningless; a valid unified priority is never paired
// with an error.
func GetThreadPriority(tid int) (int, error) {
	attr, err := unix.SchedGetAttr(tid, 0)
	if err != nil {
		return 0, fmt.Errorf("sched_getattr(%d): %w", tid, err)
	}
	switch attr.Policy {
	case unix.SCHED_FIFO, unix.SCHED_RR:
		return RTPrioToUnified(int(attr.Priority)), nil
	default:
		return NiceToUnified(int(attr.Nice)), nil
	}
}
