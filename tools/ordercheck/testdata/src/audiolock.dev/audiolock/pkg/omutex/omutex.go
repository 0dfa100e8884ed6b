// Minimal mirror of pkg/omutex for analyzer tests. Order values must match
// the real declaration order.
package omutex

import "time"

type Order uint32

const (
	OrderEngine Order = iota
	OrderDeviceHAL
	OrderClient
	OrderStream
	OrderTrack
	OrderEffectChain
	OrderEffect
	OrderLoudness
	OrderUnordered
)

type Mutex struct{ order Order }

func NewMutex(order Order) *Mutex { return &Mutex{order: order} }

func NewUnordered() *Mutex { return NewMutex(OrderUnordered) }

func (m *Mutex) Init(order Order) { m.order = order }

func (m *Mutex) Lock() {}

func (m *Mutex) Unlock() {}

func (m *Mutex) TryLock() bool { return true }

func (m *Mutex) TryLockFor(time.Duration) bool { return true }

func (m *Mutex) TryLockUntil(time.Time) bool { return true }

type UniqueLock struct{ m *Mutex }

func Acquire(m *Mutex) *UniqueLock { m.Lock(); return &UniqueLock{m: m} }

func (u *UniqueLock) Lock() {}

func (u *UniqueLock) Unlock() {}

func (u *UniqueLock) Release() {}

type ScopedLock struct{ ms []*Mutex }

func LockAll(ms ...*Mutex) *ScopedLock { return &ScopedLock{ms: ms} }

func (s *ScopedLock) Unlock() {}
