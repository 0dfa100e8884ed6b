// Fixtures for the ordercheck analyzer. Order values: Engine=0, DeviceHAL=1,
// Client=2, Stream=3, Track=4, Unordered=8.
package ordertest

import "audiolock.dev/audiolock/pkg/omutex"

var (
	engineMu = omutex.NewMutex(omutex.OrderEngine)
	deviceMu = omutex.NewMutex(omutex.OrderDeviceHAL)
	clientMu = omutex.NewMutex(omutex.OrderClient)
	streamMu = omutex.NewMutex(omutex.OrderStream)
	trackMu  = omutex.NewMutex(omutex.OrderTrack)
	leafMu   = omutex.NewUnordered()
)

func ascending() {
	streamMu.Lock()
	trackMu.Lock()
	trackMu.Unlock()
	streamMu.Unlock()
}

func ascendingWithLeaf() {
	trackMu.Lock()
	leafMu.Lock()
	leafMu.Unlock()
	trackMu.Unlock()
}

func descending() {
	trackMu.Lock()
	streamMu.Lock() // want `lock order violation: acquiring streamMu \(order 3\) while holding trackMu \(order 4\)`
	streamMu.Unlock()
	trackMu.Unlock()
}

// The canonical documented violation: holding order 2 while acquiring
// order 1.
func clientThenDevice() {
	clientMu.Lock()
	deviceMu.Lock() // want `lock order violation: acquiring deviceMu \(order 1\) while holding clientMu \(order 2\)`
	deviceMu.Unlock()
	clientMu.Unlock()
}

func leafIsAlwaysLast() {
	leafMu.Lock()
	streamMu.Lock() // want `lock order violation: acquiring streamMu \(order 3\) while holding leafMu \(order 8\)`
	streamMu.Unlock()
	leafMu.Unlock()
}

func sameOrderTwice() {
	streamMu.Lock()
	streamMu.Lock() // want `lock order violation: acquiring streamMu \(order 3\) while holding streamMu \(order 3\)`
	streamMu.Unlock()
	streamMu.Unlock()
}

// Jointly-acquired sets are exempt regardless of textual order.
func scopedReversed() {
	s := omutex.LockAll(trackMu, streamMu)
	s.Unlock()
}

// But separately acquiring on top of a held set is still checked.
func scopedThenLower() {
	s := omutex.LockAll(streamMu, trackMu)
	engineMu.Lock() // want `lock order violation: acquiring engineMu \(order 0\) while holding streamMu \(order 3\)`
	engineMu.Unlock()
	s.Unlock()
}

func uniqueLockDescending() {
	u := omutex.Acquire(trackMu)
	streamMu.Lock() // want `lock order violation: acquiring streamMu \(order 3\) while holding trackMu \(order 4\)`
	streamMu.Unlock()
	u.Unlock()
}

func uniqueLockReleased() {
	u := omutex.Acquire(trackMu)
	u.Unlock()
	streamMu.Lock()
	streamMu.Unlock()
}

func timedAcquisitionsCount() {
	trackMu.Lock()
	if streamMu.TryLock() { // want `lock order violation: acquiring streamMu \(order 3\) while holding trackMu \(order 4\)`
		streamMu.Unlock()
	}
	trackMu.Unlock()
}
