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

import "fmt"

// Order is a position in the process-wide lock acquisition order. A thread
// holding a mutex of order k may only acquire mutexes of order greater than
// k. The order is a property of the mutex, fixed at construction.
//
// Orders are densely numbered. New orders must be appended immediately before
// OrderUnordered so that existing numeric values keep their meaning across
// builds.
type Order uint32

// The process-wide lock order, leaf-most last. OrderUnordered is the
// construction default and is deliberately the highest value: an unordered
// mutex is always a leaf and can never be held while acquiring a named one.
const (
	// OrderEngine guards top-level engine state (device open/close, global
	// routing changes).
	OrderEngine Order = iota

	// OrderDeviceHAL guards per-device HAL session state.
	OrderDeviceHAL

	// OrderClient guards per-client registration state.
	OrderClient

	// OrderStream guards stream lifecycle state.
	OrderStream

	// OrderTrack guards per-track playback state within a stream.
	OrderTrack

	// OrderEffectChain guards an effect chain attached to a stream.
	OrderEffectChain

	// OrderEffect guards a single effect instance.
	OrderEffect

	// OrderLoudness guards the MEL/loudness aggregation worker state.
	OrderLoudness

	// OrderUnordered is the catch-all leaf category.
	OrderUnordered

	orderCount
)

var orderNames = [orderCount]string{
	OrderEngine:      "Engine",
	OrderDeviceHAL:   "DeviceHAL",
	OrderClient:      "Client",
	OrderStream:      "Stream",
	OrderTrack:       "Track",
	OrderEffectChain: "EffectChain",
	OrderEffect:      "Effect",
	OrderLoudness:    "Loudness",
	OrderUnordered:   "Unordered",
}

// OrderCount returns the number of declared orders, including OrderUnordered.
func OrderCount() int {
	return int(orderCount)
}

// String returns the declared name of o, or a numeric form for out-of-range
// values.
func (o Order) String() string {
	if o < orderCount {
		return orderNames[o]
	}
	return fmt.Sprintf("Order(%d)", uint32(o))
}

// checkValid aborts on an out-of-range order. An invalid order is a
// programming error that would make the global order guarantee meaningless,
// so it is never tolerated.
func (o Order) checkValid() {
	if o >= orderCount {
		panic(fmt.Sprintf("omutex: order %d out of range [0, %d)", uint32(o), uint32(orderCount)))
	}
}

// Class describes one declared order for tooling (the static order checker,
// diagnostics).
type Class struct {
	Name  string
	Order Order
}

// Classes returns the declared orders in ascending acquisition order.
func Classes() []Class {
	cs := make([]Class, orderCount)
	for i := range cs {
		cs[i] = Class{Name: orderNames[i], Order: Order(i)}
	}
	return cs
}
