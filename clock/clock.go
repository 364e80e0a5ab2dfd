// Copyright 2025 Google LLC
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

// Package clock provides the time source used for inode timestamps and for
// the watch service's poll ticking, so both can be driven deterministically
// in tests.
package clock

import "time"

// Clock is the time source threaded through the store and watch packages.
// Inode creation/access/modified times and the watch poller's tick are read
// from a Clock rather than calling time.Now directly.
type Clock interface {
	// Now returns the current time according to the clock.
	Now() time.Time

	// After returns a channel on which the current time is sent once the
	// given duration has elapsed according to the clock.
	After(d time.Duration) <-chan time.Time
}

var (
	_ Clock = RealClock{}
	_ Clock = &FakeClock{}
	_ Clock = &SimulatedClock{}
)
