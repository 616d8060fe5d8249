// Copyright 2026 Google LLC
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

package ratelimit

import (
	"fmt"
	"math"
	"time"
)

// windowFraction bounds how far the observed rate may exceed the limit in any
// window: the bucket holds 1/windowFraction of the window's worth of tokens.
const windowFraction = 50

// ChooseLimiterCapacity picks a token bucket capacity such that, averaged over
// any window of the given length, the rate stays within rateHz.
func ChooseLimiterCapacity(
	rateHz float64,
	window time.Duration) (capacity uint64, err error) {
	if !(rateHz > 0) || math.IsInf(rateHz, 0) {
		err = fmt.Errorf("Illegal rate: %f", rateHz)
		return
	}

	if window <= 0 {
		err = fmt.Errorf("Illegal window: %v", window)
		return
	}

	capacityFloat := math.Floor(window.Seconds() * rateHz / windowFraction)
	if !(capacityFloat > 0 && capacityFloat < math.MaxInt32) {
		err = fmt.Errorf(
			"Can't use a token bucket to limit to %f Hz over a window of %v (result is a capacity of %f)",
			rateHz,
			window,
			capacityFloat)
		return
	}

	capacity = uint64(capacityFloat)
	return
}
