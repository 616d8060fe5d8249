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
	"context"

	"golang.org/x/time/rate"
)

// Throttle hands out tokens at a fixed rate. Dispatch spends one token per
// ranged request; egress metering spends one token per body byte.
//
// Safe for concurrent access.
type Throttle interface {
	// Capacity is the largest token count a single Wait may ask for.
	Capacity() uint64

	// Wait blocks until tokens are available or ctx is done.
	//
	// REQUIRES: tokens <= Capacity()
	Wait(ctx context.Context, tokens uint64) error
}

type limiter struct {
	l *rate.Limiter
}

// NewThrottle returns a token bucket refilled at rateHz tokens per second and
// holding at most capacity tokens.
func NewThrottle(rateHz float64, capacity int) Throttle {
	return &limiter{l: rate.NewLimiter(rate.Limit(rateHz), capacity)}
}

func (l *limiter) Capacity() uint64 {
	return uint64(l.l.Burst())
}

func (l *limiter) Wait(ctx context.Context, tokens uint64) error {
	return l.l.WaitN(ctx, int(tokens))
}
