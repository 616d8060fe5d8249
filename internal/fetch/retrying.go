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

package fetch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/drivestream/drivestream/cfg"
	"github.com/drivestream/drivestream/internal/logger"
	"github.com/googleapis/gax-go/v2"
)

// Retrying layers a retry policy over a single-attempt RangeFetcher. Each
// attempt is still exactly one request.
type Retrying struct {
	inner    RangeFetcher
	attempts int64
	initial  time.Duration
	max      time.Duration
	mult     float64
	sleep    func(context.Context, time.Duration) error
}

// NewRetrying wraps inner according to c. With one attempt or fewer, inner is
// returned unchanged.
func NewRetrying(inner RangeFetcher, c cfg.FetchConfig) RangeFetcher {
	if c.MaxRetryAttempts <= 1 {
		return inner
	}
	return &Retrying{
		inner:    inner,
		attempts: c.MaxRetryAttempts,
		initial:  c.RetryInitialBackoff,
		max:      c.RetryMaxBackoff,
		mult:     c.RetryMultiplier,
		sleep:    gax.Sleep,
	}
}

func (r *Retrying) FetchRange(ctx context.Context, start, end int64) ([]byte, error) {
	backoff := gax.Backoff{
		Initial:    r.initial,
		Max:        r.max,
		Multiplier: r.mult,
	}

	for attempt := int64(1); ; attempt++ {
		data, err := r.inner.FetchRange(ctx, start, end)
		if err == nil {
			return data, nil
		}
		if attempt >= r.attempts || !ShouldRetry(err) || ctx.Err() != nil {
			return nil, err
		}

		pause := backoff.Pause()
		logger.Tracef("Retrying fetch [%d, %d] after %v (attempt %d of %d): %v", start, end, pause, attempt+1, r.attempts, err)
		if sleepErr := r.sleep(ctx, pause); sleepErr != nil {
			return nil, err
		}
	}
}

// ShouldRetry reports whether a failed fetch is worth another attempt.
func ShouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var ffe *FetchFailedError
	if !errors.As(err, &ffe) {
		return false
	}
	switch {
	case ffe.Status == 0:
		// No response: connection failures, deadlines, throttling.
		return !errors.Is(ffe.Err, context.Canceled)
	case ffe.Status == http.StatusUnauthorized:
		// The token may have expired between minting and use.
		return true
	case ffe.Status == http.StatusRequestTimeout, ffe.Status == http.StatusTooManyRequests:
		return true
	case ffe.Status >= 500:
		return true
	default:
		return storage.ShouldRetry(ffe.Err)
	}
}
