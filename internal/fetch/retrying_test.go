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
	"testing"
	"time"

	"github.com/drivestream/drivestream/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetcher fails with the queued errors before succeeding.
type scriptedFetcher struct {
	errs  []error
	calls int
}

func (s *scriptedFetcher) FetchRange(_ context.Context, start, end int64) ([]byte, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return make([]byte, end-start+1), nil
}

func failed(status int) error {
	return &FetchFailedError{Start: 0, End: 9, Status: status, Err: errors.New("boom")}
}

func newRetrying(inner RangeFetcher, attempts int64) *Retrying {
	r := NewRetrying(inner, cfg.FetchConfig{
		MaxRetryAttempts:    attempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     10 * time.Millisecond,
		RetryMultiplier:     2,
	}).(*Retrying)
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestNewRetryingSingleAttemptIsPassthrough(t *testing.T) {
	inner := &scriptedFetcher{}

	r := NewRetrying(inner, cfg.FetchConfig{MaxRetryAttempts: 1})

	assert.Same(t, inner, r)
}

func TestRetryingRecoversFromTransientFailure(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{failed(http.StatusServiceUnavailable), failed(0)}}
	r := newRetrying(inner, 3)

	data, err := r.FetchRange(context.Background(), 0, 9)

	require.NoError(t, err)
	assert.Len(t, data, 10)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingGivesUpAfterMaxAttempts(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{failed(500), failed(502), failed(503), failed(504)}}
	r := newRetrying(inner, 3)

	_, err := r.FetchRange(context.Background(), 0, 9)

	var ffe *FetchFailedError
	require.ErrorAs(t, err, &ffe)
	assert.Equal(t, 503, ffe.Status)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingStopsOnPermanentFailure(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{failed(http.StatusNotFound)}}
	r := newRetrying(inner, 5)

	_, err := r.FetchRange(context.Background(), 0, 9)

	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryingStopsWhenSleepInterrupted(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{failed(500), failed(500)}}
	r := newRetrying(inner, 5)
	r.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	_, err := r.FetchRange(context.Background(), 0, 9)

	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestShouldRetry(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"no response", failed(0), true},
		{"cancelled", &FetchFailedError{Err: context.Canceled}, false},
		{"deadline", &FetchFailedError{Err: context.DeadlineExceeded}, true},
		{"unauthorized", failed(http.StatusUnauthorized), true},
		{"too many requests", failed(http.StatusTooManyRequests), true},
		{"server error", failed(http.StatusBadGateway), true},
		{"forbidden", failed(http.StatusForbidden), false},
		{"not found", failed(http.StatusNotFound), false},
		{"plain error", errors.New("x"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldRetry(tc.err))
		})
	}
}
