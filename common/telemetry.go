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

package common

import (
	"context"
	"errors"
	"time"
)

type ShutdownFn func(ctx context.Context) error

// JoinShutdownFunc combines the provided shutdown functions into a single function.
func JoinShutdownFunc(shutdownFns ...ShutdownFn) ShutdownFn {
	return func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFns {
			if fn == nil {
				continue
			}
			err = errors.Join(err, fn(ctx))
		}
		return err
	}
}

// StreamMetricHandle records reads served by a stream, split by whether the
// requested range was already cached.
type StreamMetricHandle interface {
	StreamReadCount(ctx context.Context, inc int64, cacheHit string)
	StreamReadBytesCount(ctx context.Context, inc int64, cacheHit string)
}

// FetchMetricHandle records ranged requests issued against a transport.
type FetchMetricHandle interface {
	FetchRequestCount(ctx context.Context, inc int64, transport string, status string)
	FetchDownloadBytesCount(ctx context.Context, inc int64, transport string)
	FetchRequestLatency(ctx context.Context, latency time.Duration, transport string)
}

type MetricHandle interface {
	StreamMetricHandle
	FetchMetricHandle
}

// CacheHitValue converts a boolean to the cache_hit attribute value.
func CacheHitValue(hit bool) string {
	if hit {
		return CacheHit
	}
	return CacheMiss
}
