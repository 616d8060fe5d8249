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

// Package fetch adapts an asynchronous transport into a blocking, single
// attempt ranged retrieval.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drivestream/drivestream/common"
	"github.com/drivestream/drivestream/internal/monitor"
	"github.com/drivestream/drivestream/internal/transport"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// RangeFetcher retrieves the inclusive byte range [start, end] of a remote
// resource. The returned payload may be shorter than requested.
type RangeFetcher interface {
	FetchRange(ctx context.Context, start, end int64) ([]byte, error)
}

// FetchFailedError reports a ranged retrieval that did not complete.
type FetchFailedError struct {
	Start  int64
	End    int64
	Status int
	Err    error
}

func (e *FetchFailedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch [%d, %d] failed with status %d: %v", e.Start, e.End, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch [%d, %d] failed: %v", e.Start, e.End, e.Err)
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// Fetcher issues exactly one transport request per FetchRange and blocks
// until the transport reports completion. It does not touch any cache.
type Fetcher struct {
	transport transport.Transport
	locator   string
	cred      oauth2.TokenSource
	metrics   common.FetchMetricHandle
	// timeout bounds a single request. Zero means no deadline beyond ctx.
	timeout time.Duration
}

// NewFetcher returns a Fetcher for the resource at locator. A nil metric
// handle records nothing.
func NewFetcher(tr transport.Transport, locator string, cred oauth2.TokenSource, metrics common.FetchMetricHandle, timeout time.Duration) *Fetcher {
	if metrics == nil {
		metrics = common.NewNoopMetrics()
	}
	return &Fetcher{
		transport: tr,
		locator:   locator,
		cred:      cred,
		metrics:   metrics,
		timeout:   timeout,
	}
}

func (f *Fetcher) FetchRange(ctx context.Context, start, end int64) ([]byte, error) {
	if start < 0 || end < start {
		return nil, &FetchFailedError{Start: start, End: end, Err: errors.New("invalid range")}
	}

	ctx, span := monitor.StartSpan(ctx, "FetchRange", trace.WithAttributes(
		attribute.String("locator", f.locator),
		attribute.Int64("start", start),
		attribute.Int64("end", end),
	))
	defer span.End()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req := &transport.Request{
		Locator:    f.locator,
		Start:      start,
		End:        end,
		Credential: f.cred,
	}

	// Buffered so that a completion arriving after we stop waiting never blocks
	// the transport.
	done := make(chan *transport.Response, 1)
	begin := time.Now()
	f.transport.Dispatch(ctx, req, func(r *transport.Response) {
		done <- r
	})

	var resp *transport.Response
	select {
	case resp = <-done:
	case <-ctx.Done():
		resp = &transport.Response{Err: ctx.Err()}
	}

	name := resp.Transport
	if name == "" {
		name = "unknown"
	}
	f.metrics.FetchRequestLatency(ctx, time.Since(begin), name)
	span.SetAttributes(attribute.String("transport", name), attribute.Int("status", resp.Status))

	if resp.Err != nil {
		f.metrics.FetchRequestCount(ctx, 1, name, common.FetchStatusFailed)
		span.RecordError(resp.Err)
		span.SetStatus(codes.Error, resp.Err.Error())
		return nil, &FetchFailedError{Start: start, End: end, Status: resp.Status, Err: resp.Err}
	}

	body := resp.Body
	if want := req.Len(); int64(len(body)) > want {
		body = body[:want]
	}
	f.metrics.FetchRequestCount(ctx, 1, name, common.FetchStatusOK)
	f.metrics.FetchDownloadBytesCount(ctx, int64(len(body)), name)
	span.SetAttributes(attribute.Int("bytes", len(body)))
	return body, nil
}
