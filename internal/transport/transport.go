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

// Package transport performs ranged retrievals against remote resources.
//
// A Backend does the synchronous work for one kind of locator (plain HTTP,
// Cloud Storage, S3, Google Drive). A Dispatcher turns a Backend into an
// asynchronous Transport that runs requests on a worker pool and reports each
// outcome through a completion callback.
package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/drivestream/drivestream/internal/ratelimit"
	"github.com/drivestream/drivestream/internal/workerpool"
	"golang.org/x/oauth2"
)

// Request is one ranged retrieval for the inclusive byte range [Start, End].
type Request struct {
	Locator string
	Start   int64
	End     int64
	// Credential authorizes the request. Nil means anonymous.
	Credential oauth2.TokenSource
}

// Len is the number of bytes requested.
func (r *Request) Len() int64 {
	return r.End - r.Start + 1
}

func (r *Request) String() string {
	return fmt.Sprintf("%s[%d, %d]", r.Locator, r.Start, r.End)
}

// Response is the outcome of a Request. Err is non-nil when the retrieval did
// not complete successfully, in which case Body must be ignored.
type Response struct {
	// Transport names the backend that served the request.
	Transport string
	// Status is the protocol status of the response, or 0 when none was received.
	Status int
	Body   []byte
	Err    error
}

// Info describes a remote resource.
type Info struct {
	Name   string
	Length int64
}

// Transport dispatches ranged requests. done is invoked exactly once per
// Dispatch, from an arbitrary goroutine.
type Transport interface {
	Dispatch(ctx context.Context, req *Request, done func(*Response))
}

// Describer resolves the display name and total length of a resource.
type Describer interface {
	Describe(ctx context.Context, locator string, cred oauth2.TokenSource) (Info, error)
}

// Backend performs ranged retrievals synchronously.
type Backend interface {
	Describer

	Name() string
	Fetch(ctx context.Context, req *Request) *Response
}

// Options are shared by all backends.
type Options struct {
	UserAgent string
	// Egress, when set, limits the bandwidth at which response bodies are read.
	Egress ratelimit.Throttle
}

// readRange reads at most want bytes from body, subject to the egress throttle.
func readRange(ctx context.Context, body io.Reader, want int64, egress ratelimit.Throttle) ([]byte, error) {
	r := io.LimitReader(body, want)
	if egress != nil {
		r = ratelimit.ThrottledReader(ctx, r, egress)
	}
	return io.ReadAll(r)
}

////////////////////////////////////////////////////////////////////////
// Dispatcher
////////////////////////////////////////////////////////////////////////

// Dispatcher runs a Backend on a worker pool. Fetches are scheduled as
// normal tasks and descriptor lookups as urgent ones.
type Dispatcher struct {
	backend  Backend
	pool     workerpool.WorkerPool
	throttle ratelimit.Throttle
}

// NewDispatcher returns a Transport over backend. throttle, when non-nil,
// admits one token per request before it reaches the backend.
func NewDispatcher(backend Backend, pool workerpool.WorkerPool, throttle ratelimit.Throttle) *Dispatcher {
	return &Dispatcher{
		backend:  backend,
		pool:     pool,
		throttle: throttle,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, req *Request, done func(*Response)) {
	d.pool.Schedule(false, workerpool.TaskFunc(func() {
		if err := ctx.Err(); err != nil {
			done(&Response{Transport: d.backend.Name(), Err: err})
			return
		}
		if d.throttle != nil {
			if err := d.throttle.Wait(ctx, 1); err != nil {
				done(&Response{Transport: d.backend.Name(), Err: fmt.Errorf("throttle: %w", err)})
				return
			}
		}
		done(d.backend.Fetch(ctx, req))
	}))
}

func (d *Dispatcher) Describe(ctx context.Context, locator string, cred oauth2.TokenSource) (Info, error) {
	type result struct {
		info Info
		err  error
	}
	ch := make(chan result, 1)
	d.pool.Schedule(true, workerpool.TaskFunc(func() {
		info, err := d.backend.Describe(ctx, locator, cred)
		ch <- result{info, err}
	}))

	select {
	case r := <-ch:
		return r.info, r.err
	case <-ctx.Done():
		return Info{}, ctx.Err()
	}
}
