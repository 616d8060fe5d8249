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

package transport

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/drivestream/drivestream/internal/ratelimit"
	"github.com/drivestream/drivestream/internal/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeBackend serves ranges of an in-memory resource.
type fakeBackend struct {
	name    string
	content []byte
	calls   atomic.Int32
	err     error
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Fetch(_ context.Context, r *Request) *Response {
	f.calls.Add(1)
	if f.err != nil {
		return &Response{Transport: f.name, Err: f.err}
	}
	end := min(r.End+1, int64(len(f.content)))
	return &Response{Transport: f.name, Status: 206, Body: f.content[r.Start:end]}
}

func (f *fakeBackend) Describe(context.Context, string, oauth2.TokenSource) (Info, error) {
	return Info{Name: f.name, Length: int64(len(f.content))}, f.err
}

func newPool(t *testing.T) workerpool.WorkerPool {
	pool, err := workerpool.NewStaticWorkerPoolForWorkers(2, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Stop)
	return pool
}

func dispatchAndWait(t *testing.T, tr Transport, ctx context.Context, req *Request) *Response {
	ch := make(chan *Response, 1)
	tr.Dispatch(ctx, req, func(r *Response) { ch <- r })
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Error("completion callback never ran")
		return &Response{Err: errors.New("timed out")}
	}
}

func TestDispatcherCompletes(t *testing.T) {
	b := &fakeBackend{name: "fake", content: testContent(100)}
	d := NewDispatcher(b, newPool(t), nil)

	resp := dispatchAndWait(t, d, context.Background(), &Request{Locator: "x://y", Start: 10, End: 19})

	require.NoError(t, resp.Err)
	assert.Equal(t, b.content[10:20], resp.Body)
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestDispatcherCancelledContext(t *testing.T) {
	b := &fakeBackend{name: "fake", content: testContent(100)}
	d := NewDispatcher(b, newPool(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := dispatchAndWait(t, d, ctx, &Request{Locator: "x://y", Start: 0, End: 9})

	assert.ErrorIs(t, resp.Err, context.Canceled)
	assert.Equal(t, int32(0), b.calls.Load())
}

func TestDispatcherThrottleRejects(t *testing.T) {
	b := &fakeBackend{name: "fake", content: testContent(100)}
	// A zero-capacity throttle can never admit a token.
	d := NewDispatcher(b, newPool(t), ratelimit.NewThrottle(1, 0))

	resp := dispatchAndWait(t, d, context.Background(), &Request{Locator: "x://y", Start: 0, End: 9})

	assert.ErrorContains(t, resp.Err, "throttle")
	assert.Equal(t, "fake", resp.Transport)
	assert.Equal(t, int32(0), b.calls.Load())
}

func TestDispatcherConcurrentRequests(t *testing.T) {
	b := &fakeBackend{name: "fake", content: testContent(1000)}
	d := NewDispatcher(b, newPool(t), ratelimit.NewThrottle(1e6, 100))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := int64(i * 50)
			resp := dispatchAndWait(t, d, context.Background(), &Request{Locator: "x://y", Start: start, End: start + 49})
			assert.NoError(t, resp.Err)
			assert.Equal(t, b.content[start:start+50], resp.Body)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), b.calls.Load())
}

func TestDispatcherDescribe(t *testing.T) {
	b := &fakeBackend{name: "fake", content: testContent(42)}
	d := NewDispatcher(b, newPool(t), nil)

	info, err := d.Describe(context.Background(), "x://y", nil)

	require.NoError(t, err)
	assert.Equal(t, Info{Name: "fake", Length: 42}, info)
}

func TestDispatcherDescribeError(t *testing.T) {
	b := &fakeBackend{name: "fake", err: errors.New("gone")}
	d := NewDispatcher(b, newPool(t), nil)

	_, err := d.Describe(context.Background(), "x://y", nil)

	assert.ErrorContains(t, err, "gone")
}
