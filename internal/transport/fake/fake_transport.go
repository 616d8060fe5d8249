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

// Package fake provides an in-memory Transport for tests.
package fake

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/drivestream/drivestream/internal/transport"
	"golang.org/x/oauth2"
)

type failure struct {
	start, end int64
	status     int
}

// Transport serves ranges of an in-memory resource. Completions are delivered
// from a separate goroutine, as a real transport would.
type Transport struct {
	content []byte

	mu       sync.Mutex
	requests []transport.Request
	failures []failure
	// extra bytes appended to every successful body.
	extra int
	hang  bool
}

func NewTransport(content []byte) *Transport {
	return &Transport{content: content}
}

// FailRange makes every request overlapping [start, end] fail with status.
func (t *Transport) FailRange(start, end int64, status int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = append(t.failures, failure{start, end, status})
}

// Heal removes all injected failures.
func (t *Transport) Heal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = nil
}

// Overfetch appends n junk bytes to every successful body.
func (t *Transport) Overfetch(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.extra = n
}

// Hang makes the transport never complete requests.
func (t *Transport) Hang() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hang = true
}

// Requests returns a copy of every request dispatched so far.
func (t *Transport) Requests() []transport.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]transport.Request(nil), t.requests...)
}

func (t *Transport) RequestCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

func (t *Transport) Dispatch(_ context.Context, req *transport.Request, done func(*transport.Response)) {
	t.mu.Lock()
	t.requests = append(t.requests, *req)
	hang := t.hang
	resp := t.respond(req)
	t.mu.Unlock()

	if hang {
		return
	}
	go done(resp)
}

// LOCKS_REQUIRED(t.mu)
func (t *Transport) respond(req *transport.Request) *transport.Response {
	for _, f := range t.failures {
		if req.Start <= f.end && f.start <= req.End {
			return &transport.Response{
				Transport: "fake",
				Status:    f.status,
				Err:       fmt.Errorf("injected failure for [%d, %d]", f.start, f.end),
			}
		}
	}

	length := int64(len(t.content))
	if req.Start >= length {
		return &transport.Response{Transport: "fake", Status: http.StatusRequestedRangeNotSatisfiable}
	}
	end := min(req.End+1, length)
	body := append([]byte(nil), t.content[req.Start:end]...)
	for i := 0; i < t.extra; i++ {
		body = append(body, 0xEE)
	}
	return &transport.Response{Transport: "fake", Status: http.StatusPartialContent, Body: body}
}

func (t *Transport) Describe(_ context.Context, locator string, _ oauth2.TokenSource) (transport.Info, error) {
	if locator == "" {
		return transport.Info{}, errors.New("empty locator")
	}
	return transport.Info{Name: "fake", Length: int64(len(t.content))}, nil
}
