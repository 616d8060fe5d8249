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
	"fmt"
	"sort"
	"strings"

	"golang.org/x/oauth2"
)

// Mux is a Backend that routes each locator to the backend registered for
// its scheme.
type Mux struct {
	backends map[string]Backend
}

func NewMux() *Mux {
	return &Mux{backends: make(map[string]Backend)}
}

// Handle registers b for locators with the given scheme.
func (m *Mux) Handle(scheme string, b Backend) {
	m.backends[strings.ToLower(scheme)] = b
}

// Schemes lists the registered schemes in sorted order.
func (m *Mux) Schemes() []string {
	out := make([]string, 0, len(m.backends))
	for s := range m.backends {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (m *Mux) route(locator string) (Backend, error) {
	scheme, err := Scheme(locator)
	if err != nil {
		return nil, err
	}
	b, ok := m.backends[scheme]
	if !ok {
		return nil, fmt.Errorf("no transport for scheme %q (supported: %s)", scheme, strings.Join(m.Schemes(), ", "))
	}
	return b, nil
}

func (m *Mux) Name() string {
	return "mux"
}

func (m *Mux) Fetch(ctx context.Context, r *Request) *Response {
	b, err := m.route(r.Locator)
	if err != nil {
		return &Response{Transport: m.Name(), Err: err}
	}
	return b.Fetch(ctx, r)
}

func (m *Mux) Describe(ctx context.Context, locator string, cred oauth2.TokenSource) (Info, error) {
	b, err := m.route(locator)
	if err != nil {
		return Info{}, err
	}
	return b.Describe(ctx, locator, cred)
}
