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
	"io"
)

// ThrottledReader meters the bytes read from r against throttle. Each Read is
// capped at the throttle's capacity. Only the bytes r actually returned are
// charged, before Read returns.
func ThrottledReader(ctx context.Context, r io.Reader, throttle Throttle) io.Reader {
	return &meteredReader{ctx: ctx, r: r, throttle: throttle}
}

type meteredReader struct {
	ctx      context.Context
	r        io.Reader
	throttle Throttle
}

func (m *meteredReader) Read(p []byte) (int, error) {
	if c := m.throttle.Capacity(); uint64(len(p)) > c {
		p = p[:c]
	}

	n, err := m.r.Read(p)
	if n == 0 {
		return 0, err
	}
	if werr := m.throttle.Wait(m.ctx, uint64(n)); werr != nil {
		return n, werr
	}
	return n, err
}
