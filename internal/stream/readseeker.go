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

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
)

// ReadSeeker adapts a Stream to io.Reader, io.Seeker and io.ReaderAt. Like
// the Stream it wraps, it must not be used concurrently.
type ReadSeeker struct {
	ctx context.Context
	s   *Stream
}

var (
	_ io.ReadSeeker = (*ReadSeeker)(nil)
	_ io.ReaderAt   = (*ReadSeeker)(nil)
)

// NewReadSeeker returns an adapter that issues every fetch under ctx.
func NewReadSeeker(ctx context.Context, s *Stream) *ReadSeeker {
	return &ReadSeeker{ctx: ctx, s: s}
}

// Read returns io.EOF once no bytes can be read at the cursor, whether the
// end was reached or a fetch failed.
func (r *ReadSeeker) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b := r.s.ReadBlock(r.ctx, uint64(len(p)))
	if len(b) == 0 {
		return 0, io.EOF
	}
	return copy(p, b), nil
}

// Seek never fails for out-of-range targets; they are clamped into
// [0, Length].
func (r *ReadSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		r.s.Seek(offset, Start)
	case io.SeekCurrent:
		r.s.Seek(offset, Current)
	case io.SeekEnd:
		// io.SeekEnd counts forward from the end; End counts backward.
		if offset == math.MinInt64 {
			r.s.Seek(0, Start)
		} else {
			r.s.Seek(-offset, End)
		}
	default:
		return r.s.Tell(), fmt.Errorf("seek: invalid whence %d", whence)
	}
	return r.s.Tell(), nil
}

// ReadAt reads through the same cache without moving the cursor.
func (r *ReadSeeker) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("ReadAt: negative offset")
	}
	if len(p) == 0 {
		return 0, nil
	}
	n := copy(p, r.s.readAt(r.ctx, off, uint64(len(p))))
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
