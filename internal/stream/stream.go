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

// Package stream presents a remote resource as a seekable, block-read byte
// stream. Bytes are fetched on demand, one ranged request per uncached read,
// and kept for the lifetime of the stream.
package stream

import (
	"context"
	"log/slog"
	"math"

	"github.com/drivestream/drivestream/common"
	"github.com/drivestream/drivestream/internal/cache/data"
	"github.com/drivestream/drivestream/internal/fetch"
	"github.com/drivestream/drivestream/internal/logger"
	"github.com/google/uuid"
)

// Origin is the reference point of a Seek.
type Origin int

const (
	Start Origin = iota
	Current
	End
)

func (o Origin) String() string {
	switch o {
	case Start:
		return "Start"
	case Current:
		return "Current"
	case End:
		return "End"
	}
	return "Origin(?)"
}

// Stats are counters accumulated over the life of a stream.
type Stats struct {
	Reads         int64
	CacheHits     int64
	Fetches       int64
	FailedFetches int64
	CachedBytes   int64
}

// Options customise a Stream. The zero value is usable.
type Options struct {
	// Tracker selects the coverage tracker backing the cache.
	Tracker data.TrackerKind
	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
	// Metrics records reads. Nil records nothing.
	Metrics common.StreamMetricHandle
}

// Stream is a read-only cursor over a remote resource.
//
// A Stream is not safe for concurrent use: reads and seeks must be issued
// sequentially. Independent streams share nothing but the transport.
type Stream struct {
	id      string
	desc    Descriptor
	fetcher fetch.RangeFetcher
	logger  *slog.Logger
	metrics common.StreamMetricHandle

	/////////////////////////
	// Mutable state
	/////////////////////////

	cache *data.ByteRangeCache

	// INVARIANT: 0 <= position && position <= desc.Length
	position int64

	stats Stats
}

// New opens a stream over desc. fetcher is borrowed and must outlive the
// stream.
func New(desc Descriptor, fetcher fetch.RangeFetcher, opts Options) (*Stream, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if opts.Tracker == "" {
		opts.Tracker = data.BitmapTrackerKind
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = common.NewNoopMetrics()
	}

	id := uuid.NewString()
	return &Stream{
		id:      id,
		desc:    desc,
		fetcher: fetcher,
		logger:  opts.Logger.With("stream", id, "locator", desc.Locator),
		metrics: opts.Metrics,
		cache:   data.NewByteRangeCache(desc.Length, opts.Tracker),
	}, nil
}

// ID uniquely identifies the stream in logs.
func (s *Stream) ID() string {
	return s.id
}

func (s *Stream) Name() string {
	return s.desc.Name
}

func (s *Stream) Descriptor() Descriptor {
	return s.desc
}

// IsOpen is always true: a stream is open from construction onwards.
func (s *Stream) IsOpen() bool {
	return true
}

func (s *Stream) IsReadOnly() bool {
	return true
}

func (s *Stream) Length() int64 {
	return s.desc.Length
}

func (s *Stream) Tell() int64 {
	return s.position
}

// Clear rewinds to offset 0. Cached bytes are kept.
func (s *Stream) Clear() {
	s.position = 0
}

func (s *Stream) Stats() Stats {
	st := s.stats
	st.CachedBytes = s.cache.CachedBytes()
	return st
}

// ReadBlock reads up to n bytes at the cursor and advances it by the number of
// bytes returned. Fewer bytes than requested come back at the end of the
// resource or when the fetch fails; the failure is logged, never returned.
func (s *Stream) ReadBlock(ctx context.Context, n uint64) []byte {
	out := s.readAt(ctx, s.position, n)
	s.position += int64(len(out))
	return out
}

// readAt serves up to n bytes at off without moving the cursor.
func (s *Stream) readAt(ctx context.Context, off int64, n uint64) []byte {
	remaining := s.desc.Length - off
	if n == 0 || remaining <= 0 {
		return []byte{}
	}
	want := int64(min(n, uint64(remaining)))
	start, end := off, off+want-1
	s.stats.Reads++

	if s.cache.CheckCoverage(start, end) {
		s.stats.CacheHits++
		out := s.cache.Extract(start, end)
		s.record(ctx, len(out), true)
		return out
	}

	s.stats.Fetches++
	payload, err := s.fetcher.FetchRange(ctx, start, end)
	if err != nil {
		s.stats.FailedFetches++
		s.logger.Warn("Fetch failed, returning a short read", "start", start, "end", end, "error", err)
		s.record(ctx, 0, false)
		return []byte{}
	}
	if int64(len(payload)) > want {
		payload = payload[:want]
	}
	if int64(len(payload)) < want {
		s.logger.Debug("Short fetch", "start", start, "end", end, "got", len(payload))
	}

	s.cache.Fill(start, payload)
	s.record(ctx, len(payload), false)
	return payload
}

func (s *Stream) record(ctx context.Context, n int, hit bool) {
	v := common.CacheHitValue(hit)
	s.metrics.StreamReadCount(ctx, 1, v)
	s.metrics.StreamReadBytesCount(ctx, int64(n), v)
}

// Seek moves the cursor to offset (Start), position+offset (Current) or
// Length-offset (End). Out-of-range results are clamped into [0, Length]
// without error.
func (s *Stream) Seek(offset int64, origin Origin) {
	length := s.desc.Length
	switch origin {
	case Start:
		s.position = clampAdd(0, offset, length)
	case Current:
		s.position = clampAdd(s.position, offset, length)
	case End:
		if offset == math.MinInt64 {
			// Negating would overflow; anything this far past the end clamps to it.
			s.position = length
			return
		}
		s.position = clampAdd(length, -offset, length)
	default:
		s.logger.Warn("Seek with unknown origin ignored", "origin", int(origin))
	}
}

// clampAdd returns base+off clamped into [0, length] without overflowing.
//
// REQUIRES: 0 <= base && base <= length
func clampAdd(base, off, length int64) int64 {
	switch {
	case off > 0 && off > length-base:
		return length
	case off < 0 && off < -base:
		return 0
	}
	return base + off
}

////////////////////////////////////////////////////////////////////////
// Write path
////////////////////////////////////////////////////////////////////////

// The resource is read-only. These exist for consumers that expect a full
// block-stream surface; they change nothing.

func (s *Stream) WriteBlock(p []byte) {
	s.notImplemented("WriteBlock", "bytes", len(p))
}

func (s *Stream) Insert(p []byte, start int64, replace uint64) {
	s.notImplemented("Insert", "bytes", len(p), "start", start, "replace", replace)
}

func (s *Stream) RemoveBlock(start int64, length uint64) {
	s.notImplemented("RemoveBlock", "start", start, "length", length)
}

func (s *Stream) Truncate(length int64) {
	s.notImplemented("Truncate", "length", length)
}

func (s *Stream) notImplemented(op string, args ...any) {
	s.logger.Warn(op+": not implemented", args...)
}
