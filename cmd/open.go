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


package cmd

import (
	"context"
	"fmt"
	"path"

	"github.com/drivestream/drivestream/internal/cache/data"
	"github.com/drivestream/drivestream/internal/fetch"
	"github.com/drivestream/drivestream/internal/logger"
	"github.com/drivestream/drivestream/internal/stream"
	"github.com/spf13/pflag"
)

// resourceFlags override what would otherwise be resolved by the transport.
type resourceFlags struct {
	name   string
	length int64
}

func (f *resourceFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "resource-name", "", "Display name of the resource. Resolved by the transport when empty.")
	fs.Int64Var(&f.length, "resource-length", -1, "Total length of the resource in bytes. Resolved by the transport when negative.")
}

func (f *resourceFlags) isSet() bool {
	return f.name != "" || f.length >= 0
}

// describe builds the descriptor for locator, asking the transport only for
// what the flags leave open.
func describe(ctx context.Context, env *Environment, locator string, rf resourceFlags) (stream.Descriptor, error) {
	desc := stream.Descriptor{
		Locator:    locator,
		Name:       rf.name,
		Length:     rf.length,
		Credential: env.Credential,
	}
	if desc.Length < 0 {
		info, err := env.Describer.Describe(ctx, locator, env.Credential)
		if err != nil {
			return desc, fmt.Errorf("describe %s: %w", locator, err)
		}
		desc.Length = info.Length
		if desc.Name == "" {
			desc.Name = info.Name
		}
	}
	if desc.Name == "" {
		desc.Name = path.Base(locator)
	}
	return desc, nil
}

// openStream describes locator and opens a stream over it.
func openStream(ctx context.Context, env *Environment, locator string, rf resourceFlags) (*stream.Stream, error) {
	desc, err := describe(ctx, env, locator, rf)
	if err != nil {
		return nil, err
	}

	c := env.Config
	var fetcher fetch.RangeFetcher = fetch.NewFetcher(env.Transport, locator, env.Credential, env.Metrics, c.Fetch.Timeout)
	fetcher = fetch.NewRetrying(fetcher, c.Fetch)

	s, err := stream.New(desc, fetcher, stream.Options{
		Tracker: data.TrackerKind(c.Cache.CoverageTracker),
		Logger:  logger.NewLogger("stream: "),
		Metrics: env.Metrics,
	})
	if err != nil {
		return nil, err
	}
	logger.Debugf("opened stream %s for %s", s.ID(), desc)
	return s, nil
}

func logStats(s *stream.Stream) {
	st := s.Stats()
	logger.Debugf("stream %s: reads=%d hits=%d fetches=%d failed=%d cached=%d",
		s.ID(), st.Reads, st.CacheHits, st.Fetches, st.FailedFetches, st.CachedBytes)
}
