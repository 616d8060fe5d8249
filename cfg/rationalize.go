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

package cfg

import (
	"math"
	"net/url"
	"strings"
)

func decodeURL(u string) (string, error) {
	if u == "" {
		return "", nil
	}
	decodedURL, err := url.Parse(u)
	if err != nil {
		return "", err
	}
	return decodedURL.String(), nil
}

// resolveBurst sizes the token bucket to at least one second worth of
// requests when a rate is configured without an explicit burst.
func resolveBurst(t *TransportConfig) {
	if !IsRateLimited(t) || t.Burst > 0 {
		return
	}
	t.Burst = int64(math.Max(1, math.Ceil(t.RequestsPerSecond)))
}

func resolveFetchConfig(f *FetchConfig) {
	if f.MaxRetryAttempts == 0 {
		f.MaxRetryAttempts = 1
	}
	if f.RetryMaxBackoff == 0 {
		f.RetryMaxBackoff = f.RetryInitialBackoff
	}
	if f.RetryMultiplier == 0 {
		f.RetryMultiplier = 1
	}
}

// Rationalize updates the config fields based on the values of other fields.
func Rationalize(c *Config) error {
	var err error
	if c.Transport.GcsEndpoint, err = decodeURL(c.Transport.GcsEndpoint); err != nil {
		return err
	}
	if c.Transport.DriveEndpoint, err = decodeURL(c.Transport.DriveEndpoint); err != nil {
		return err
	}
	if c.Transport.S3.Endpoint, err = decodeURL(c.Transport.S3.Endpoint); err != nil {
		return err
	}

	if c.Logging.Severity == "" {
		c.Logging.Severity = InfoLogSeverity
	}
	if c.Debug.TraceFetches {
		c.Logging.Severity = TraceLogSeverity
	}
	c.Logging.Format = strings.ToLower(c.Logging.Format)

	c.Cache.CoverageTracker = strings.ToLower(c.Cache.CoverageTracker)
	if c.Cache.CoverageTracker == "" {
		c.Cache.CoverageTracker = DefaultCoverageTracker
	}

	if len(c.Auth.Scopes) == 0 {
		c.Auth.Scopes = DefaultScopes()
	}

	resolveBurst(&c.Transport)
	resolveFetchConfig(&c.Fetch)

	return nil
}
