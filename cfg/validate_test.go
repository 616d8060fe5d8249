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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	c := &Config{
		Cache: CacheConfig{CoverageTracker: DefaultCoverageTracker},
		Fetch: FetchConfig{
			MaxRetryAttempts:    1,
			RetryInitialBackoff: time.Millisecond,
			RetryMaxBackoff:     time.Second,
			RetryMultiplier:     2,
		},
		Logging: LoggingConfig{
			Format: "text",
			LogRotate: LogRotateLoggingConfig{
				BackupFileCount: 0,
				Compress:        false,
				MaxFileSizeMb:   1,
			},
		},
		Transport: TransportConfig{
			Workers:    1,
			QueueDepth: 1,
		},
	}
	return c
}

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "Valid config",
			mutate: func(*Config) {},
		},
		{
			name: "Valid endpoints",
			mutate: func(c *Config) {
				c.Transport.GcsEndpoint = "http://localhost:4443/storage/v1/"
				c.Transport.DriveEndpoint = "https://www.googleapis.com/drive/v3/"
				c.Transport.S3.Endpoint = "http://127.0.0.1:9000"
			},
		},
		{
			name: "Unknown coverage tracker",
			mutate: func(c *Config) {
				c.Cache.CoverageTracker = "tree"
			},
			wantErr: "Config.Cache.CoverageTracker: validation failed on 'oneof' tag",
		},
		{
			name: "Unknown log format",
			mutate: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantErr: "Config.Logging.Format: validation failed on 'oneof' tag",
		},
		{
			name: "Zero workers",
			mutate: func(c *Config) {
				c.Transport.Workers = 0
			},
			wantErr: "Config.Transport.Workers: validation failed on 'gte' tag",
		},
		{
			name: "Prometheus port out of range",
			mutate: func(c *Config) {
				c.Metrics.PrometheusPort = 70000
			},
			wantErr: "Config.Metrics.PrometheusPort: validation failed on 'lte' tag",
		},
		{
			name: "Zero max-file-size-mb",
			mutate: func(c *Config) {
				c.Logging.LogRotate.MaxFileSizeMb = 0
			},
			wantErr: "max-file-size-mb should be atleast 1",
		},
		{
			name: "Negative backup-file-count",
			mutate: func(c *Config) {
				c.Logging.LogRotate.BackupFileCount = -1
			},
			wantErr: "backup-file-count should be 0",
		},
		{
			name: "Endpoint without scheme",
			mutate: func(c *Config) {
				c.Transport.GcsEndpoint = "a_b://abc"
			},
			wantErr: "error parsing gcs-endpoint config",
		},
		{
			name: "Endpoint without host",
			mutate: func(c *Config) {
				c.Transport.DriveEndpoint = "https://"
			},
			wantErr: "error parsing drive-endpoint config",
		},
		{
			name: "Max backoff below initial backoff",
			mutate: func(c *Config) {
				c.Fetch.RetryMaxBackoff = time.Microsecond
			},
			wantErr: "retry-max-backoff",
		},
		{
			name: "Anonymous with token",
			mutate: func(c *Config) {
				c.Auth.Anonymous = true
				c.Auth.Token = "t"
			},
			wantErr: "anonymous-access can't be combined",
		},
		{
			name: "Token and token-secret",
			mutate: func(c *Config) {
				c.Auth.Token = "t"
				c.Auth.TokenSecret = "projects/p/secrets/s/versions/1"
			},
			wantErr: "only one of token and token-secret",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)

			err := ValidateConfig(c)

			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}
