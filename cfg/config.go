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
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	AppName string `yaml:"app-name"`

	Auth AuthConfig `yaml:"auth"`

	Cache CacheConfig `yaml:"cache"`

	Debug DebugConfig `yaml:"debug"`

	Fetch FetchConfig `yaml:"fetch"`

	Logging LoggingConfig `yaml:"logging"`

	Metrics MetricsConfig `yaml:"metrics"`

	Transport TransportConfig `yaml:"transport"`
}

type AuthConfig struct {
	Anonymous bool `yaml:"anonymous"`

	KeyFile ResolvedPath `yaml:"key-file"`

	Scopes []string `yaml:"scopes"`

	Token string `yaml:"token"`

	TokenSecret string `yaml:"token-secret"`
}

type CacheConfig struct {
	CoverageTracker string `yaml:"coverage-tracker" validate:"oneof=bitmap intervals"`
}

type DebugConfig struct {
	TraceFetches bool `yaml:"trace-fetches"`
}

type FetchConfig struct {
	MaxRetryAttempts int64 `yaml:"max-retry-attempts" validate:"gte=1"`

	RetryInitialBackoff time.Duration `yaml:"retry-initial-backoff" validate:"gte=0s"`

	RetryMaxBackoff time.Duration `yaml:"retry-max-backoff" validate:"gte=0s"`

	RetryMultiplier float64 `yaml:"retry-multiplier" validate:"gte=1"`

	Timeout time.Duration `yaml:"timeout" validate:"gte=0s"`
}

type LogRotateLoggingConfig struct {
	BackupFileCount int64 `yaml:"backup-file-count"`

	Compress bool `yaml:"compress"`

	MaxFileSizeMb int64 `yaml:"max-file-size-mb"`
}

type LoggingConfig struct {
	FilePath ResolvedPath `yaml:"file-path"`

	Format string `yaml:"format" validate:"omitempty,oneof=text json"`

	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`

	Severity LogSeverity `yaml:"severity"`
}

type MetricsConfig struct {
	PrometheusPort int64 `yaml:"prometheus-port" validate:"gte=0,lte=65535"`
}

type S3Config struct {
	Endpoint string `yaml:"endpoint"`

	Region string `yaml:"region"`

	UsePathStyle bool `yaml:"use-path-style"`
}

type TransportConfig struct {
	Burst int64 `yaml:"burst" validate:"gte=0"`

	DriveEndpoint string `yaml:"drive-endpoint"`

	EgressBandwidthLimitBytesPerSecond float64 `yaml:"egress-bandwidth-limit-bytes-per-second" validate:"gte=0"`

	GcsEndpoint string `yaml:"gcs-endpoint"`

	QueueDepth int64 `yaml:"queue-depth" validate:"gte=1"`

	RequestsPerSecond float64 `yaml:"requests-per-second" validate:"gte=0"`

	S3 S3Config `yaml:"s3"`

	UserAgent string `yaml:"user-agent"`

	Workers int64 `yaml:"workers" validate:"gte=1"`
}

type flagSpec struct {
	key   string
	flag  string
	usage string
	value any
}

var flagSpecs = []flagSpec{
	{"app-name", "app-name", "The application name reported in the user agent.", ""},
	{"auth.anonymous", "anonymous-access", "Send requests without an Authorization header.", false},
	{"auth.key-file", "key-file", "Absolute path to a service account key file. Application default credentials are used when empty.", ""},
	{"auth.scopes", "auth-scopes", "OAuth2 scopes requested for the credential.", DefaultScopes()},
	{"auth.token", "token", "A static bearer token. Takes precedence over key-file.", ""},
	{"auth.token-secret", "token-secret", "Secret Manager version resource name holding a bearer token, e.g. projects/p/secrets/s/versions/latest.", ""},
	{"cache.coverage-tracker", "coverage-tracker", "Coverage tracker backing the byte-range cache: bitmap or intervals.", DefaultCoverageTracker},
	{"debug.trace-fetches", "trace-fetches", "Print a trace span for every ranged request to stderr.", false},
	{"fetch.max-retry-attempts", "max-retry-attempts", "Attempts per ranged request. 1 disables retries.", int64(1)},
	{"fetch.retry-initial-backoff", "retry-initial-backoff", "Initial backoff between attempts of a ranged request.", 100 * time.Millisecond},
	{"fetch.retry-max-backoff", "retry-max-backoff", "Maximum backoff between attempts of a ranged request.", 5 * time.Second},
	{"fetch.retry-multiplier", "retry-multiplier", "Backoff multiplier between attempts of a ranged request.", 2.0},
	{"fetch.timeout", "fetch-timeout", "Deadline for a single ranged request. 0 means no deadline.", 30 * time.Second},
	{"logging.file-path", "log-file", "The file for storing logs. When not provided, logs are printed to stderr.", ""},
	{"logging.format", "log-format", "The format of the log file: 'text' or 'json'.", "text"},
	{"logging.log-rotate.backup-file-count", "log-rotate-backup-file-count", "The maximum number of backup log files to retain after they have been rotated. 0 retains all.", int64(10)},
	{"logging.log-rotate.compress", "log-rotate-compress", "Compress rotated log files using gzip.", true},
	{"logging.log-rotate.max-file-size-mb", "log-rotate-max-file-size-mb", "The maximum size in megabytes that a log file can reach before it is rotated.", int64(512)},
	{"logging.severity", "log-severity", "Specifies the logging severity expressed as one of [trace, debug, info, warning, error, off]", "info"},
	{"metrics.prometheus-port", "prometheus-port", "Expose Prometheus metrics endpoint on this port. 0 disables it.", int64(0)},
	{"transport.burst", "burst", "Token bucket burst for requests-per-second. Derived from the rate when 0.", int64(0)},
	{"transport.drive-endpoint", "drive-endpoint", "Alternate Google Drive API endpoint.", ""},
	{"transport.egress-bandwidth-limit-bytes-per-second", "egress-bandwidth-limit-bytes-per-second", "The bandwidth limit for reading response bodies, measured over an 8-hour window. 0 means unlimited.", 0.0},
	{"transport.gcs-endpoint", "gcs-endpoint", "Alternate Cloud Storage endpoint.", ""},
	{"transport.queue-depth", "queue-depth", "Number of dispatched requests that may wait for a worker.", int64(64)},
	{"transport.requests-per-second", "requests-per-second", "Ranged requests per second across all streams. 0 means unlimited.", 0.0},
	{"transport.s3.endpoint", "s3-endpoint", "Alternate S3 endpoint, e.g. a MinIO server.", ""},
	{"transport.s3.region", "s3-region", "AWS region used for s3:// locators.", "us-east-1"},
	{"transport.s3.use-path-style", "s3-use-path-style", "Address S3 buckets with path-style URLs.", false},
	{"transport.user-agent", "user-agent", "User agent sent with every request.", ""},
	{"transport.workers", "transport-workers", "Workers executing dispatched ranged requests.", DefaultWorkers()},
}

func BindFlags(v *viper.Viper, flagSet *pflag.FlagSet) error {
	for _, s := range flagSpecs {
		switch d := s.value.(type) {
		case string:
			flagSet.StringP(s.flag, "", d, s.usage)
		case bool:
			flagSet.BoolP(s.flag, "", d, s.usage)
		case int64:
			flagSet.Int64P(s.flag, "", d, s.usage)
		case float64:
			flagSet.Float64P(s.flag, "", d, s.usage)
		case time.Duration:
			flagSet.DurationP(s.flag, "", d, s.usage)
		case []string:
			flagSet.StringSliceP(s.flag, "", d, s.usage)
		}

		if err := v.BindPFlag(s.key, flagSet.Lookup(s.flag)); err != nil {
			return err
		}
	}
	return nil
}
