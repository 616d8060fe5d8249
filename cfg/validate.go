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
	"errors"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func isValidLogRotateConfig(config *LogRotateLoggingConfig) error {
	if config.MaxFileSizeMb <= 0 {
		return fmt.Errorf("max-file-size-mb should be atleast 1")
	}
	if config.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

// isValidEndpoint accepts an empty endpoint or an absolute http(s) URL.
func isValidEndpoint(u string) error {
	if u == "" {
		return nil
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("endpoint %q must use http or https", u)
	}
	if parsed.Host == "" {
		return fmt.Errorf("endpoint %q has no host", u)
	}
	return nil
}

func isValidFetchConfig(c *FetchConfig) error {
	if c.RetryMaxBackoff < c.RetryInitialBackoff {
		return fmt.Errorf("retry-max-backoff (%v) can't be less than retry-initial-backoff (%v)", c.RetryMaxBackoff, c.RetryInitialBackoff)
	}
	return nil
}

func isValidAuthConfig(c *AuthConfig) error {
	if c.Anonymous && (c.Token != "" || c.TokenSecret != "" || c.KeyFile != "") {
		return errors.New("anonymous-access can't be combined with token, token-secret or key-file")
	}
	if c.Token != "" && c.TokenSecret != "" {
		return errors.New("only one of token and token-secret may be set")
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(config *Config) error {
	var err error

	if err = validate.Struct(config); err != nil {
		return formatValidationError(err)
	}

	if err = isValidLogRotateConfig(&config.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}

	if err = isValidEndpoint(config.Transport.GcsEndpoint); err != nil {
		return fmt.Errorf("error parsing gcs-endpoint config: %w", err)
	}

	if err = isValidEndpoint(config.Transport.DriveEndpoint); err != nil {
		return fmt.Errorf("error parsing drive-endpoint config: %w", err)
	}

	if err = isValidEndpoint(config.Transport.S3.Endpoint); err != nil {
		return fmt.Errorf("error parsing s3 endpoint config: %w", err)
	}

	if err = isValidFetchConfig(&config.Fetch); err != nil {
		return fmt.Errorf("error parsing fetch config: %w", err)
	}

	if err = isValidAuthConfig(&config.Auth); err != nil {
		return fmt.Errorf("error parsing auth config: %w", err)
	}

	return nil
}
