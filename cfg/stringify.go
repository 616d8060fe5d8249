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
	"fmt"

	"gopkg.in/yaml.v3"
)

// Stringify renders the config as YAML, the same shape accepted by
// --config-file. The static token is masked.
func Stringify(c *Config) (string, error) {
	masked := *c
	if masked.Auth.Token != "" {
		masked.Auth.Token = "<redacted>"
	}
	out, err := yaml.Marshal(&masked)
	if err != nil {
		return "", fmt.Errorf("error in Stringify: %w", err)
	}
	return string(out), nil
}
