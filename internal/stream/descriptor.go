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
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Descriptor is the immutable identity of a remote resource. It is resolved
// once, before the stream opens.
type Descriptor struct {
	// Locator addresses the resource, e.g. https://host/a.mp3 or gdrive://<id>.
	Locator string
	// Name is a display name for consumers that need a textual identity.
	Name string
	// Length is the total size of the resource in bytes.
	Length int64
	// Credential authorizes every request. Nil means anonymous.
	Credential oauth2.TokenSource
}

func (d Descriptor) Validate() error {
	if d.Locator == "" {
		return errors.New("descriptor: empty locator")
	}
	if d.Length < 0 {
		return fmt.Errorf("descriptor: negative length %d for %s", d.Length, d.Locator)
	}
	return nil
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", d.Name, d.Locator, d.Length)
}
