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

// Package auth resolves the credential attached to every ranged request.
package auth

import (
	"context"
	"fmt"

	"cloud.google.com/go/auth/oauth2adapt"
	"github.com/drivestream/drivestream/cfg"
	"github.com/drivestream/drivestream/internal/logger"
	"golang.org/x/oauth2"
)

// GetTokenSource returns the token source described by c, or nil for
// anonymous access. In order of precedence: a static token, a token held in
// Secret Manager, a service account key file, Application Default
// Credentials.
//
// Tokens are not refreshed beyond what the underlying source does itself.
func GetTokenSource(ctx context.Context, c cfg.AuthConfig) (oauth2.TokenSource, error) {
	switch {
	case c.Anonymous:
		logger.Debugf("Using anonymous access")
		return nil, nil

	case c.Token != "":
		logger.Debugf("Using the static bearer token")
		return staticTokenSource(c.Token), nil

	case c.TokenSecret != "":
		logger.Debugf("Reading the bearer token from %s", c.TokenSecret)
		client, closeFn, err := newSecretAccessor(ctx)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := closeFn(); err != nil {
				logger.Warnf("closing Secret Manager client: %v", err)
			}
		}()
		token, err := tokenFromSecret(ctx, client, c.TokenSecret)
		if err != nil {
			return nil, err
		}
		return staticTokenSource(token), nil
	}

	method := "DefaultCredentials"
	if c.KeyFile != "" {
		method = "KeyFile"
	}
	creds, err := GetCredentials(string(c.KeyFile), c.Scopes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	logger.Debugf("Using %s credentials", method)
	return oauth2.ReuseTokenSource(nil, oauth2adapt.TokenSourceFromTokenProvider(creds.TokenProvider)), nil
}

func staticTokenSource(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}
