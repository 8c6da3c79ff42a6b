// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package auth0 is a reference identity-provider adapter: it extracts the
// (userId, email) pair identity.New consumes from a verified Auth0 ID
// token. The identity provider itself — token issuance, JWKS hosting,
// login UI — is out of scope; this package only illustrates the
// collaborator boundary described for Identity's inputs.
package auth0

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
)

// Config configures token validation. KeyFunc resolves the signing key for
// a parsed token, e.g. from a cached JWKS fetch — left to the caller since
// JWKS retrieval is an out-of-scope HTTP concern.
type Config struct {
	Issuer   string
	Audience string
	KeyFunc  jwt.Keyfunc
	Leeway   time.Duration
}

// ExtractIdentity verifies idToken and returns the (userId, email) pair
// used to build an identity.Identity. userId is the token's "sub" claim;
// email comes from the "email" claim.
func ExtractIdentity(_ context.Context, cfg Config, idToken string) (userID, email string, err error) {
	if cfg.Leeway == 0 {
		cfg.Leeway = 60 * time.Second
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, cfg.KeyFunc,
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithValidMethods([]string{"RS256", "PS256"}),
	)
	if err != nil {
		return "", "", zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "id token verification failed", err)
	}
	if !token.Valid {
		return "", "", zkautherrors.New(zkautherrors.AuthenticationFailure, "id token is not valid")
	}

	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return "", "", zkautherrors.New(zkautherrors.AuthenticationFailure, "id token missing sub claim")
	}

	emailClaim, _ := claims["email"].(string)
	if strings.TrimSpace(emailClaim) == "" {
		return "", "", zkautherrors.New(zkautherrors.AuthenticationFailure, "id token missing email claim")
	}

	return sub, emailClaim, nil
}
