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

// Package sessiontoken issues and verifies short-lived, Ed25519-signed
// session tokens that carry their own expiry and need no server-side
// state to verify.
package sessiontoken

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"time"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/internal/metrics"
)

// DefaultTTL is the token lifetime used when Create is called with ttl=0.
const DefaultTTL = 30 * 24 * time.Hour

// Payload is the signed content of a SessionToken.
type Payload struct {
	ZkID         string `json:"zkId"`
	Email        string `json:"email"`
	GoogleUserID string `json:"googleUserId,omitempty"`
	Iat          int64  `json:"iat"`
	Exp          int64  `json:"exp"`
}

// Token is the wire shape of a session token.
type Token struct {
	Payload   Payload `json:"payload"`
	Signature string  `json:"signature"`
	PublicKey string  `json:"publicKey"`
}

// KeyPair derives an Ed25519 keypair from a 32-byte, already-clamped
// signature seed (identity.SignatureSeed).
func KeyPair(seed []byte) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, nil, zkautherrors.New(zkautherrors.InvalidInput, "signature seed must be 32 bytes")
	}
	sk := ed25519.NewKeyFromSeed(seed)
	return sk, sk.Public().(ed25519.PublicKey), nil
}

// Create signs a new token over payloadBase with the given private key.
// Iat is set to now; Exp is now+ttl (ttl defaults to DefaultTTL when 0).
func Create(payloadBase Payload, sk ed25519.PrivateKey, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTTL
	}

	now := time.Now().Unix()
	payload := payloadBase
	payload.Iat = now
	payload.Exp = now + int64(ttl.Seconds())

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to marshal session token payload", err)
	}

	sig := ed25519.Sign(sk, payloadBytes)
	pub := sk.Public().(ed25519.PublicKey)

	token := Token{
		Payload:   payload,
		Signature: hex.EncodeToString(sig),
		PublicKey: hex.EncodeToString(pub),
	}

	tokenBytes, err := json.Marshal(token)
	if err != nil {
		return "", zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to marshal session token", err)
	}

	metrics.SessionTokensIssuedTotal.Inc()
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// Verify parses encoded, checks expiry, and verifies the Ed25519 signature
// over the payload. Returns the payload on success.
func Verify(encoded string) (Payload, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		metrics.SessionTokensVerifiedTotal.WithLabelValues("invalid").Inc()
		return Payload{}, zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "malformed session token encoding", err)
	}

	var token Token
	if err := json.Unmarshal(raw, &token); err != nil {
		metrics.SessionTokensVerifiedTotal.WithLabelValues("invalid").Inc()
		return Payload{}, zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "malformed session token JSON", err)
	}

	if token.Payload.Exp < time.Now().Unix() {
		metrics.SessionTokensVerifiedTotal.WithLabelValues("expired").Inc()
		return Payload{}, zkautherrors.New(zkautherrors.SessionExpired, "session token has expired")
	}

	payloadBytes, err := json.Marshal(token.Payload)
	if err != nil {
		metrics.SessionTokensVerifiedTotal.WithLabelValues("invalid").Inc()
		return Payload{}, zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "failed to re-marshal payload", err)
	}

	sig, err := hex.DecodeString(token.Signature)
	if err != nil {
		metrics.SessionTokensVerifiedTotal.WithLabelValues("invalid").Inc()
		return Payload{}, zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "malformed signature hex", err)
	}

	pub, err := hex.DecodeString(token.PublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		metrics.SessionTokensVerifiedTotal.WithLabelValues("invalid").Inc()
		return Payload{}, zkautherrors.New(zkautherrors.AuthenticationFailure, "malformed public key hex")
	}

	if !ed25519.Verify(pub, payloadBytes, sig) {
		metrics.SessionTokensVerifiedTotal.WithLabelValues("invalid").Inc()
		return Payload{}, zkautherrors.New(zkautherrors.AuthenticationFailure, "session token signature is invalid")
	}

	metrics.SessionTokensVerifiedTotal.WithLabelValues("valid").Inc()
	return token.Payload, nil
}
