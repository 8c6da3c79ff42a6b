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

// Package identity derives every deterministic, opaque identifier the
// library needs — user ids, per-backend lookup keys, per-share envelope
// keys, the 2FA lookup key, and the Ed25519 signature seed — from the
// stable identity pair (userId, email).
package identity

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/kdf"
)

const lookupDomain = "zkauth-lookup-v3-decentralized:"

// signatureSeedSalt is the fixed PBKDF2 salt for the session-signing seed.
const signatureSeedSalt = "zkAuth-v1.9-ed25519-seed"

// Identity binds a stable identity-provider user id and email, from which
// every other identifier in the system is derived.
type Identity struct {
	UserID string
	Email  string
}

// New validates and constructs an Identity. Both userId and email must be
// non-empty.
func New(userID, email string) (Identity, error) {
	if userID == "" {
		return Identity{}, zkautherrors.New(zkautherrors.InvalidInput, "userId must not be empty")
	}
	if email == "" {
		return Identity{}, zkautherrors.New(zkautherrors.InvalidInput, "email must not be empty")
	}
	return Identity{UserID: userID, Email: email}, nil
}

// NormEmail returns the lower-cased, trimmed email used in every derivation.
func (id Identity) NormEmail() string {
	return strings.ToLower(strings.TrimSpace(id.Email))
}

// derive computes hex(HMAC-SHA-256(key=userId, msg=domain:normEmail:purpose)).
func (id Identity) derive(purpose string) string {
	msg := lookupDomain + id.NormEmail() + ":" + purpose
	return hex.EncodeToString(kdf.HMACSHA256([]byte(id.UserID), []byte(msg)))
}

// UserIdentifier returns the canonical "zkauth:" prefixed user identifier.
func (id Identity) UserIdentifier() string {
	return "zkauth:" + id.derive("base")[:16]
}

// BackendLookupID returns the per-backend-tag lookup identifier (e.g. for
// "zcash", "starknet", "solana").
func (id Identity) BackendLookupID(backendTag string) string {
	return id.derive(backendTag + ":lookup")
}

// ShareKey returns the UUID-shaped opaque key used to namespace a single
// share's (index, purpose) pair — e.g. purpose "data", "iv", "tag", "proof".
func (id Identity) ShareKey(shareIndex int, purpose string) string {
	raw := kdf.HMACSHA256([]byte(id.UserID), []byte(lookupDomain+id.NormEmail()+":"+fmt.Sprintf("share:%d:%s", shareIndex, purpose)))
	return uuidFromBytes(raw)
}

// TwoFactorLookupID returns the lookup identifier used to find the
// second-factor pointer on the external commit log.
func (id Identity) TwoFactorLookupID() string {
	return "zkauth_2fa:" + id.derive("2fa:lookup")
}

// SignatureSeed derives the 32-byte, Ed25519-clamped seed that the
// SessionToken signing keypair is constructed from.
func (id Identity) SignatureSeed(secretPhrase string) [32]byte {
	derived := kdf.PBKDF2([]byte(id.UserID+secretPhrase), []byte(signatureSeedSalt), 32)
	var seed [32]byte
	copy(seed[:], derived)
	seed[0] &= 0xF8
	seed[31] = (seed[31] & 0x7F) | 0x40
	return seed
}

// uuidFromBytes formats the first 16 bytes of raw as an RFC-4122 v4-shaped
// UUID string, forcing the version and variant nibbles.
func uuidFromBytes(raw []byte) string {
	var b [16]byte
	copy(b[:], raw)
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return uuid.UUID(b).String()
}
