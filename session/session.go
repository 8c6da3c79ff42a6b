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

// Package session implements the object AuthCore.CreateSession returns: an
// expiring handle to the reconstructed master key that can encrypt and
// decrypt application data under it.
package session

import (
	"time"

	"github.com/zkauth/zkauth-core/aead"
	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/masterkey"
)

// DefaultTTL is the session lifetime used when the caller does not specify
// one (24 hours, in milliseconds).
const DefaultTTL int64 = 86_400_000

// Session carries the reconstructed master key for a bounded lifetime and
// exposes AEAD helpers that refuse to run once expired.
type Session struct {
	UserID    string
	masterKey masterkey.MasterKey
	ExpiresAt time.Time
}

// New constructs a Session that expires ttlMs milliseconds from now. A
// ttlMs of 0 uses DefaultTTL.
func New(userID string, mk masterkey.MasterKey, ttlMs int64) Session {
	if ttlMs == 0 {
		ttlMs = DefaultTTL
	}
	return Session{
		UserID:    userID,
		masterKey: mk,
		ExpiresAt: time.Now().Add(time.Duration(ttlMs) * time.Millisecond),
	}
}

// expired reports whether the session has passed its expiry.
func (s Session) expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Encrypt encrypts plaintext under the session's master key. Fails with
// SessionExpired once the session has passed ExpiresAt.
func (s Session) Encrypt(plaintext []byte) (aead.Result, error) {
	if s.expired() {
		return aead.Result{}, zkautherrors.New(zkautherrors.SessionExpired, "session has expired")
	}
	return masterkey.EncryptData(s.masterKey, plaintext)
}

// Decrypt decrypts an envelope produced by Encrypt. Fails with
// SessionExpired once the session has passed ExpiresAt.
func (s Session) Decrypt(r aead.Result) ([]byte, error) {
	if s.expired() {
		return nil, zkautherrors.New(zkautherrors.SessionExpired, "session has expired")
	}
	return masterkey.DecryptData(s.masterKey, r)
}

// MasterKey returns the session's reconstructed master key. Callers that
// need to derive 2FA or signature material from it should prefer going
// through this accessor rather than holding their own copy.
func (s Session) MasterKey() masterkey.MasterKey {
	return s.masterKey
}
