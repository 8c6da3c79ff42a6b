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

// Package kdf collects the hash and key-derivation primitives zkauth-core
// builds on: SHA-256, HMAC-SHA-256, PBKDF2, and HKDF-SHA-256.
package kdf

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
)

// Pbkdf2Iterations is the fixed PBKDF2 iteration count used throughout the
// library (currently only for the Ed25519 signature seed).
const Pbkdf2Iterations = 100_000

// SHA256 returns the 32-byte SHA-256 digest of data.
func SHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// HMACSHA256 returns the 32-byte HMAC-SHA-256 of msg under key.
func HMACSHA256(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// PBKDF2 derives a keyLen-byte key from password and salt using
// PBKDF2-HMAC-SHA-256 with the fixed Pbkdf2Iterations count.
func PBKDF2(password, salt []byte, keyLen int) []byte {
	return pbkdf2.Key(password, salt, Pbkdf2Iterations, keyLen, sha256.New)
}

// HKDF derives outLen bytes from ikm via HKDF-SHA-256 with the given salt
// and info.
func HKDF(ikm, salt, info []byte, outLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, ikm, salt, info)
	out := make([]byte, outLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.InvalidInput, "HKDF expansion failed", err)
	}
	return out, nil
}
