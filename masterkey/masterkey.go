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

// Package masterkey implements the per-user 256-bit master key: generation,
// hex round-tripping, hashing, and the AEAD helpers keyed either directly by
// the raw key or by a key derived from a share-wrapping public value.
package masterkey

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"github.com/zkauth/zkauth-core/aead"
	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/field"
	"github.com/zkauth/zkauth-core/kdf"
)

// Size is the master key length in bytes (256 bits).
const Size = 32

// wrapPrefix namespaces the wrapping-key derivation so it can never collide
// with another HMAC domain in the library.
const wrapPrefix = "zkauth-wrap-v1:"

// userIDPrefix namespaces user ids derived from a public key.
const userIDPrefix = "zkauth:"

// MasterKey is the 256-bit user secret, held in both raw and hex form.
type MasterKey struct {
	Raw       []byte
	Key       string // lowercase hex of Raw
	CreatedAt time.Time
}

// Generate creates a fresh random 32-byte master key. The value is
// rejection-sampled below the BN254 scalar field order, so that secret
// sharing over that field reconstructs it exactly.
func Generate() (MasterKey, error) {
	raw := make([]byte, Size)
	modulus := field.Modulus()
	for {
		if _, err := rand.Read(raw); err != nil {
			return MasterKey{}, zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to sample master key", err)
		}
		if new(big.Int).SetBytes(raw).Cmp(modulus) < 0 {
			break
		}
	}
	return MasterKey{
		Raw:       raw,
		Key:       hex.EncodeToString(raw),
		CreatedAt: time.Now(),
	}, nil
}

// FromHex reconstructs a MasterKey from its hex encoding. Fails with
// InvalidInput unless the decoded value is exactly Size bytes.
func FromHex(h string) (MasterKey, error) {
	raw, err := hex.DecodeString(h)
	if err != nil {
		return MasterKey{}, zkautherrors.Wrap(zkautherrors.InvalidInput, "master key is not valid hex", err)
	}
	if len(raw) != Size {
		return MasterKey{}, zkautherrors.New(zkautherrors.InvalidInput, "master key must decode to 32 bytes")
	}
	return MasterKey{
		Raw:       raw,
		Key:       strings.ToLower(h),
		CreatedAt: time.Now(),
	}, nil
}

// Hash returns sha256(mk.Raw) as lowercase hex.
func Hash(mk MasterKey) string {
	return hex.EncodeToString(kdf.SHA256(mk.Raw))
}

// DeriveAeadKey derives the 32-byte AEAD key used to encrypt an individual
// share envelope from a hex-encoded public value.
func DeriveAeadKey(pkHex string) ([]byte, error) {
	pk, err := hex.DecodeString(pkHex)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.InvalidInput, "public value is not valid hex", err)
	}
	return kdf.SHA256(pk), nil
}

// EncryptWithPK encrypts plaintext under DeriveAeadKey(pkHex).
func EncryptWithPK(pkHex string, plaintext []byte) (aead.Result, error) {
	key, err := DeriveAeadKey(pkHex)
	if err != nil {
		return aead.Result{}, err
	}
	return aead.Encrypt(key, plaintext)
}

// DecryptWithPK decrypts an envelope produced by EncryptWithPK.
func DecryptWithPK(pkHex string, r aead.Result) ([]byte, error) {
	key, err := DeriveAeadKey(pkHex)
	if err != nil {
		return nil, err
	}
	return aead.Decrypt(key, r)
}

// EncryptData encrypts plaintext directly under mk.Raw.
func EncryptData(mk MasterKey, plaintext []byte) (aead.Result, error) {
	return aead.Encrypt(mk.Raw, plaintext)
}

// DecryptData decrypts an envelope produced by EncryptData.
func DecryptData(mk MasterKey, r aead.Result) ([]byte, error) {
	return aead.Decrypt(mk.Raw, r)
}

// DeriveWrappingKey derives the symmetric key used to encrypt shares in
// credential-only login mode, from stable identity rather than a
// user-supplied secret.
func DeriveWrappingKey(userID, email string) []byte {
	normEmail := strings.ToLower(strings.TrimSpace(email))
	return kdf.SHA256([]byte(wrapPrefix + userID + ":" + normEmail))
}

// GenerateUserID derives a stable, opaque user id from a hex-encoded public
// value.
func GenerateUserID(pkHex string) (string, error) {
	pk, err := hex.DecodeString(pkHex)
	if err != nil {
		return "", zkautherrors.Wrap(zkautherrors.InvalidInput, "public value is not valid hex", err)
	}
	digest := hex.EncodeToString(kdf.SHA256(pk))
	return userIDPrefix + digest[:16], nil
}
