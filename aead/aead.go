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

// Package aead implements the canonical AES-256-GCM envelope used by every
// encrypted value in zkauth-core: master-key-wrapped shares, 2FA state, and
// application data encrypted under a session.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
)

const (
	// KeySize is the AES-256 key size in bytes.
	KeySize = 32
	// IVSize is the GCM nonce size in bytes.
	IVSize = 12
	// TagSize is the GCM authentication tag size in bytes.
	TagSize = 16
)

// Result is the canonical AEAD envelope: ciphertext, IV, and tag, each held
// as a lowercase hex string.
type Result struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	Tag        string `json:"tag"`
}

// Encrypt encrypts plaintext under key with a fresh random 12-byte IV and no
// additional data, splitting the GCM output into ciphertext and tag.
func Encrypt(key, plaintext []byte) (Result, error) {
	if len(key) != KeySize {
		return Result{}, zkautherrors.New(zkautherrors.InvalidInput, "aead key must be 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return Result{}, zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to construct AES cipher", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, TagSize)
	if err != nil {
		return Result{}, zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to construct GCM mode", err)
	}

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return Result{}, zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to sample IV", err)
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	return Result{
		Ciphertext: hex.EncodeToString(ciphertext),
		IV:         hex.EncodeToString(iv),
		Tag:        hex.EncodeToString(tag),
	}, nil
}

// Decrypt reverses Encrypt. Any tag mismatch or truncation fails with
// AuthenticationFailure.
func Decrypt(key []byte, r Result) ([]byte, error) {
	if len(key) != KeySize {
		return nil, zkautherrors.New(zkautherrors.InvalidInput, "aead key must be 32 bytes")
	}

	ciphertext, err := hex.DecodeString(r.Ciphertext)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "malformed ciphertext hex", err)
	}
	iv, err := hex.DecodeString(r.IV)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "malformed iv hex", err)
	}
	tag, err := hex.DecodeString(r.Tag)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "malformed tag hex", err)
	}
	if len(iv) != IVSize {
		return nil, zkautherrors.New(zkautherrors.AuthenticationFailure, "iv has wrong length")
	}
	if len(tag) != TagSize {
		return nil, zkautherrors.New(zkautherrors.AuthenticationFailure, "tag has wrong length")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to construct AES cipher", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, TagSize)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to construct GCM mode", err)
	}

	sealed := append(append([]byte{}, ciphertext...), tag...)
	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "AEAD tag did not verify", err)
	}
	return plaintext, nil
}
