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

package twofactor

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zkauth/zkauth-core/aead"
	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/kdf"
)

// TwoFAState is the cleartext second-factor record, JSON-encoded before
// encryption.
type TwoFAState struct {
	TOTPSecret      string   `json:"totpSecret,omitempty"`
	TOTPEnabled     bool     `json:"totpEnabled"`
	TOTPBackupCodes []string `json:"totpBackupCodes,omitempty"`
	TOTPEnabledAt   int64    `json:"totpEnabledAt,omitempty"`
	EmailOTPEnabled bool     `json:"emailOtpEnabled,omitempty"`
	EmailOTPEnabledAt int64  `json:"emailOtpEnabledAt,omitempty"`
	SecurityEmail   string   `json:"securityEmail,omitempty"`
}

// envelopeKey derives the AEAD key for encryptWithMasterKey: the first 32
// bytes of the decoded master-key hex, or sha256 of it when the decoded
// value isn't exactly 32 bytes.
func envelopeKey(masterKeyHex string) ([]byte, error) {
	raw, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.InvalidInput, "malformed master key hex", err)
	}
	if len(raw) == 32 {
		return raw, nil
	}
	return kdf.SHA256(raw), nil
}

// EncryptWithMasterKey encrypts a TwoFAState (or any JSON-serializable
// value) under the key derived from masterKeyHex.
func EncryptWithMasterKey(state TwoFAState, masterKeyHex string) (aead.Result, error) {
	key, err := envelopeKey(masterKeyHex)
	if err != nil {
		return aead.Result{}, err
	}

	plaintext, err := json.Marshal(state)
	if err != nil {
		return aead.Result{}, zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to marshal two-factor state", err)
	}

	return aead.Encrypt(key, plaintext)
}

// toAeadResult assembles an aead.Result from its three hex-encoded fields,
// for callers parsing an envelope out of a loosely-typed record.
func toAeadResult(ciphertext, iv, tag string) aead.Result {
	return aead.Result{Ciphertext: ciphertext, IV: iv, Tag: tag}
}

// DecryptWithMasterKey inverts EncryptWithMasterKey.
func DecryptWithMasterKey(r aead.Result, masterKeyHex string) (TwoFAState, error) {
	key, err := envelopeKey(masterKeyHex)
	if err != nil {
		return TwoFAState{}, err
	}

	plaintext, err := aead.Decrypt(key, r)
	if err != nil {
		return TwoFAState{}, err
	}

	var state TwoFAState
	if err := json.Unmarshal(plaintext, &state); err != nil {
		return TwoFAState{}, zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "decrypted two-factor state is not valid JSON", err)
	}
	return state, nil
}
