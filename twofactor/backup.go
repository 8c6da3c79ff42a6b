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
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/internal/metrics"
)

const (
	backupCodeCount  = 8
	backupCodeLength = 8
)

var backupAlphabet = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// GenerateBackupCodes returns backupCodeCount freshly generated codes,
// formatted for display with a hyphen after the fourth character, alongside
// the SHA-256 hashes to persist in TwoFAState.
func GenerateBackupCodes() (display []string, hashes []string, err error) {
	display = make([]string, backupCodeCount)
	hashes = make([]string, backupCodeCount)

	for i := 0; i < backupCodeCount; i++ {
		code, err := randomCode()
		if err != nil {
			return nil, nil, err
		}
		display[i] = code[:4] + "-" + code[4:]
		hashes[i] = hashBackupCode(code)
	}

	return display, hashes, nil
}

func randomCode() (string, error) {
	buf := make([]byte, backupCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to generate backup code", err)
	}

	code := make([]byte, backupCodeLength)
	for i, b := range buf {
		code[i] = backupAlphabet[int(b)%len(backupAlphabet)]
	}
	return string(code), nil
}

// normalizeBackupCode strips non-alphanumeric characters and uppercases,
// matching how a user-entered "XXXX-XXXX" string is canonicalized before
// hashing.
func normalizeBackupCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(normalizeBackupCode(code)))
	return hex.EncodeToString(sum[:])
}

// VerifyBackup reports whether code's normalized hash is present in hashes,
// using a constant-time comparison against each candidate.
func VerifyBackup(code string, hashes []string) bool {
	target := hashBackupCode(code)
	matched := false
	for _, h := range hashes {
		if subtle.ConstantTimeCompare([]byte(h), []byte(target)) == 1 {
			matched = true
		}
	}

	if matched {
		metrics.BackupCodeVerificationsTotal.WithLabelValues("success").Inc()
	} else {
		metrics.BackupCodeVerificationsTotal.WithLabelValues("failure").Inc()
	}
	return matched
}

// RemainingAfterUse returns hashes with the consumed code's hash removed,
// since backup codes are one-shot.
func RemainingAfterUse(code string, hashes []string) []string {
	target := hashBackupCode(code)
	remaining := make([]string, 0, len(hashes))
	for _, h := range hashes {
		if subtle.ConstantTimeCompare([]byte(h), []byte(target)) == 1 {
			continue
		}
		remaining = append(remaining, h)
	}
	return remaining
}
