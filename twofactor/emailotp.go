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
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/zkauth/zkauth-core/kdf"
)

// EmailOTPChallenge is the signed, client-verifiable OTP challenge a server
// issues alongside the emailed code, so the client can accept it locally
// without a verification round-trip on the happy path.
type EmailOTPChallenge struct {
	Signature string
	ExpiresAt time.Time
}

// IssueEmailOTPChallenge computes the server-side signature binding the
// emailed code to this user's email, user id and master key hash. masterKeyHash must be the same
// value returned as RegisterResult.MasterKeyHash, so that the signature
// cannot be forged without having completed a real login for this user.
func IssueEmailOTPChallenge(email, userID, code, masterKeyHash string, ttl time.Duration) EmailOTPChallenge {
	normalized := normalizeOTPCode(code)
	inner := kdf.SHA256([]byte(fmt.Sprintf("%s:%s:%s", email, userID, normalized)))
	outer := kdf.SHA256([]byte(fmt.Sprintf("%x:%s", inner, masterKeyHash)))

	return EmailOTPChallenge{
		Signature: fmt.Sprintf("%x", outer),
		ExpiresAt: time.Now().Add(ttl),
	}
}

// VerifyEmailOTPChallenge recomputes the signature client-side and compares
// it in constant time against challenge.Signature, rejecting if expired.
func VerifyEmailOTPChallenge(challenge EmailOTPChallenge, email, userID, code, masterKeyHash string) bool {
	if time.Now().After(challenge.ExpiresAt) {
		return false
	}

	normalized := normalizeOTPCode(code)
	inner := kdf.SHA256([]byte(fmt.Sprintf("%s:%s:%s", email, userID, normalized)))
	outer := kdf.SHA256([]byte(fmt.Sprintf("%x:%s", inner, masterKeyHash)))
	expected := fmt.Sprintf("%x", outer)

	return subtle.ConstantTimeCompare([]byte(expected), []byte(challenge.Signature)) == 1
}

func normalizeOTPCode(code string) string {
	return strings.TrimSpace(code)
}
