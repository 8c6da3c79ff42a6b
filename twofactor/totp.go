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

// Package twofactor implements TOTP, backup codes, the encrypted
// second-factor state envelope, and the signed email-OTP challenge. No
// library in the retrieval pack or its dependency trees implements RFC 6238;
// this package builds it directly on crypto/hmac and crypto/sha1, which is
// exactly what RFC 6238 specifies as its MAC.
package twofactor

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/internal/metrics"
)

const (
	totpDigits = 6
	totpStep   = 30 * time.Second
	totpWindow = 1 // steps of tolerance on either side
	secretSize = 20
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

// GenerateSecret returns a fresh 20-byte TOTP secret, base32-encoded without
// padding.
func GenerateSecret() (string, error) {
	raw := make([]byte, secretSize)
	if _, err := rand.Read(raw); err != nil {
		return "", zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to generate totp secret", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw), nil
}

// GenerateURI builds the otpauth:// URI used to render an enrollment QR
// code. QR rendering itself is out of scope; only the URI is produced here.
func GenerateURI(secret, account, issuer string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", strconv.Itoa(totpDigits))
	v.Set("period", "30")

	label := url.PathEscape(fmt.Sprintf("%s:%s", issuer, account))
	return fmt.Sprintf("otpauth://totp/%s?%s", label, v.Encode())
}

// GenerateAt computes the TOTP code for secret at the given Unix time.
func GenerateAt(secret string, t int64) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return hotp(key, uint64(t/int64(totpStep.Seconds()))), nil
}

// VerifyTOTP normalizes code (stripping whitespace) and checks it against
// the ±1 step window around now, per RFC 6238.
func VerifyTOTP(code, secret string, now time.Time) bool {
	return verifyTOTPAt(code, secret, now.Unix())
}

func verifyTOTPAt(code, secret string, nowUnix int64) bool {
	normalized := strings.TrimSpace(code)
	if !sixDigits.MatchString(normalized) {
		metrics.TOTPVerificationsTotal.WithLabelValues("failure").Inc()
		return false
	}

	key, err := decodeSecret(secret)
	if err != nil {
		metrics.TOTPVerificationsTotal.WithLabelValues("failure").Inc()
		return false
	}

	step := uint64(nowUnix / int64(totpStep.Seconds()))
	for delta := -totpWindow; delta <= totpWindow; delta++ {
		candidateStep := int64(step) + int64(delta)
		if candidateStep < 0 {
			continue
		}
		candidate := hotp(key, uint64(candidateStep))
		if hmac.Equal([]byte(candidate), []byte(normalized)) {
			metrics.TOTPVerificationsTotal.WithLabelValues("success").Inc()
			return true
		}
	}

	metrics.TOTPVerificationsTotal.WithLabelValues("failure").Inc()
	return false
}

// hotp implements RFC 4226's HOTP with a SHA-1 MAC, truncated to 6 digits.
func hotp(key []byte, counter uint64) string {
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	truncated := (uint32(sum[offset])&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])

	mod := uint32(1)
	for i := 0; i < totpDigits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", totpDigits, truncated%mod)
}

func decodeSecret(secret string) ([]byte, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(secret))
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(trimmed)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.InvalidInput, "malformed totp secret", err)
	}
	return raw, nil
}
