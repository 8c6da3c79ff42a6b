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

package twofactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRFC6238Vector checks the published SHA-1 test vector from RFC 6238
// Appendix B at T=1111111109 (count 0x023523EC), using the RFC's ASCII
// secret "12345678901234567890" in base32.
func TestRFC6238Vector(t *testing.T) {
	code, err := GenerateAt("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", 1111111109)
	require.NoError(t, err)
	assert.Equal(t, "081804", code)
}

func TestVerifyTOTPWindow(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	code, err := GenerateAt(secret, now.Unix())
	require.NoError(t, err)

	assert.True(t, VerifyTOTP(code, secret, now))
	assert.True(t, VerifyTOTP(code, secret, now.Add(30*time.Second)))
	assert.False(t, VerifyTOTP(code, secret, now.Add(60*time.Second)))
}

func TestVerifyTOTPRejectsMalformedCode(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)

	assert.False(t, VerifyTOTP("12345", secret, time.Now()))
	assert.False(t, VerifyTOTP("abcdef", secret, time.Now()))
}

func TestGenerateURIContainsAccountAndIssuer(t *testing.T) {
	uri := GenerateURI("JBSWY3DPEHPK3PXP", "alice@example.com", "zkauth")
	assert.Contains(t, uri, "otpauth://totp/")
	assert.Contains(t, uri, "secret=JBSWY3DPEHPK3PXP")
	assert.Contains(t, uri, "issuer=zkauth")
}
