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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptWithMasterKeyRoundTrip32ByteHex(t *testing.T) {
	masterKeyHex := strings.Repeat("ab", 32)
	state := TwoFAState{TOTPEnabled: true, TOTPSecret: "JBSWY3DPEHPK3PXP", SecurityEmail: "a@example.com"}

	r, err := EncryptWithMasterKey(state, masterKeyHex)
	require.NoError(t, err)

	back, err := DecryptWithMasterKey(r, masterKeyHex)
	require.NoError(t, err)
	assert.Equal(t, state, back)
}

func TestEncryptWithMasterKeyRoundTripNon32ByteHex(t *testing.T) {
	masterKeyHex := "aabbcc"
	state := TwoFAState{TOTPEnabled: false}

	r, err := EncryptWithMasterKey(state, masterKeyHex)
	require.NoError(t, err)

	back, err := DecryptWithMasterKey(r, masterKeyHex)
	require.NoError(t, err)
	assert.Equal(t, state, back)
}

func TestEncryptWithMasterKeyRejectsMalformedHex(t *testing.T) {
	_, err := EncryptWithMasterKey(TwoFAState{}, "not-hex")
	require.Error(t, err)
}
