// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraneelk/taskhive/internal/platform/sec"
)

/*
TestHMAC_RoundTrip verifies that a signature produced by SignHMAC verifies
under the same secret and message.
*/
func TestHMAC_RoundTrip(t *testing.T) {
	const secret = "bot-shared-secret"
	const message = "815915014510923776|1756500000000"

	signature := sec.SignHMAC(message, secret)

	require.Len(t, signature, sec.HMACSignatureLength)
	assert.Equal(t, strings.ToLower(signature), signature)
	assert.True(t, sec.VerifyHMAC(message, signature, secret))
}

/*
TestHMAC_SingleBitMutation verifies that flipping any hex digit of the
signature, or altering the message, causes rejection.
*/
func TestHMAC_SingleBitMutation(t *testing.T) {
	const secret = "bot-shared-secret"
	const message = "815915014510923776|1756500000000"

	signature := sec.SignHMAC(message, secret)

	// Mutate every position of the signature in turn.
	for i := 0; i < len(signature); i++ {
		mutated := []byte(signature)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		assert.False(t, sec.VerifyHMAC(message, string(mutated), secret), "position %d", i)
	}

	// Mutate the message components.
	assert.False(t, sec.VerifyHMAC("815915014510923777|1756500000000", signature, secret))
	assert.False(t, sec.VerifyHMAC("815915014510923776|1756500000001", signature, secret))
}

/*
TestHMAC_Malformed verifies structural rejection of non-64-hex signatures.
*/
func TestHMAC_Malformed(t *testing.T) {
	const secret = "bot-shared-secret"
	const message = "id|ts"

	tests := []struct {
		name      string
		signature string
	}{
		{"empty", ""},
		{"too_short", "abcdef"},
		{"too_long", strings.Repeat("a", 65)},
		{"non_hex", strings.Repeat("z", 64)},
		{"uppercase_non_hex", strings.Repeat("G", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, sec.VerifyHMAC(message, tt.signature, secret))
		})
	}
}

/*
TestHMAC_WrongSecret verifies that a digest under one secret never verifies
under another.
*/
func TestHMAC_WrongSecret(t *testing.T) {
	const message = "815915014510923776|1756500000000"

	signature := sec.SignHMAC(message, "secret-a")
	assert.False(t, sec.VerifyHMAC(message, signature, "secret-b"))
}

/*
TestGenerateSecureToken checks entropy-backed token generation and hashing.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	// Two draws must never collide.
	assert.NotEqual(t, first, second)

	// Hashing is deterministic and never returns the raw token.
	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.NotEqual(t, first, sec.HashToken(first))
	assert.Len(t, sec.HashToken(first), 64)
}
