// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package sec_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraneelk/taskhive/internal/platform/sec"
)

const testSecret = "unit-test-secret-32-bytes-long-x"

// makeToken signs an HS256 token with the given claims under testSecret.
func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// newSecretVerifier builds the HS256 verifier used by most tests.
func newSecretVerifier(t *testing.T, issuerRef, audience string) sec.TokenVerifier {
	t.Helper()
	verifier, err := sec.NewTokenVerifier(context.Background(), sec.VerifierConfig{
		Secret:    testSecret,
		IssuerRef: issuerRef,
		Audience:  audience,
	})
	require.NoError(t, err)
	return verifier
}

/*
TestTokenVerifier_Valid verifies claim extraction from a well-formed token.
*/
func TestTokenVerifier_Valid(t *testing.T) {
	verifier := newSecretVerifier(t, "idp.example", "taskhive-api")

	token := makeToken(t, jwt.MapClaims{
		"sub":   "user-123",
		"iss":   "https://idp.example/auth/v1",
		"aud":   "taskhive-api",
		"email": "alice@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Contains(t, claims.Issuer, "idp.example")
}

/*
TestTokenVerifier_Rejections exercises the typed failure classes.
*/
func TestTokenVerifier_Rejections(t *testing.T) {
	verifier := newSecretVerifier(t, "idp.example", "taskhive-api")

	validClaims := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": "user-123",
			"iss": "https://idp.example/auth/v1",
			"aud": "taskhive-api",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	tests := []struct {
		name    string
		token   func() string
		wantErr error
	}{
		{
			name: "expired",
			token: func() string {
				claims := validClaims()
				claims["exp"] = time.Now().Add(-time.Minute).Unix()
				return makeToken(t, claims)
			},
			wantErr: sec.ErrTokenExpired,
		},
		{
			name: "wrong_secret",
			token: func() string {
				signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).
					SignedString([]byte("a-different-secret-entirely-xxxx"))
				require.NoError(t, err)
				return signed
			},
			wantErr: sec.ErrTokenSignature,
		},
		{
			name: "wrong_algorithm",
			token: func() string {
				key, err := rsa.GenerateKey(rand.Reader, 2048)
				require.NoError(t, err)
				signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims()).SignedString(key)
				require.NoError(t, err)
				return signed
			},
			wantErr: sec.ErrTokenSignature,
		},
		{
			name:    "malformed",
			token:   func() string { return "not.a.jwt" },
			wantErr: sec.ErrTokenMalformed,
		},
		{
			name: "wrong_issuer",
			token: func() string {
				claims := validClaims()
				claims["iss"] = "https://other-provider.example/auth"
				return makeToken(t, claims)
			},
			wantErr: sec.ErrTokenIssuer,
		},
		{
			name: "wrong_audience",
			token: func() string {
				claims := validClaims()
				claims["aud"] = "some-other-app"
				return makeToken(t, claims)
			},
			wantErr: sec.ErrTokenAudience,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), tt.token())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

/*
TestTokenVerifier_IssuerSubstring verifies the issuer check is a containment
test, matching hosted providers whose issuer URLs embed a project reference.
*/
func TestTokenVerifier_IssuerSubstring(t *testing.T) {
	verifier := newSecretVerifier(t, "project-ref-abc123", "")

	token := makeToken(t, jwt.MapClaims{
		"sub": "user-123",
		"iss": "https://project-ref-abc123.idp.example/auth/v1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.Verify(context.Background(), token)
	assert.NoError(t, err)
}

/*
TestTokenVerifier_Idempotent verifies that resolving the same token twice
yields identical claims (read-only verification).
*/
func TestTokenVerifier_Idempotent(t *testing.T) {
	verifier := newSecretVerifier(t, "", "")

	token := makeToken(t, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	first, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)

	second, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

/*
TestNewTokenVerifier_RequiresKeySource verifies construction fails without
either a JWKS URL or a shared secret.
*/
func TestNewTokenVerifier_RequiresKeySource(t *testing.T) {
	_, err := sec.NewTokenVerifier(context.Background(), sec.VerifierConfig{})
	assert.Error(t, err)
}
