// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

// Package sec provides cryptographic primitives and token verification.
//
// # Architecture
//
// This package isolates security-sensitive code (HMAC signing, JWT
// verification, Ed25519 interaction checks) from the domain logic. It acts
// as an Infrastructure service injected into the Application layer via small
// interfaces such as [TokenVerifier].
package sec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSignatureLength is the exact length of a hex-encoded HMAC-SHA256 digest.
const HMACSignatureLength = 64

// SignHMAC computes the lowercase hex HMAC-SHA256 digest of message under secret.
func SignHMAC(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC reports whether signature is the valid HMAC-SHA256 digest of
// message under secret.
//
// # Timing Safety
//
// The comparison runs in constant time via [hmac.Equal] so that an attacker
// cannot learn digest prefixes by measuring response latency.
func VerifyHMAC(message, signature, secret string) bool {
	if len(signature) != HMACSignatureLength {
		return false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))

	return hmac.Equal(provided, mac.Sum(nil))
}
