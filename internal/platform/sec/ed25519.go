// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package sec

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// # Discord Interaction Signatures

// ParseEd25519PublicKey decodes a hex-encoded Ed25519 public key as published
// in the Discord application portal.
func ParseEd25519PublicKey(hexKey string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid public key encoding: %w", err)
	}

	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("sec: public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}

	return ed25519.PublicKey(raw), nil
}

// VerifyInteraction reports whether an interaction webhook request carries a
// valid Ed25519 signature.
//
// Discord signs the concatenation of the timestamp header and the raw request
// body. A request failing this check must be answered with 401 or the
// endpoint is rejected during verification.
func VerifyInteraction(publicKey ed25519.PublicKey, timestamp string, body []byte, signature string) bool {
	raw, err := hex.DecodeString(signature)
	if err != nil || len(raw) != ed25519.SignatureSize {
		return false
	}

	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, timestamp...)
	message = append(message, body...)

	return ed25519.Verify(publicKey, message, raw)
}
