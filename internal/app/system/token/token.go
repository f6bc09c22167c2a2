// internal/app/system/token/token.go

// Package token generates opaque, unguessable tokens for invites and
// confirmation challenges.
package token

import (
	"crypto/rand"
	"encoding/base64"
)

// Bytes of entropy per token. 24 bytes = 192 bits, comfortably above the
// 128-bit floor for practically unique, unguessable tokens.
const tokenBytes = 24

// New returns a URL-safe random token. It panics only if the platform's
// CSPRNG is unavailable, which is not a recoverable condition.
func New() string {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
