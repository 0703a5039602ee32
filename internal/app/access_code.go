package app

import (
	"crypto/rand"
	"fmt"
)

const (
	// AccessCodeLength matches the 10-character codes handed to participants.
	AccessCodeLength   = 10
	accessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
)

// NewAccessCode returns a random URL-safe token. The alphabet has 64 symbols,
// so masking each random byte keeps the distribution uniform.
func NewAccessCode() (string, error) {
	buf := make([]byte, AccessCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate access code: %w", err)
	}
	for i, b := range buf {
		buf[i] = accessCodeAlphabet[b&63]
	}
	return string(buf), nil
}
