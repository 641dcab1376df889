package signing

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"
)

const nonceAlphabet = "1234567890abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// nonceGroups is the cosmetic 8-4-4-4-12 grouping. The result looks like a
// UUID but carries no version or variant bits.
var nonceGroups = [...]int{8, 4, 4, 4, 12}

// NonceSource produces single-use nonces.
type NonceSource interface {
	Nonce() (string, error)
}

// RandomNonce draws 32 characters uniformly from [0-9a-zA-Z].
type RandomNonce struct {
	// Reader is the entropy source. Defaults to crypto/rand.Reader.
	Reader io.Reader
}

// Nonce implements NonceSource.
func (n RandomNonce) Nonce() (string, error) {
	r := n.Reader
	if r == nil {
		r = rand.Reader
	}

	// 248 is the largest multiple of 62 that fits in a byte; anything at or
	// above it is rejected to keep the distribution uniform.
	const limit = 256 - 256%len(nonceAlphabet)

	chars := make([]byte, 0, 32)
	buf := make([]byte, 64)
	for len(chars) < cap(chars) {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("signing: read nonce entropy: %w", err)
		}
		for _, b := range buf {
			if len(chars) == cap(chars) {
				break
			}
			if int(b) >= limit {
				continue
			}
			chars = append(chars, nonceAlphabet[int(b)%len(nonceAlphabet)])
		}
	}

	out := make([]byte, 0, 36)
	for gi, size := range nonceGroups {
		if gi > 0 {
			out = append(out, '-')
		}
		out = append(out, chars[:size]...)
		chars = chars[size:]
	}
	return string(out), nil
}

// NonceFunc adapts a function to NonceSource.
type NonceFunc func() (string, error)

// Nonce implements NonceSource.
func (f NonceFunc) Nonce() (string, error) { return f() }

// Clock supplies the signing timestamp.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }
