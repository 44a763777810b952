package crypto

import (
	"crypto/rand"
	"errors"
)

const (
	// URLAlphabet has 64 symbols, so every random byte maps to one symbol
	// after masking.
	URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

	// SessionIDLength gives 132 bits of entropy over URLAlphabet.
	SessionIDLength = 22
)

var (
	ErrAlphabetSize     = errors.New("alphabet must have between 2 and 255 symbols")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
	ErrInvalidLength    = errors.New("id length must be positive")
)

// NewSessionID returns a random URL-safe session identifier.
func NewSessionID() (string, error) {
	return RandomString(URLAlphabet, SessionIDLength)
}

// RandomString draws size symbols uniformly from alphabet. Bytes are masked
// to the next power of two and out-of-range values are discarded.
func RandomString(alphabet string, size int) (string, error) {
	if size <= 0 {
		return "", ErrInvalidLength
	}
	if len(alphabet) < 2 || len(alphabet) > 255 {
		return "", ErrAlphabetSize
	}
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return "", ErrAlphabetNotASCII
		}
	}

	mask := byte(1)
	for int(mask) < len(alphabet)-1 {
		mask = mask<<1 | 1
	}

	out := make([]byte, 0, size)
	buf := make([]byte, size*2)
	for len(out) < size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			idx := int(b & mask)
			if idx >= len(alphabet) {
				continue
			}
			out = append(out, alphabet[idx])
			if len(out) == size {
				break
			}
		}
	}
	return string(out), nil
}
