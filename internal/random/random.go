// Package random produces cryptographically strong random bytes and strings.
package random

import (
	"crypto/rand"
	"errors"
	"fmt"
)

var (
	// ErrEmptyAlphabet is returned by [SecureString] for an empty alphabet.
	ErrEmptyAlphabet = errors.New("random: alphabet must not be empty")

	// ErrAlphabetTooLong is returned by [SecureString] for an alphabet of
	// more than 256 bytes.
	ErrAlphabetTooLong = errors.New("random: alphabet must not exceed 256 bytes")
)

// SecureBytes returns a securely random byte slice of length l.
func SecureBytes(l int) ([]byte, error) {
	bytes := make([]byte, l)

	_, err := rand.Read(bytes)
	if err != nil {
		return bytes, fmt.Errorf(
			"random: error reading random bytes: %w",
			err,
		)
	}

	return bytes, nil
}

// SecureString returns a string of n characters drawn uniformly from
// alphabet, which must be 1 to 256 bytes long.
//
// Bytes at or above the largest multiple of len(alphabet) are rejected so
// that every character is equally likely.
func SecureString(alphabet string, n int) (string, error) {
	if len(alphabet) == 0 {
		return "", ErrEmptyAlphabet
	}
	if len(alphabet) > 256 {
		return "", fmt.Errorf("%w: got %d", ErrAlphabetTooLong, len(alphabet))
	}
	if n <= 0 {
		return "", nil
	}

	limit := 256 - 256%len(alphabet)
	out := make([]byte, 0, n)
	for len(out) < n {
		// Over-read a little so one Read usually suffices.
		buf, err := SecureBytes(n - len(out) + n/4 + 1)
		if err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
