package benchmark

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/hasbyte1/hash-audit/internal/random"
)

// Alphabet is the character set benchmark passwords are drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()-_=+"

// PasswordSource generates the throwaway passwords hashed by the timing
// loop.
type PasswordSource interface {
	Password(n int) (string, error)
}

var (
	_ PasswordSource = (*CryptoSource)(nil)
	_ PasswordSource = (*SeededSource)(nil)
)

// CryptoSource draws passwords from crypto/rand.
type CryptoSource struct {
	alphabet string
}

// NewCryptoSource returns a CryptoSource over [Alphabet].
func NewCryptoSource() *CryptoSource {
	return &CryptoSource{alphabet: Alphabet}
}

// Password returns n characters of [Alphabet].
func (s *CryptoSource) Password(n int) (string, error) {
	return random.SecureString(s.alphabet, n)
}

// SeededSource is a deterministic PasswordSource for tests.  It is not
// safe for concurrent use.
type SeededSource struct {
	rng      *rand.Rand
	alphabet string
}

// NewSeededSource returns a SeededSource whose output depends only on seed.
func NewSeededSource(seed uint64) *SeededSource {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)

	return &SeededSource{
		rng:      rand.New(rand.NewChaCha8(key)),
		alphabet: Alphabet,
	}
}

// Password returns n characters of [Alphabet].
func (s *SeededSource) Password(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		b[i] = s.alphabet[s.rng.IntN(len(s.alphabet))]
	}
	return string(b), nil
}
