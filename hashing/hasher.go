package hashing

import "strings"

// Algorithm identifies a digest algorithm registered in a [Registry].
// Using a named string type prevents accidental confusion with plain strings.
type Algorithm string

const (
	// AlgorithmMD5 selects MD5 (RFC 1321).
	AlgorithmMD5 Algorithm = "md5"
	// AlgorithmSHA1 selects SHA-1.
	AlgorithmSHA1 Algorithm = "sha1"
	// AlgorithmSHA256 selects SHA-256.
	AlgorithmSHA256 Algorithm = "sha256"
	// AlgorithmSHA512 selects SHA-512.
	AlgorithmSHA512 Algorithm = "sha512"
	// AlgorithmSHA3_256 selects SHA3-256 (FIPS 202).
	AlgorithmSHA3_256 Algorithm = "sha3-256"
	// AlgorithmBLAKE2b256 selects unkeyed BLAKE2b with a 256-bit output.
	AlgorithmBLAKE2b256 Algorithm = "blake2b-256"
)

// SaltMode controls where a salt is placed relative to the password.
type SaltMode string

const (
	// SaltNone hashes the password as is.
	SaltNone SaltMode = "none"
	// SaltPrefix hashes salt+password.
	SaltPrefix SaltMode = "prefix"
	// SaltSuffix hashes password+salt.
	SaltSuffix SaltMode = "suffix"
)

// SaltModes lists every recognised [SaltMode] in display order.
var SaltModes = []SaltMode{SaltNone, SaltPrefix, SaltSuffix}

// Valid reports whether m is one of [SaltModes].
func (m SaltMode) Valid() bool {
	switch m {
	case SaltNone, SaltPrefix, SaltSuffix:
		return true
	default:
		return false
	}
}

// Spec describes how a password is turned into digest input and which
// algorithm digests it.  A Spec is a plain value; it is never mutated.
type Spec struct {
	// Algorithm is the registered digest algorithm.
	Algorithm Algorithm

	// SaltMode is where Salt goes.  The zero value behaves like [SaltNone].
	SaltMode SaltMode

	// Salt is the literal salt string.  An empty salt disables salting
	// regardless of SaltMode.
	Salt string
}

// NewSpec returns a Spec after checking that mode is recognised.  The
// algorithm is checked against a [Registry] when the Spec is used.
func NewSpec(algorithm Algorithm, mode SaltMode, salt string) (Spec, error) {
	s := Spec{Algorithm: algorithm, SaltMode: mode, Salt: salt}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// Validate returns a [*ConfigError] for the salt_mode field when the mode
// is not recognised.
func (s Spec) Validate() error {
	if s.SaltMode == "" || s.SaltMode.Valid() {
		return nil
	}
	return NewConfigError("salt_mode", s.SaltMode, "want one of none, prefix, suffix")
}

// ApplySalt returns the digest input for password.
//
// Prefix mode prepends the salt, suffix mode appends it.  With [SaltNone]
// or an empty salt the password is returned unchanged.
func (s Spec) ApplySalt(password string) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	if s.SaltMode == SaltNone || s.SaltMode == "" || s.Salt == "" {
		return password, nil
	}

	var b strings.Builder
	b.Grow(len(password) + len(s.Salt))
	if s.SaltMode == SaltPrefix {
		b.WriteString(s.Salt)
		b.WriteString(password)
	} else {
		b.WriteString(password)
		b.WriteString(s.Salt)
	}
	return b.String(), nil
}
