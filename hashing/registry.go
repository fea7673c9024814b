package hashing

import (
	"crypto/md5"  //nolint:gosec // md5 is one of the algorithms under study
	"crypto/sha1" //nolint:gosec // sha1 is one of the algorithms under study
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Factory returns a fresh, unkeyed [hash.Hash] for one digest computation.
type Factory func() hash.Hash

// Registry is a thread-safe algorithm registry and dispatcher.
//
// Register named [Factory] functions, then call [Registry.Hash],
// [Registry.Digest] and [Registry.Verify] for all hashing operations.
// Looking up an unregistered algorithm yields a [*ConfigError] for the
// "algorithm" field.
//
// # Thread safety
//
// All Registry methods are safe for concurrent use by multiple goroutines.
// A [sync.RWMutex] serialises writes (Register) while allowing concurrent
// reads (Hash, Verify, etc.).
type Registry struct {
	mu    sync.RWMutex
	algos map[Algorithm]Factory
}

// DefaultRegistry holds every built-in algorithm.  The package-level
// [Hash], [Digest] and [Verify] functions dispatch through it.
//
//nolint:gochecknoglobals
var DefaultRegistry = NewDefaultRegistry()

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{algos: make(map[Algorithm]Factory)}
}

// NewDefaultRegistry creates a Registry with the built-in algorithms:
// md5, sha1, sha256, sha512, sha3-256 and blake2b-256.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(AlgorithmMD5, md5.New)
	_ = r.Register(AlgorithmSHA1, sha1.New)
	_ = r.Register(AlgorithmSHA256, sha256.New)
	_ = r.Register(AlgorithmSHA512, sha512.New)
	_ = r.Register(AlgorithmSHA3_256, sha3.New256)
	_ = r.Register(AlgorithmBLAKE2b256, newBLAKE2b256)
	return r
}

// newBLAKE2b256 adapts blake2b.New256, which only fails for keys longer
// than 64 bytes, to the [Factory] signature.
func newBLAKE2b256() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("hashing: blake2b: %v", err))
	}
	return h
}

// Register adds or replaces a named algorithm.
// It is safe to call Register while other goroutines are using the Registry.
func (r *Registry) Register(name Algorithm, f Factory) error {
	if name == "" {
		return ErrEmptyAlgorithm
	}
	if f == nil {
		return ErrNilFactory
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.algos[name] = f
	return nil
}

// Has reports whether an algorithm with the given name is registered.
func (r *Registry) Has(name Algorithm) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.algos[name]
	return ok
}

// Algorithms returns the registered algorithm names in sorted order.
func (r *Registry) Algorithms() []Algorithm {
	r.mu.RLock()
	names := lo.Keys(r.algos)
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Factory returns the [Factory] registered under name, or a [*ConfigError]
// for the "algorithm" field if there is none.
func (r *Registry) Factory(name Algorithm) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.algos[name]
	if !ok {
		return nil, NewConfigError("algorithm", name, "")
	}
	return f, nil
}

// Validate checks both fields of spec against the Registry so callers can
// reject a configuration before doing any work.
func (r *Registry) Validate(spec Spec) error {
	if !r.Has(spec.Algorithm) {
		return NewConfigError("algorithm", spec.Algorithm, "")
	}
	return spec.Validate()
}

// Digest returns the lower-case hex digest of the UTF-8 bytes of material.
func (r *Registry) Digest(material string, algorithm Algorithm) (string, error) {
	f, err := r.Factory(algorithm)
	if err != nil {
		return "", err
	}
	h := f()
	_, _ = h.Write([]byte(material))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Hash salts password according to spec and digests the result.
func (r *Registry) Hash(password string, spec Spec) (string, error) {
	material, err := spec.ApplySalt(password)
	if err != nil {
		return "", err
	}
	return r.Digest(material, spec.Algorithm)
}

// Verify recomputes the digest of password and compares it with expected.
//
// expected is lower-cased first, so upper- and mixed-case hex is accepted.
// A mismatch is reported as (false, nil); only an invalid spec returns an
// error.  The comparison is not constant time.
func (r *Registry) Verify(password, expected string, spec Spec) (bool, error) {
	got, err := r.Hash(password, spec)
	if err != nil {
		return false, err
	}
	return got == strings.ToLower(expected), nil
}

// Hash is [Registry.Hash] on [DefaultRegistry].
func Hash(password string, spec Spec) (string, error) {
	return DefaultRegistry.Hash(password, spec)
}

// Digest is [Registry.Digest] on [DefaultRegistry].
func Digest(material string, algorithm Algorithm) (string, error) {
	return DefaultRegistry.Digest(material, algorithm)
}

// Verify is [Registry.Verify] on [DefaultRegistry].
func Verify(password, expected string, spec Spec) (bool, error) {
	return DefaultRegistry.Verify(password, expected, spec)
}
