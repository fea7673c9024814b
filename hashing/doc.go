// Package hashing computes and verifies salted hex digests for a password
// auditing lab.
//
// # Architecture
//
// A [Spec] names an [Algorithm], a [SaltMode] and a salt.  [Spec.ApplySalt]
// turns a password into digest input; a [Registry] maps algorithm names to
// [hash.Hash] factories and produces lower-case hex digests.  The package
// level [Hash], [Digest] and [Verify] functions use [DefaultRegistry], which
// ships with:
//
//   - md5, sha1, sha256: the classic fast digests the lab is built around
//   - sha512, sha3-256, blake2b-256: modern fast digests for comparison
//
// None of these is a password hashing function.  They are fast on purpose:
// the lab measures how fast, and what that means for an attacker.
//
// # Quick start
//
//	spec, err := hashing.NewSpec(hashing.AlgorithmSHA256, hashing.SaltPrefix, "pepper")
//	if err != nil { log.Fatal(err) }
//
//	digest, _ := hashing.Hash("hunter2", spec)
//	ok, _     := hashing.Verify("hunter2", digest, spec) // true
//
// # Errors
//
// An unknown algorithm or salt mode yields a [*ConfigError] naming the field,
// which matches [ErrInvalidConfiguration] under [errors.Is].  A failed
// verification is not an error: [Verify] returns (false, nil).
package hashing
