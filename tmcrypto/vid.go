// Package tmcrypto provides the identity/hashing primitives the consensus
// core uses to name proposed values.
package tmcrypto

import (
	"golang.org/x/crypto/sha3"
)

// VID returns the cryptographic identifier of value: its Keccak-256 digest.
// VID(nil) is nil, and a zero-length value is treated the same as nil since
// the data model requires values to be non-empty.
func VID(value []byte) []byte {
	if len(value) == 0 {
		return nil
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(value)
	return h.Sum(nil)
}

// Equal reports whether a and b name the same value identifier, treating
// nil and empty slices as equivalent.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
