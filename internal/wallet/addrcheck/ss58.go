// Package addrcheck verifies chain-specific address encodings. It runs as a
// post-condition after every derivation: a failure here means the engine
// produced a malformed address, which is a defect, never user input.
package addrcheck

import (
	"github.com/vedhavyas/go-subkey/v2"
)

// publicKeyLength is the SR25519 public key size embedded in SS58 addresses.
const publicKeyLength = 32

// ValidateChecksum reports whether addr is a well-formed SS58 address with a
// valid checksum, regardless of its network prefix.
func ValidateChecksum(addr string) bool {
	_, pubKey, err := subkey.SS58Decode(addr)
	return err == nil && len(pubKey) == publicKeyLength
}

// ValidateWithPrefix reports whether addr is checksum-valid and carries
// exactly the expected network prefix.
func ValidateWithPrefix(addr string, expectedPrefix uint16) bool {
	prefix, pubKey, err := subkey.SS58Decode(addr)
	if err != nil || len(pubKey) != publicKeyLength {
		return false
	}
	return prefix == expectedPrefix
}

// Decode returns the embedded public key bytes and network prefix for
// diagnostics.
func Decode(addr string) ([]byte, uint16, error) {
	prefix, pubKey, err := subkey.SS58Decode(addr)
	if err != nil {
		return nil, 0, err
	}
	return pubKey, prefix, nil
}
