// Package derivation builds and parses the canonical derivation paths used
// by the account factories. Pure functions, no I/O.
package derivation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github/chapool/go-accounts/internal/apperrors"
)

// The Substrate-style path fixes purpose 44 and coin type 354 and carries
// the account index in the third slot: //44//354//{index}//0//0.
const (
	pathPurpose  = 44
	pathCoinType = 354
)

//nolint:gochecknoglobals // compiled once, read-only
var pathPattern = regexp.MustCompile(`^//44//354//(0|[1-9][0-9]*)//0//0$`)

// BuildPath returns the canonical derivation path for an account index.
// Indices must fit a non-negative int32; anything else is an invalid-index
// error, rejected before any derivation happens.
func BuildPath(accountIndex int) (string, error) {
	if accountIndex < 0 || accountIndex > math.MaxInt32 {
		return "", apperrors.Newf(apperrors.KindInvalidIndex, "account index %d out of range", accountIndex)
	}
	return fmt.Sprintf("//%d//%d//%d//0//0", pathPurpose, pathCoinType, accountIndex), nil
}

// ParsePath is the exact left inverse of BuildPath for all valid indices.
// It reports ok=false for any non-matching string; it never errors or
// panics. Used for diagnostics, not security.
func ParsePath(path string) (int, bool) {
	match := pathPattern.FindStringSubmatch(path)
	if match == nil {
		return 0, false
	}

	index, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || index > math.MaxInt32 {
		return 0, false
	}

	return int(index), true
}

// EVMPath returns the fixed BIP-44 path for EVM key material. All EVM
// chains share coin type 60 and therefore share keys per index.
func EVMPath(accountIndex int) (string, error) {
	if accountIndex < 0 || accountIndex > math.MaxInt32 {
		return "", apperrors.Newf(apperrors.KindInvalidIndex, "account index %d out of range", accountIndex)
	}
	return fmt.Sprintf("m/44'/60'/0'/0/%d", accountIndex), nil
}
