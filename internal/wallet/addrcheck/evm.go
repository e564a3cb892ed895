package addrcheck

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidateEVM reports whether addr is a well-formed EVM address. Mixed-case
// addresses must additionally satisfy the EIP-55 checksum; all-lower and
// all-upper forms carry no checksum and pass on shape alone.
func ValidateEVM(addr string) bool {
	if !common.IsHexAddress(addr) {
		return false
	}

	body := strings.TrimPrefix(addr, "0x")
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}

	return common.HexToAddress(addr).Hex() == addr
}
