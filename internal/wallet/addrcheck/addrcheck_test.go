package addrcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-accounts/internal/wallet/addrcheck"
)

const (
	// well-known development account, generic substrate prefix 42
	aliceGeneric = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	// Web3 Foundation address, polkadot prefix 0
	w3fPolkadot = "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5"
)

func TestValidateChecksum(t *testing.T) {
	assert.True(t, addrcheck.ValidateChecksum(aliceGeneric))
	assert.True(t, addrcheck.ValidateChecksum(w3fPolkadot))
}

// corruptAt replaces one character with a different base58 character, so
// the corruption hits the checksum rather than the alphabet check.
func corruptAt(addr string, position int) string {
	replacement := byte('3')
	if addr[position] == replacement {
		replacement = '4'
	}
	return addr[:position] + string(replacement) + addr[position+1:]
}

func TestValidateChecksumRejectsCorruption(t *testing.T) {
	for _, addr := range []string{aliceGeneric, w3fPolkadot} {
		// prefix, payload and checksum positions
		for _, position := range []int{0, len(addr) / 2, len(addr) - 1} {
			assert.False(t, addrcheck.ValidateChecksum(corruptAt(addr, position)),
				"corruption at position %d of %s must be rejected", position, addr)
		}
	}

	assert.False(t, addrcheck.ValidateChecksum(""))
	assert.False(t, addrcheck.ValidateChecksum("not-an-address"))
	assert.False(t, addrcheck.ValidateChecksum("0x63c0c19a282a1B52b07dD5a65b58948A07DAE32B"))
}

func TestValidateWithPrefix(t *testing.T) {
	assert.True(t, addrcheck.ValidateWithPrefix(aliceGeneric, 42))
	assert.False(t, addrcheck.ValidateWithPrefix(aliceGeneric, 0))

	assert.True(t, addrcheck.ValidateWithPrefix(w3fPolkadot, 0))
	assert.False(t, addrcheck.ValidateWithPrefix(w3fPolkadot, 42))
}

func TestDecode(t *testing.T) {
	pubKey, prefix, err := addrcheck.Decode(aliceGeneric)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), prefix)
	assert.Len(t, pubKey, 32)

	_, _, err = addrcheck.Decode("garbage")
	require.Error(t, err)
}

func TestValidateEVM(t *testing.T) {
	// EIP-55 checksummed
	assert.True(t, addrcheck.ValidateEVM("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	// all lowercase carries no checksum
	assert.True(t, addrcheck.ValidateEVM("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))

	// bad EIP-55 checksum
	assert.False(t, addrcheck.ValidateEVM("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1Beaed"))
	assert.False(t, addrcheck.ValidateEVM("0x5aaeb"))
	assert.False(t, addrcheck.ValidateEVM(""))
	assert.False(t, addrcheck.ValidateEVM(aliceGeneric))
}
