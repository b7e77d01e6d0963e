package chain_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/permit-payment/pkg/chain"
)

func TestPrettyETH(t *testing.T) {
	tests := []struct {
		wei  *big.Int
		want string
	}{
		{wei: big.NewInt(123_000_000_000), want: "123 GWei"},
		{wei: big.NewInt(123_000_000), want: "0.123 GWei"},
		{wei: big.NewInt(123_000_000_000_000), want: "123000 GWei"},
		{wei: big.NewInt(123_000_000_000_000_0), want: "0.00123 ETH"},
		{wei: big.NewInt(8), want: "8 Wei"},
		{wei: nil, want: "0 Wei"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, chain.PrettyETH(tt.wei))
		})
	}
}

func TestGasCost(t *testing.T) {
	assert.Equal(t, big.NewInt(42_000_000_000_000), chain.GasCost(21000, big.NewInt(2_000_000_000)))
	assert.Zero(t, chain.GasCost(21000, nil).Sign())
}

func TestParseAddress(t *testing.T) {
	address, err := chain.ParseAddress("0xe66652d41EE7e81d3fcAe1dF7F9B9f9411ac835e")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xe66652d41EE7e81d3fcAe1dF7F9B9f9411ac835e"), address)

	_, err = chain.ParseAddress("0xe666")
	require.Error(t, err)
}

func TestParseHash(t *testing.T) {
	const s = "0x8c9b7eb2e4c1a0c5b1c9a0f16f7d5b3c6d9e0a1b2c3d4e5f60718293a4b5c6d7"
	hash, err := chain.ParseHash(s)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(s), hash)

	for _, bad := range []string{"", "0x1234", s[2:], s + "00"} {
		_, err := chain.ParseHash(bad)
		assert.Error(t, err, bad)
	}
}
