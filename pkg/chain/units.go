package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/zeebo/errs"
)

// ParseAddress parses a 0x-prefixed hex address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errs.New("%q is not a hex address", s)
	}
	return common.HexToAddress(s), nil
}

// ParseHash parses a 0x-prefixed, 32 byte hex transaction hash.
func ParseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, errs.New("%q is not a valid hash", s)
	}
	return common.BytesToHash(b), nil
}

// PrettyETH renders a wei amount in the largest unit that keeps it readable.
func PrettyETH(wei *big.Int) string {
	switch {
	case wei == nil:
		return "0 Wei"
	case wei.Cmp(big.NewInt(1_000_000_000_000_000)) > 0:
		return fmt.Sprintf("%s ETH", decimal.NewFromBigInt(wei, -18))
	case wei.Cmp(big.NewInt(1_000_000_0)) > 0:
		return fmt.Sprintf("%s GWei", decimal.NewFromBigInt(wei, -9))
	default:
		return fmt.Sprintf("%s Wei", wei)
	}
}

// GasCost is what a mined receipt paid for gas, in wei.
func GasCost(gasUsed uint64, effectiveGasPrice *big.Int) *big.Int {
	if effectiveGasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(gasUsed), effectiveGasPrice)
}
