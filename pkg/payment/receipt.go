package payment

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap/zapcore"
)

// DefaultExplorerURL is prefixed to transaction hashes to link to them.
const DefaultExplorerURL = "https://etherscan.io/tx/"

// Receipt describes a confirmed payment.
type Receipt struct {
	TxHash      common.Hash
	ExplorerURL string
	BlockNumber *big.Int
	GasUsed     uint64

	// Amount is the amount paid, in smallest units.
	Amount *big.Int

	// Approval, Nonce and Deadline are the signed permit values.
	Approval *big.Int
	Nonce    *big.Int
	Deadline *big.Int
}

func (r *Receipt) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("hash", r.TxHash.Hex())
	enc.AddString("amount", r.Amount.String())
	enc.AddString("approval", r.Approval.String())
	enc.AddString("nonce", r.Nonce.String())
	enc.AddString("deadline", r.Deadline.String())
	if r.BlockNumber != nil {
		enc.AddString("block", r.BlockNumber.String())
	}
	enc.AddUint64("gas-used", r.GasUsed)
	return nil
}

// ExplorerLink returns the link to hash under the explorer base URL.
func ExplorerLink(base string, hash common.Hash) string {
	if base == "" {
		base = DefaultExplorerURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + hash.Hex()
}
