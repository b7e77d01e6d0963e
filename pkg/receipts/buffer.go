// Package receipts renders payment attempts as a CSV receipts file.
package receipts

import (
	"bytes"
	"encoding/csv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"storj.io/permit-payment/pkg/journal"
	"storj.io/permit-payment/pkg/token"
)

type Buffer struct {
	buf bytes.Buffer
	csv *csv.Writer
}

func (b *Buffer) Emit(account common.Address, amount decimal.Decimal, txHash string, state journal.State) {
	b.init()
	b.write(account.String(), amount.String(), txHash, string(state))
}

// EmitAttempt emits a journal attempt. Attempts that never reached the chain
// have an empty txhash.
func (b *Buffer) EmitAttempt(a *journal.Attempt, decimals int32) {
	var txHash string
	if a.TxHash != (common.Hash{}) {
		txHash = a.TxHash.Hex()
	}
	b.Emit(a.Account, token.FromUnits(a.Amount, decimals), txHash, a.State)
}

func (b *Buffer) Finalize() []byte {
	b.init()
	b.csv.Flush()
	return b.buf.Bytes()
}

func (b *Buffer) init() {
	if b.csv == nil {
		b.csv = csv.NewWriter(&b.buf)
		b.write("account", "amount", "txhash", "state")
	}
}

func (b *Buffer) write(c1, c2, c3, c4 string) {
	_ = b.csv.Write([]string{c1, c2, c3, c4})
}
