package journal

import (
	"github.com/ethereum/go-ethereum/core/types"
)

type State string

const (
	// Aborted is an attempt that ended before a transaction was sent. Nothing
	// happened on chain.
	Aborted State = "aborted"

	// Pending is an attempt whose transaction was sent but has no receipt yet.
	Pending State = "pending"

	// Failed is an attempt whose transaction was refused by the node or mined
	// and reverted. The permit may have been consumed.
	Failed State = "failed"

	// Confirmed is an attempt whose transaction was mined successfully.
	Confirmed State = "confirmed"
)

// States lists every state in lifecycle order.
var States = []State{Aborted, Pending, Failed, Confirmed}

func StateFromString(s string) (State, bool) {
	switch State(s) {
	case Aborted:
		return Aborted, true
	case Pending:
		return Pending, true
	case Failed:
		return Failed, true
	case Confirmed:
		return Confirmed, true
	}
	return "", false
}

// StateFromReceipt returns Confirmed or Failed depending on the receipt
// status.
func StateFromReceipt(receipt *types.Receipt) State {
	if receipt != nil && receipt.Status == types.ReceiptStatusSuccessful {
		return Confirmed
	}
	return Failed
}

// Final reports whether the attempt can no longer change state.
func (s State) Final() bool {
	return s != Pending
}
