package payment

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"storj.io/permit-payment/pkg/directory"
)

// Phase is where the session is in a payment attempt.
type Phase int

const (
	Idle Phase = iota
	Validating
	Authorizing
	Submitting
	Confirming
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Authorizing:
		return "authorizing"
	case Submitting:
		return "submitting"
	case Confirming:
		return "confirming"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Observer is told about every phase change. It runs on the paying
// goroutine without any lock held.
type Observer func(from, to Phase)

// Session is a snapshot of the state owned by the orchestrator.
type Session struct {
	// Account is the connected account. It is the zero address until the
	// wallet has been connected.
	Account common.Address

	Contracts *directory.ContractInfo

	// Balance is the last token balance read for Account, in smallest units.
	// It is nil until it has been read.
	Balance *big.Int

	Phase Phase

	// PendingAmount is the amount of the last attempt that has not completed,
	// in smallest units.
	PendingAmount *big.Int
}

// Connected reports whether an account has been connected.
func (s Session) Connected() bool {
	return s.Account != (common.Address{})
}

func (s Session) clone() Session {
	s.Balance = cloneBig(s.Balance)
	s.PendingAmount = cloneBig(s.PendingAmount)
	return s
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
