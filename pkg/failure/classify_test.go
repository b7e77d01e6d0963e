package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/errs"

	"storj.io/permit-payment/pkg/failure"
	"storj.io/permit-payment/pkg/wallet"
)

type codeError struct {
	code int
	msg  string
}

func (e codeError) Error() string  { return e.msg }
func (e codeError) ErrorCode() int { return e.code }

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name     string
		err      error
		kind     failure.Kind
		category string
	}{
		{
			name:     "user rejected signature",
			err:      failure.SigningRejected.Wrap(wallet.Rejected("User denied message signature")),
			kind:     failure.UserRejected,
			category: "signing rejected",
		},
		{
			name:     "insufficient balance",
			err:      failure.NewPrecondition(failure.InsufficientBalance, "balance 5 is below 10"),
			kind:     failure.InsufficientFunds,
			category: "precondition",
		},
		{
			name:     "contracts missing",
			err:      failure.NewPrecondition(failure.ContractsUnloaded, ""),
			kind:     failure.ContractInfoUnloaded,
			category: "precondition",
		},
		{
			name:     "config load",
			err:      failure.ConfigLoad.New("proxy address missing"),
			kind:     failure.ContractInfoUnloaded,
			category: "contract configuration",
		},
		{
			name:     "invalid amount",
			err:      failure.NewPrecondition(failure.InvalidAmount, "%q", "abc"),
			kind:     failure.InvalidParameters,
			category: "precondition",
		},
		{
			name:     "provider invalid params",
			err:      failure.Submission.Wrap(codeError{code: -32602, msg: "invalid argument 0"}),
			kind:     failure.InvalidParameters,
			category: "submission",
		},
		{
			name:     "provider user rejected transaction",
			err:      failure.Submission.Wrap(wallet.Rejected("User denied transaction signature")),
			kind:     failure.UserRejected,
			category: "submission",
		},
		{
			name:     "node insufficient funds",
			err:      failure.Submission.Wrap(fmt.Errorf("send: %w", core.ErrInsufficientFunds)),
			kind:     failure.InsufficientFunds,
			category: "submission",
		},
		{
			name:     "node rejected unfunded transaction",
			err:      failure.Submission.Wrap(codeError{code: -32000, msg: "insufficient funds for gas * price + value: balance 0, tx cost 300000, overshot 300000"}),
			kind:     failure.InsufficientFunds,
			category: "submission",
		},
		{
			name:     "node error without a known message",
			err:      failure.Submission.Wrap(codeError{code: -32000, msg: "nonce too low: next nonce 4, tx nonce 3"}),
			kind:     failure.Unknown,
			category: "submission",
		},
		{
			name:     "nonce lookup failed before send",
			err:      failure.Preparation.Wrap(errs.New("connection reset")),
			kind:     failure.Unknown,
			category: "transaction preparation",
		},
		{
			name:     "reverted",
			err:      failure.Confirmation.New("transaction 0xabc reverted"),
			kind:     failure.Unknown,
			category: "confirmation",
		},
		{
			name:     "in flight",
			err:      failure.NewPrecondition(failure.InFlight, ""),
			kind:     failure.Unknown,
			category: "precondition",
		},
		{
			name:     "wallet unavailable",
			err:      failure.WalletUnavailable.New("no wallet configured"),
			kind:     failure.Unknown,
			category: "wallet unavailable",
		},
		{
			name:     "unmatched",
			err:      errs.New("something odd"),
			kind:     failure.Unknown,
			category: "unknown",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			outcome := failure.Classify(tc.err)
			assert.Equal(t, tc.kind, outcome.Kind)
			assert.Equal(t, tc.category, outcome.Category)
			assert.Equal(t, tc.err.Error(), outcome.Message)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, failure.Outcome{}, failure.Classify(nil))
}

func TestPreconditionError(t *testing.T) {
	err := failure.NewPrecondition(failure.InsufficientBalance, "balance 5 is below 10")
	require.True(t, failure.Precondition.Has(err))
	assert.Equal(t, "precondition: insufficient balance: balance 5 is below 10", err.Error())

	reason, ok := failure.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, failure.InsufficientBalance, reason)

	_, ok = failure.ReasonOf(errors.New("plain"))
	assert.False(t, ok)

	assert.Equal(t, "payment in flight", (&failure.PreconditionError{Reason: failure.InFlight}).Error())
}

func TestOutcomeSummary(t *testing.T) {
	assert.Equal(t, "", failure.Classify(nil).Summary())
	assert.Equal(t, "Insufficient balance",
		failure.Classify(failure.NewPrecondition(failure.InsufficientBalance, "")).Summary())
	assert.Equal(t, "The request was declined in the wallet",
		failure.Classify(failure.SigningRejected.Wrap(wallet.Rejected("User denied"))).Summary())
	assert.Equal(t, "Payment failed: boom", failure.Classify(errors.New("boom")).Summary())
}
