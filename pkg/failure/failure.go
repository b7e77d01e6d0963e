// Package failure defines the error categories raised along the payment path
// and maps any error to a user-facing outcome.
package failure

import (
	"errors"
	"fmt"

	"github.com/zeebo/errs"
)

var (
	// ConfigLoad is raised when the contract addresses cannot be loaded.
	ConfigLoad = errs.Class("contract configuration")

	// WalletUnavailable is raised when there is no wallet to talk to.
	WalletUnavailable = errs.Class("wallet unavailable")

	// Precondition is raised before anything is signed or sent. The wrapped
	// error is always a *PreconditionError.
	Precondition = errs.Class("precondition")

	// SigningRejected is raised when the user declines to sign. Nothing has
	// been sent at that point.
	SigningRejected = errs.Class("signing rejected")

	// Preparation is raised when the payment transaction cannot be built,
	// for instance when the nonce or fee lookup fails. Nothing was sent.
	Preparation = errs.Class("transaction preparation")

	// Submission is raised when the node refuses the payment transaction.
	// The permit may already be consumed.
	Submission = errs.Class("submission")

	// Confirmation is raised when the payment transaction was mined but
	// reverted, or its receipt could not be obtained.
	Confirmation = errs.Class("confirmation")
)

type Reason string

const (
	InvalidAmount       Reason = "invalid amount"
	InsufficientBalance Reason = "insufficient balance"
	ContractsUnloaded   Reason = "contract info missing"
	NoWallet            Reason = "no wallet"
	NotConnected        Reason = "no connected account"
	InFlight            Reason = "payment in flight"
	DecimalsMismatch    Reason = "token decimals mismatch"
)

// PreconditionError explains why a payment was refused before signing.
type PreconditionError struct {
	Reason Reason
	Detail string
}

func (e *PreconditionError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// NewPrecondition returns a Precondition class error for reason.
func NewPrecondition(reason Reason, format string, args ...any) error {
	return Precondition.Wrap(&PreconditionError{
		Reason: reason,
		Detail: fmt.Sprintf(format, args...),
	})
}

// ReasonOf returns the precondition reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Reason, true
	}
	return "", false
}
