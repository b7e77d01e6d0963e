package failure

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/zeebo/errs"

	"storj.io/permit-payment/pkg/wallet"
)

type Kind string

const (
	UserRejected         Kind = "user-rejected"
	InsufficientFunds    Kind = "insufficient-funds"
	ContractInfoUnloaded Kind = "contract-info-unloaded"
	InvalidParameters    Kind = "invalid-parameters"
	Unknown              Kind = "unknown"
)

// Outcome is what the user is told about a failed payment.
type Outcome struct {
	Kind Kind

	// Category names the class the error was raised with, or "unknown".
	Category string

	// Message is the original error text.
	Message string
}

var categories = []*errs.Class{
	&ConfigLoad,
	&WalletUnavailable,
	&Precondition,
	&SigningRejected,
	&Preparation,
	&Submission,
	&Confirmation,
}

// Classify maps err to an Outcome. A nil error yields the zero Outcome.
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{}
	}
	return Outcome{
		Kind:     kindOf(err),
		Category: categoryOf(err),
		Message:  err.Error(),
	}
}

func categoryOf(err error) string {
	for _, class := range categories {
		if class.Has(err) {
			return string(*class)
		}
	}
	return string(Unknown)
}

func kindOf(err error) Kind {
	if reason, ok := ReasonOf(err); ok {
		switch reason {
		case InvalidAmount:
			return InvalidParameters
		case InsufficientBalance:
			return InsufficientFunds
		case ContractsUnloaded:
			return ContractInfoUnloaded
		}
	}

	switch {
	case ConfigLoad.Has(err):
		return ContractInfoUnloaded
	case SigningRejected.Has(err):
		return UserRejected
	case errors.Is(err, core.ErrInsufficientFunds):
		return InsufficientFunds
	}

	var codeErr rpc.Error
	if errors.As(err, &codeErr) {
		switch codeErr.ErrorCode() {
		case wallet.CodeUserRejected, wallet.CodeUnauthorized:
			return UserRejected
		case wallet.CodeInvalidParams:
			return InvalidParameters
		}
		// nodes report the txpool and state transition sentinels by message
		if strings.HasPrefix(codeErr.Error(), core.ErrInsufficientFunds.Error()) {
			return InsufficientFunds
		}
	}

	return Unknown
}

// Summary is the sentence shown to the user for the outcome.
func (o Outcome) Summary() string {
	switch o.Kind {
	case UserRejected:
		return "The request was declined in the wallet"
	case InsufficientFunds:
		return "Insufficient balance"
	case ContractInfoUnloaded:
		return "Contract information is not loaded; reload it and try again"
	case InvalidParameters:
		return "Invalid parameters; check the amount and the contract configuration"
	case "":
		return ""
	}
	return "Payment failed: " + o.Message
}
