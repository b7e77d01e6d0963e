package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/manifoldco/promptui"
	"github.com/zeebo/errs"
)

type RequestKind string

const (
	TypedDataRequest   RequestKind = "typed-data"
	TransactionRequest RequestKind = "transaction"
)

// Request describes something the wallet is about to sign. Exactly one of
// TypedData and Tx is set, depending on Kind.
type Request struct {
	Kind      RequestKind
	Account   common.Address
	TypedData *apitypes.TypedData
	Tx        *types.Transaction
	ChainID   *big.Int
}

// Summary renders the request for a confirmation prompt.
func (r Request) Summary() string {
	switch r.Kind {
	case TypedDataRequest:
		if r.TypedData == nil {
			break
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Sign %s for %s (domain %q, chain %s)", r.TypedData.PrimaryType, r.Account.Hex(),
			r.TypedData.Domain.Name, chainIDString((*big.Int)(r.TypedData.Domain.ChainId)))
		for _, field := range r.TypedData.Types[r.TypedData.PrimaryType] {
			fmt.Fprintf(&b, "\n  %s: %v", field.Name, r.TypedData.Message[field.Name])
		}
		return b.String()
	case TransactionRequest:
		if r.Tx == nil || r.Tx.To() == nil {
			break
		}
		return fmt.Sprintf("Send transaction from %s to %s (chain %s, nonce %d, gas limit %d)",
			r.Account.Hex(), r.Tx.To().Hex(), chainIDString(r.ChainID), r.Tx.Nonce(), r.Tx.Gas())
	}
	return fmt.Sprintf("Sign %s request for %s", r.Kind, r.Account.Hex())
}

func chainIDString(id *big.Int) string {
	if id == nil {
		return "unknown"
	}
	return id.String()
}

// Approver decides whether a signing request goes ahead. A decline must be
// reported with Rejected so callers can tell it apart from a failure.
type Approver interface {
	Approve(ctx context.Context, req Request) error
}

type ApproverFunc func(ctx context.Context, req Request) error

func (fn ApproverFunc) Approve(ctx context.Context, req Request) error {
	return fn(ctx, req)
}

// AutoApprove approves every request.
var AutoApprove Approver = ApproverFunc(func(context.Context, Request) error { return nil })

// PromptApprover asks on the terminal before every signature.
type PromptApprover struct {
	// Stdin and Stdout default to the process terminal when nil.
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

func (p PromptApprover) Approve(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.Stdout != nil {
		_, _ = fmt.Fprintln(p.Stdout, req.Summary())
	} else {
		fmt.Println(req.Summary())
	}

	_, err := (&promptui.Prompt{
		Label:     "Approve",
		IsConfirm: true,
		Stdin:     p.Stdin,
		Stdout:    p.Stdout,
	}).Run()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, promptui.ErrAbort), errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return Rejected("User denied %s signature", req.Kind)
	default:
		return errs.Wrap(err)
	}
}
