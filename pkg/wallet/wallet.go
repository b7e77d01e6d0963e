// Package wallet provides the account-holding side of a payment: account
// access, EIP-712 typed data signing and transaction signing.
package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/zeebo/errs"
)

// Wallet is the boundary to whatever holds the user's keys. Methods mirror
// the browser wallet calls of the same purpose (eth_requestAccounts,
// eth_accounts, eth_signTypedData_v4, eth_signTransaction). Refusals are
// reported as *ProviderError values.
type Wallet interface {
	// RequestAccounts asks for access to the wallet accounts. Once granted,
	// Accounts returns the same list.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// Accounts returns the accounts already authorized without prompting.
	// It returns an empty list if access has not been granted.
	Accounts(ctx context.Context) ([]common.Address, error)

	// SignTypedData signs the EIP-712 digest of data with the given account.
	// The returned signature is 65 bytes with v in {27, 28}.
	SignTypedData(ctx context.Context, account common.Address, data apitypes.TypedData) ([]byte, error)

	// SignTx signs tx for the given chain with the given account.
	SignTx(ctx context.Context, account common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// TypedDataHash returns the EIP-712 digest of data:
// keccak256(0x19 0x01 || domainSeparator || hashStruct(message)).
func TypedDataHash(data apitypes.TypedData) ([]byte, error) {
	domainSeparator, err := data.HashStruct("EIP712Domain", data.Domain.Map())
	if err != nil {
		return nil, errs.New("failed to hash domain: %v", err)
	}
	messageHash, err := data.HashStruct(data.PrimaryType, data.Message)
	if err != nil {
		return nil, errs.New("failed to hash %s message: %v", data.PrimaryType, err)
	}

	raw := make([]byte, 0, 2+len(domainSeparator)+len(messageHash))
	raw = append(raw, 0x19, 0x01)
	raw = append(raw, domainSeparator...)
	raw = append(raw, messageHash...)
	return crypto.Keccak256(raw), nil
}

// RecoverTypedDataSigner returns the address that produced sig over the
// EIP-712 digest of data. The signature must be 65 bytes with v in
// {0, 1, 27, 28}.
func RecoverTypedDataSigner(data apitypes.TypedData, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errs.New("invalid signature length %d", len(sig))
	}
	digest, err := TypedDataHash(data)
	if err != nil {
		return common.Address{}, err
	}

	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pub, err := crypto.SigToPub(digest, normalized)
	if err != nil {
		return common.Address{}, errs.Wrap(err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
