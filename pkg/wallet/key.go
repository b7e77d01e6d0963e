package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"io/fs"
	"math/big"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/zeebo/errs"
)

// KeyWallet signs with a raw secp256k1 key held in memory.
type KeyWallet struct {
	key      *ecdsa.PrivateKey
	address  common.Address
	approver Approver

	mu        sync.Mutex
	connected bool
}

var _ Wallet = (*KeyWallet)(nil)

func NewKeyWallet(key *ecdsa.PrivateKey, approver Approver) *KeyWallet {
	if approver == nil {
		approver = AutoApprove
	}
	return &KeyWallet{
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		approver: approver,
	}
}

// LoadKeyWallet loads a hex encoded key file. The file must not be readable
// by anyone but the owner.
func LoadKeyWallet(path string, approver Approver) (*KeyWallet, error) {
	key, err := LoadKey(path)
	if err != nil {
		return nil, err
	}
	return NewKeyWallet(key, approver), nil
}

func LoadKey(path string) (*ecdsa.PrivateKey, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.New("key file %s not found", path)
		}
		return nil, errs.New("unable to stat key file: %v", err)
	}

	if (fi.Mode() & 0177) != 0 {
		return nil, errs.New("%s mode %#o is too permissive (set to 0600)", path, fi.Mode())
	}

	key, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, errs.New("unable to load key: %v", err)
	}
	return key, nil
}

func (w *KeyWallet) Address() common.Address {
	return w.address
}

func (w *KeyWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = true
	return []common.Address{w.address}, nil
}

func (w *KeyWallet) Accounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return nil, nil
	}
	return []common.Address{w.address}, nil
}

func (w *KeyWallet) SignTypedData(ctx context.Context, account common.Address, data apitypes.TypedData) ([]byte, error) {
	if err := w.checkAccount(account); err != nil {
		return nil, err
	}
	if err := w.approver.Approve(ctx, Request{Kind: TypedDataRequest, Account: account, TypedData: &data}); err != nil {
		return nil, err
	}

	digest, err := TypedDataHash(data)
	if err != nil {
		return nil, &ProviderError{Code: CodeInvalidParams, Message: err.Error()}
	}
	sig, err := crypto.Sign(digest, w.key)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	sig[64] += 27
	return sig, nil
}

func (w *KeyWallet) SignTx(ctx context.Context, account common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if err := w.checkAccount(account); err != nil {
		return nil, err
	}
	if err := w.approver.Approve(ctx, Request{Kind: TransactionRequest, Account: account, Tx: tx, ChainID: chainID}); err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return signed, nil
}

func (w *KeyWallet) checkAccount(account common.Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected || account != w.address {
		return &ProviderError{Code: CodeUnauthorized, Message: "account " + account.Hex() + " is not authorized"}
	}
	return nil
}
