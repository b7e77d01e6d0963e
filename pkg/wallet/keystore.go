package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/zeebo/errs"
)

// KeystoreWallet signs with an account from an encrypted go-ethereum
// keystore directory.
type KeystoreWallet struct {
	ks         *keystore.KeyStore
	account    accounts.Account
	passphrase string
	approver   Approver

	mu        sync.Mutex
	connected bool
}

var _ Wallet = (*KeystoreWallet)(nil)

// OpenKeystoreWallet opens the keystore in dir and selects address.
func OpenKeystoreWallet(dir string, address common.Address, passphrase string, approver Approver) (*KeystoreWallet, error) {
	ks := keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)
	return NewKeystoreWallet(ks, address, passphrase, approver)
}

func NewKeystoreWallet(ks *keystore.KeyStore, address common.Address, passphrase string, approver Approver) (*KeystoreWallet, error) {
	account, err := ks.Find(accounts.Account{Address: address})
	if err != nil {
		return nil, errs.New("account %s not found in keystore: %v", address.Hex(), err)
	}
	if approver == nil {
		approver = AutoApprove
	}
	return &KeystoreWallet{
		ks:         ks,
		account:    account,
		passphrase: passphrase,
		approver:   approver,
	}, nil
}

func (w *KeystoreWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = true
	return []common.Address{w.account.Address}, nil
}

func (w *KeystoreWallet) Accounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return nil, nil
	}
	return []common.Address{w.account.Address}, nil
}

func (w *KeystoreWallet) SignTypedData(ctx context.Context, account common.Address, data apitypes.TypedData) ([]byte, error) {
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
	sig, err := w.ks.SignHashWithPassphrase(w.account, w.passphrase, digest)
	if err != nil {
		return nil, keystoreError(err)
	}
	sig[64] += 27
	return sig, nil
}

func (w *KeystoreWallet) SignTx(ctx context.Context, account common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if err := w.checkAccount(account); err != nil {
		return nil, err
	}
	if err := w.approver.Approve(ctx, Request{Kind: TransactionRequest, Account: account, Tx: tx, ChainID: chainID}); err != nil {
		return nil, err
	}

	signed, err := w.ks.SignTxWithPassphrase(w.account, w.passphrase, tx, chainID)
	if err != nil {
		return nil, keystoreError(err)
	}
	return signed, nil
}

func (w *KeystoreWallet) checkAccount(account common.Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected || account != w.account.Address {
		return &ProviderError{Code: CodeUnauthorized, Message: "account " + account.Hex() + " is not authorized"}
	}
	return nil
}

func keystoreError(err error) error {
	if errors.Is(err, keystore.ErrDecrypt) {
		return &ProviderError{Code: CodeUnauthorized, Message: "could not unlock keystore account: " + err.Error()}
	}
	return errs.Wrap(err)
}
