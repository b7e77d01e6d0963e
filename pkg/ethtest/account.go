package ethtest

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"storj.io/permit-payment/pkg/wallet"
)

type Account struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
}

func NewAccount() *Account {
	key := NewKey()
	return &Account{
		Key:     key,
		Address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

func NewKey() *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return key
}

// Wallet returns a key wallet for the account that has already been granted
// account access.
func (acc *Account) Wallet(approver wallet.Approver) *wallet.KeyWallet {
	w := wallet.NewKeyWallet(acc.Key, approver)
	if _, err := w.RequestAccounts(context.Background()); err != nil {
		panic(err)
	}
	return w
}
