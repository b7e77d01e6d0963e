package config

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/errs"

	"storj.io/permit-payment/pkg/wallet"
)

type Wallet struct {
	// KeyPath is a hex private key file with mode 0600.
	KeyPath Path `toml:"key_path"`

	// KeystoreDir, Account and PassphrasePath select an account from a
	// go-ethereum keystore.
	KeystoreDir    Path            `toml:"keystore_dir"`
	Account        *common.Address `toml:"account"`
	PassphrasePath Path            `toml:"passphrase_path"`

	// Confirm asks before every signature.
	Confirm bool `toml:"confirm"`
}

// Configured reports whether a wallet is configured at all.
func (c *Wallet) Configured() bool {
	return c.KeyPath != "" || c.KeystoreDir != ""
}

// NewWallet opens the configured wallet. prompt approves requests when
// Confirm is set; otherwise every request is approved. It returns a nil
// wallet if none is configured.
func (c *Wallet) NewWallet(prompt wallet.Approver) (wallet.Wallet, error) {
	approver := wallet.AutoApprove
	if c.Confirm && prompt != nil {
		approver = prompt
	}

	switch {
	case c.KeyPath != "":
		w, err := wallet.LoadKeyWallet(string(c.KeyPath), approver)
		if err != nil {
			return nil, errs.New("wallet.key_path: %v", err)
		}
		return w, nil
	case c.KeystoreDir != "":
		var passphrase string
		if c.PassphrasePath != "" {
			var err error
			passphrase, err = loadFirstLine(string(c.PassphrasePath))
			if err != nil {
				return nil, errs.New("wallet.passphrase_path: %v", err)
			}
		}
		w, err := wallet.OpenKeystoreWallet(string(c.KeystoreDir), *c.Account, passphrase, approver)
		if err != nil {
			return nil, errs.New("wallet.keystore_dir: %v", err)
		}
		return w, nil
	}
	return nil, nil
}
