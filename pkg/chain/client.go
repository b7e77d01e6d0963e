// Package chain is the facade over the wallet and the node that the payment
// flow talks to.
package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/zeebo/errs/v2"
	"go.uber.org/zap"

	"storj.io/permit-payment/pkg/contract"
	"storj.io/permit-payment/pkg/failure"
	"storj.io/permit-payment/pkg/wallet"
)

// Backend is the node connection. *ethclient.Client, the simulated backend
// client and ethtest.Chain all satisfy it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Client reads chain state and routes account and signing requests to the
// wallet. It keeps no state of its own; callers own every returned value.
type Client struct {
	log     *zap.Logger
	backend Backend
	wallet  wallet.Wallet
}

// NewClient returns a client. w may be nil when no wallet is available, in
// which case account operations fail with failure.WalletUnavailable.
func NewClient(log *zap.Logger, backend Backend, w wallet.Wallet) *Client {
	return &Client{
		log:     log,
		backend: backend,
		wallet:  w,
	}
}

func (c *Client) Backend() Backend {
	return c.backend
}

func (c *Client) Wallet() wallet.Wallet {
	return c.wallet
}

func (c *Client) HasWallet() bool {
	return c.wallet != nil
}

// Connect requests account access from the wallet and returns the first
// account.
func (c *Client) Connect(ctx context.Context) (common.Address, error) {
	if c.wallet == nil {
		return common.Address{}, failure.WalletUnavailable.New("no wallet configured")
	}
	accounts, err := c.wallet.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, failure.WalletUnavailable.New("wallet returned no accounts")
	}
	c.log.Debug("Wallet connected", zap.Stringer("account", accounts[0]))
	return accounts[0], nil
}

// CurrentAccounts returns the accounts the wallet has already authorized,
// without prompting.
func (c *Client) CurrentAccounts(ctx context.Context) ([]common.Address, error) {
	if c.wallet == nil {
		return nil, failure.WalletUnavailable.New("no wallet configured")
	}
	return c.wallet.Accounts(ctx)
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return chainID, nil
}

// TokenBalance returns the smallest-unit token balance of owner.
func (c *Client) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	caller, err := contract.NewTokenCaller(token, c.backend)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	balance, err := caller.BalanceOf(c.callOpts(ctx), owner)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return balance, nil
}

func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (int32, error) {
	caller, err := contract.NewTokenCaller(token, c.backend)
	if err != nil {
		return 0, errs.Wrap(err)
	}
	decimals, err := caller.Decimals(c.callOpts(ctx))
	if err != nil {
		return 0, errs.Wrap(err)
	}
	return int32(decimals), nil
}

// Transactor returns transaction options for from whose signer is the
// wallet. Each signature goes through the wallet's approval.
func (c *Client) Transactor(ctx context.Context, from common.Address) (*bind.TransactOpts, error) {
	if c.wallet == nil {
		return nil, failure.WalletUnavailable.New("no wallet configured")
	}
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return &bind.TransactOpts{
		From:    from,
		Context: ctx,
		Signer: func(address common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if address != from {
				return nil, bind.ErrNotAuthorized
			}
			return c.wallet.SignTx(ctx, address, tx, chainID)
		},
	}, nil
}

// WaitMined blocks until tx has a receipt, polling every second.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	start := time.Now()
	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	c.log.Debug("Transaction mined",
		zap.Stringer("hash", tx.Hash()),
		zap.Uint64("status", receipt.Status),
		zap.Duration("waited", time.Since(start)),
	)
	return receipt, nil
}

func (c *Client) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{
		Pending: false,
		Context: ctx,
	}
}
