package chain_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"storj.io/common/testcontext"

	"storj.io/permit-payment/pkg/chain"
	"storj.io/permit-payment/pkg/ethtest"
	"storj.io/permit-payment/pkg/failure"
	"storj.io/permit-payment/pkg/wallet"
)

var (
	tokenAddress     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	processorAddress = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestClientWithoutWallet(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	client := chain.NewClient(zaptest.NewLogger(t), ethtest.NewChain(tokenAddress, processorAddress), nil)
	require.False(t, client.HasWallet())

	_, err := client.Connect(ctx)
	require.Error(t, err)
	assert.True(t, failure.WalletUnavailable.Has(err))

	_, err = client.CurrentAccounts(ctx)
	assert.True(t, failure.WalletUnavailable.Has(err))

	_, err = client.Transactor(ctx, common.Address{})
	assert.True(t, failure.WalletUnavailable.Has(err))
}

func TestClientAccounts(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	alice := ethtest.NewAccount()
	fake := ethtest.NewChain(tokenAddress, processorAddress)
	client := chain.NewClient(zaptest.NewLogger(t), fake, wallet.NewKeyWallet(alice.Key, nil))

	accounts, err := client.CurrentAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	account, err := client.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, alice.Address, account)

	accounts, err = client.CurrentAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{alice.Address}, accounts)

	assert.Empty(t, fake.Calls(), "account operations must not touch the node")
}

func TestClientReads(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	alice := ethtest.NewAccount()
	fake := ethtest.NewChain(tokenAddress, processorAddress)
	fake.SetBalance(alice.Address, big.NewInt(100_000000))
	fake.SetChainID(5)

	client := chain.NewClient(zaptest.NewLogger(t), fake, alice.Wallet(nil))

	balance, err := client.TokenBalance(ctx, tokenAddress, alice.Address)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100_000000), balance)

	decimals, err := client.TokenDecimals(ctx, tokenAddress)
	require.NoError(t, err)
	assert.Equal(t, int32(6), decimals)

	chainID, err := client.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), chainID)

	_, err = client.TokenBalance(ctx, common.HexToAddress("0x3333333333333333333333333333333333333333"), alice.Address)
	require.ErrorIs(t, err, bind.ErrNoCode)
}

func TestClientTransactorRejectsOtherSender(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	alice := ethtest.NewAccount()
	bob := ethtest.NewAccount()
	client := chain.NewClient(zaptest.NewLogger(t), ethtest.NewChain(tokenAddress, processorAddress), alice.Wallet(nil))

	opts, err := client.Transactor(ctx, alice.Address)
	require.NoError(t, err)

	_, err = opts.Signer(bob.Address, types.NewTx(&types.DynamicFeeTx{To: &bob.Address}))
	require.ErrorIs(t, err, bind.ErrNotAuthorized)
}

func TestClientSimulated(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	log := zaptest.NewLogger(t)
	ethtest.RouteGethLogs(t, log)

	alice := ethtest.NewAccount()
	bob := ethtest.NewAccount()

	ether, ok := new(big.Int).SetString("100000000000000000000", 10)
	require.True(t, ok)
	backend := simulated.NewBackend(types.GenesisAlloc{
		alice.Address: {Balance: ether},
	})
	defer func() { _ = backend.Close() }()
	sim := backend.Client()

	approver := ethtest.NewApprover()
	client := chain.NewClient(log, sim, alice.Wallet(approver))

	chainID, err := client.ChainID(ctx)
	require.NoError(t, err)

	auth, err := bind.NewKeyedTransactorWithChainID(alice.Key, chainID)
	require.NoError(t, err)
	supply := big.NewInt(250_000000)
	token, err := ethtest.DeployERC20(auth, sim, alice.Address, "Test Dollar", "TUSD", supply, 6)
	require.NoError(t, err)
	backend.Commit()

	balance, err := client.TokenBalance(ctx, token, alice.Address)
	require.NoError(t, err)
	assert.Equal(t, supply, balance)

	balance, err = client.TokenBalance(ctx, token, bob.Address)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())

	// Sign a plain value transfer through the wallet and wait for it.
	opts, err := client.Transactor(ctx, alice.Address)
	require.NoError(t, err)
	nonce, err := sim.PendingNonceAt(ctx, alice.Address)
	require.NoError(t, err)
	head, err := sim.HeaderByNumber(ctx, nil)
	require.NoError(t, err)
	tip, err := sim.SuggestGasTipCap(ctx)
	require.NoError(t, err)
	feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)
	tx, err := opts.Signer(alice.Address, types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       21000,
		To:        &bob.Address,
		Value:     big.NewInt(1),
	}))
	require.NoError(t, err)
	require.NoError(t, sim.SendTransaction(ctx, tx))
	backend.Commit()

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	receipt, err := client.WaitMined(waitCtx, tx)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, 1, approver.Count(wallet.TransactionRequest))

	// An unfunded sender is refused by the node's txpool.
	carol := ethtest.NewAccount()
	unfunded, err := types.SignTx(types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       21000,
		To:        &bob.Address,
		Value:     big.NewInt(1),
	}), types.LatestSignerForChainID(chainID), carol.Key)
	require.NoError(t, err)
	err = sim.SendTransaction(ctx, unfunded)
	require.Error(t, err)
	assert.Equal(t, failure.InsufficientFunds, failure.Classify(failure.Submission.Wrap(err)).Kind)
}
