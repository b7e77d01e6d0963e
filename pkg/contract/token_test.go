package contract_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/permit-payment/pkg/contract"
	"storj.io/permit-payment/pkg/ethtest"
)

var (
	ctx = context.Background()

	tokenAddress     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	processorAddress = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestTokenCaller(t *testing.T) {
	alice := ethtest.NewAccount()
	chain := ethtest.NewChain(tokenAddress, processorAddress)
	chain.SetBalance(alice.Address, big.NewInt(100_000000))
	chain.SetPermitNonce(alice.Address, big.NewInt(7))
	chain.SetTokenName("USD Coin")

	token, err := contract.NewTokenCaller(tokenAddress, chain)
	require.NoError(t, err)

	opts := &bind.CallOpts{Context: ctx}

	balance, err := token.BalanceOf(opts, alice.Address)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100_000000), balance)

	nonce, err := token.Nonces(opts, alice.Address)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), nonce)

	name, err := token.Name(opts)
	require.NoError(t, err)
	assert.Equal(t, "USD Coin", name)

	decimals, err := token.Decimals(opts)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)

	assert.Equal(t, []string{"balanceOf", "nonces", "name", "decimals"}, chain.Methods())
}

func TestProcessorCaller(t *testing.T) {
	chain := ethtest.NewChain(tokenAddress, processorAddress)
	chain.SetApprovalAmount(big.NewInt(1000))

	processor, err := contract.NewProcessorCaller(processorAddress, chain)
	require.NoError(t, err)

	amount, err := processor.GetApprovalAmount(nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), amount)

	version, err := processor.GetVersion(nil)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version)
}

func TestProcessorNoCode(t *testing.T) {
	chain := ethtest.NewChain(tokenAddress, processorAddress)

	processor, err := contract.NewProcessorCaller(common.HexToAddress("0x3333333333333333333333333333333333333333"), chain)
	require.NoError(t, err)

	_, err = processor.GetApprovalAmount(nil)
	require.ErrorIs(t, err, bind.ErrNoCode)
}

func TestMakePaymentWithPermitCalldata(t *testing.T) {
	alice := ethtest.NewAccount()
	chain := ethtest.NewChain(tokenAddress, processorAddress)

	processor, err := contract.NewProcessor(processorAddress, chain)
	require.NoError(t, err)

	auth, err := bind.NewKeyedTransactorWithChainID(alice.Key, big.NewInt(1337))
	require.NoError(t, err)
	auth.NoSend = true
	auth.GasLimit = contract.PaymentGasLimit
	auth.Context = ctx

	permitData := make([]byte, 128)
	permitData[31] = 0x01
	tx, err := processor.MakePaymentWithPermit(auth, big.NewInt(10_000000), permitData)
	require.NoError(t, err)
	assert.Equal(t, uint64(contract.PaymentGasLimit), tx.Gas())
	assert.Equal(t, processorAddress, *tx.To())
	assert.Zero(t, chain.CallCount(ethtest.MethodSendTransaction))

	parsed, err := contract.ProcessorMetaData.GetAbi()
	require.NoError(t, err)
	method, err := parsed.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	require.Equal(t, "makePaymentWithPermit", method.Name)

	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10_000000), args[0])
	assert.Equal(t, permitData, args[1])
}
