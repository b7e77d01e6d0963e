package ethtest

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/zeebo/errs"

	"storj.io/permit-payment/pkg/contract"
	"storj.io/permit-payment/pkg/wallet"
)

// Method names recorded for calls that are not contract calls.
const (
	MethodChainID         = "eth_chainId"
	MethodSendTransaction = "eth_sendRawTransaction"
	MethodReceipt         = "eth_getTransactionReceipt"
)

// Call is one recorded interaction with the chain.
type Call struct {
	To     common.Address
	Method string
}

// Payment is a makePaymentWithPermit call that went through.
type Payment struct {
	Owner    common.Address
	Amount   *big.Int
	Value    *big.Int
	Nonce    *big.Int
	Deadline *big.Int
	TxHash   common.Hash
}

// Chain is an in-memory chain hosting one EIP-2612 token and one payment
// processor. The processor behaves like the deployed one: it consumes the
// permit for its quoted approval amount on behalf of the sender and then
// pulls the payment amount. The approval amount is the processor's own
// figure and does not bound the payment amount. A payment whose permit does not verify is mined
// with a failed receipt.
type Chain struct {
	token     common.Address
	processor common.Address
	tokenABI  *abi.ABI
	procABI   *abi.ABI

	mu             sync.Mutex
	chainID        *big.Int
	now            func() time.Time
	tokenName      string
	decimals       uint8
	version        string
	approvalAmount *big.Int
	balances       map[common.Address]*big.Int
	permitNonces   map[common.Address]*big.Int
	txNonces       map[common.Address]uint64
	receipts       map[common.Hash]*types.Receipt
	block          int64
	calls          []Call
	payments       []Payment
	sendErr        error
	nonceErr       error
	revertNext     bool
}

var (
	_ bind.ContractBackend = (*Chain)(nil)
	_ bind.DeployBackend   = (*Chain)(nil)
)

func NewChain(token, processor common.Address) *Chain {
	tokenABI, err := contract.TokenMetaData.GetAbi()
	if err != nil {
		panic(err)
	}
	procABI, err := contract.ProcessorMetaData.GetAbi()
	if err != nil {
		panic(err)
	}
	return &Chain{
		token:          token,
		processor:      processor,
		tokenABI:       tokenABI,
		procABI:        procABI,
		chainID:        big.NewInt(1337),
		now:            time.Now,
		tokenName:      "USD Coin",
		decimals:       6,
		version:        "1.0.0",
		approvalAmount: big.NewInt(1000),
		balances:       make(map[common.Address]*big.Int),
		permitNonces:   make(map[common.Address]*big.Int),
		txNonces:       make(map[common.Address]uint64),
		receipts:       make(map[common.Hash]*types.Receipt),
		block:          1,
	}
}

func (c *Chain) SetChainID(id int64)              { c.locked(func() { c.chainID = big.NewInt(id) }) }
func (c *Chain) SetNow(now func() time.Time)      { c.locked(func() { c.now = now }) }
func (c *Chain) SetTokenName(name string)         { c.locked(func() { c.tokenName = name }) }
func (c *Chain) SetDecimals(decimals uint8)       { c.locked(func() { c.decimals = decimals }) }
func (c *Chain) SetApprovalAmount(value *big.Int) { c.locked(func() { c.approvalAmount = value }) }

func (c *Chain) SetBalance(owner common.Address, amount *big.Int) {
	c.locked(func() { c.balances[owner] = new(big.Int).Set(amount) })
}

func (c *Chain) SetPermitNonce(owner common.Address, nonce *big.Int) {
	c.locked(func() { c.permitNonces[owner] = new(big.Int).Set(nonce) })
}

// NodeError is an error response from a JSON-RPC node, the shape ethclient
// returns it in.
type NodeError struct {
	Code    int
	Message string
}

func (e *NodeError) Error() string  { return e.Message }
func (e *NodeError) ErrorCode() int { return e.Code }

// InsufficientFunds is the node's rejection of a transaction whose sender
// cannot pay for it.
func InsufficientFunds(balance, cost *big.Int) error {
	return &NodeError{
		Code: -32000,
		Message: fmt.Sprintf("%s: balance %s, tx cost %s, overshot %s",
			core.ErrInsufficientFunds, balance, cost, new(big.Int).Sub(cost, balance)),
	}
}

// FailNextNonceLookup makes the next PendingNonceAt return err.
func (c *Chain) FailNextNonceLookup(err error) { c.locked(func() { c.nonceErr = err }) }

// FailNextSend makes the next SendTransaction return err without mining.
func (c *Chain) FailNextSend(err error) { c.locked(func() { c.sendErr = err }) }

// RevertNext makes the next mined transaction fail regardless of its
// contents.
func (c *Chain) RevertNext() { c.locked(func() { c.revertNext = true }) }

func (c *Chain) Balance(owner common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.balanceOf(owner))
}

func (c *Chain) PermitNonce(owner common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.nonceOf(owner))
}

func (c *Chain) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Methods returns the method names of the recorded calls in order.
func (c *Chain) Methods() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	methods := make([]string, 0, len(c.calls))
	for _, call := range c.calls {
		methods = append(methods, call.Method)
	}
	return methods
}

func (c *Chain) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.Method == method {
			n++
		}
	}
	return n
}

func (c *Chain) Payments() []Payment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Payment(nil), c.payments...)
}

func (c *Chain) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Method: MethodChainID})
	return new(big.Int).Set(c.chainID), nil
}

func (c *Chain) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	if account == c.token || account == c.processor {
		return []byte{0x60, 0x80}, nil
	}
	return nil, nil
}

func (c *Chain) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return c.CodeAt(ctx, account, nil)
}

func (c *Chain) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if call.To == nil || len(call.Data) < 4 {
		return nil, errs.New("invalid call")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch *call.To {
	case c.token:
		method, err := c.tokenABI.MethodById(call.Data[:4])
		if err != nil {
			return nil, errs.Wrap(err)
		}
		c.calls = append(c.calls, Call{To: c.token, Method: method.Name})
		args, err := method.Inputs.Unpack(call.Data[4:])
		if err != nil {
			return nil, errs.Wrap(err)
		}
		switch method.Name {
		case "balanceOf":
			return method.Outputs.Pack(new(big.Int).Set(c.balanceOf(args[0].(common.Address))))
		case "nonces":
			return method.Outputs.Pack(new(big.Int).Set(c.nonceOf(args[0].(common.Address))))
		case "name":
			return method.Outputs.Pack(c.tokenName)
		case "decimals":
			return method.Outputs.Pack(c.decimals)
		}
	case c.processor:
		method, err := c.procABI.MethodById(call.Data[:4])
		if err != nil {
			return nil, errs.Wrap(err)
		}
		c.calls = append(c.calls, Call{To: c.processor, Method: method.Name})
		switch method.Name {
		case "getApprovalAmount":
			return method.Outputs.Pack(new(big.Int).Set(c.approvalAmount))
		case "getVersion":
			return method.Outputs.Pack(c.version)
		}
	}
	return nil, nil
}

func (c *Chain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &types.Header{
		Number:  big.NewInt(c.block),
		Time:    uint64(c.now().Unix()),
		BaseFee: big.NewInt(1_000_000_000),
	}, nil
}

func (c *Chain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.nonceErr; err != nil {
		c.nonceErr = nil
		return 0, err
	}
	return c.txNonces[account], nil
}

func (c *Chain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (c *Chain) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (c *Chain) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return contract.PaymentGasLimit, nil
}

func (c *Chain) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (c *Chain) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errs.New("subscriptions are not supported")
}

func (c *Chain) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Method: MethodReceipt})
	receipt, ok := c.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// SendTransaction mines tx immediately.
func (c *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Method: MethodSendTransaction})

	if err := c.sendErr; err != nil {
		c.sendErr = nil
		return err
	}

	sender, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return errs.Wrap(err)
	}
	if want := c.txNonces[sender]; tx.Nonce() != want {
		return errs.New("invalid nonce: have %d, want %d", tx.Nonce(), want)
	}
	c.txNonces[sender]++
	c.block++

	status := types.ReceiptStatusSuccessful
	if err := c.execute(sender, tx); err != nil {
		status = types.ReceiptStatusFailed
	}
	c.receipts[tx.Hash()] = &types.Receipt{
		Type:        tx.Type(),
		Status:      status,
		TxHash:      tx.Hash(),
		GasUsed:     tx.Gas() / 2,
		BlockNumber: big.NewInt(c.block),
	}
	return nil
}

func (c *Chain) execute(sender common.Address, tx *types.Transaction) error {
	if c.revertNext {
		c.revertNext = false
		return errs.New("reverted")
	}
	if tx.To() == nil || *tx.To() != c.processor || len(tx.Data()) < 4 {
		return errs.New("not a processor call")
	}
	method, err := c.procABI.MethodById(tx.Data()[:4])
	if err != nil || method.Name != "makePaymentWithPermit" {
		return errs.New("unsupported method")
	}
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		return errs.Wrap(err)
	}
	amount := args[0].(*big.Int)
	permitData := args[1].([]byte)

	deadline, sig, err := decodePermit(permitData)
	if err != nil {
		return err
	}
	if deadline.Cmp(big.NewInt(c.now().Unix())) < 0 {
		return errs.New("permit expired")
	}

	nonce := c.nonceOf(sender)
	signer, err := wallet.RecoverTypedDataSigner(c.permitTypedData(sender, nonce, deadline), sig)
	if err != nil {
		return err
	}
	if signer != sender {
		return errs.New("invalid permit signature")
	}
	balance := c.balanceOf(sender)
	if balance.Cmp(amount) < 0 {
		return errs.New("transfer amount exceeds balance")
	}

	c.permitNonces[sender] = new(big.Int).Add(nonce, big.NewInt(1))
	c.balances[sender] = new(big.Int).Sub(balance, amount)
	c.balances[c.processor] = new(big.Int).Add(c.balanceOf(c.processor), amount)
	c.payments = append(c.payments, Payment{
		Owner:    sender,
		Amount:   new(big.Int).Set(amount),
		Value:    new(big.Int).Set(c.approvalAmount),
		Nonce:    nonce,
		Deadline: deadline,
		TxHash:   tx.Hash(),
	})
	return nil
}

func (c *Chain) permitTypedData(owner common.Address, nonce, deadline *big.Int) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Permit": {
				{Name: "owner", Type: "address"},
				{Name: "spender", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "deadline", Type: "uint256"},
			},
		},
		PrimaryType: "Permit",
		Domain: apitypes.TypedDataDomain{
			Name:              c.tokenName,
			Version:           "1",
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).Set(c.chainID)),
			VerifyingContract: c.token.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"owner":    owner.Hex(),
			"spender":  c.processor.Hex(),
			"value":    new(big.Int).Set(c.approvalAmount),
			"nonce":    nonce,
			"deadline": deadline,
		},
	}
}

func decodePermit(data []byte) (*big.Int, []byte, error) {
	uint256Type, _ := abi.NewType("uint256", "", nil)
	uint8Type, _ := abi.NewType("uint8", "", nil)
	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	values, err := abi.Arguments{
		{Type: uint256Type},
		{Type: uint8Type},
		{Type: bytes32Type},
		{Type: bytes32Type},
	}.Unpack(data)
	if err != nil {
		return nil, nil, errs.Wrap(err)
	}
	r := values[2].([32]byte)
	s := values[3].([32]byte)
	sig := make([]byte, 0, 65)
	sig = append(sig, r[:]...)
	sig = append(sig, s[:]...)
	sig = append(sig, values[1].(uint8))
	return values[0].(*big.Int), sig, nil
}

func (c *Chain) balanceOf(owner common.Address) *big.Int {
	if balance, ok := c.balances[owner]; ok {
		return balance
	}
	return new(big.Int)
}

func (c *Chain) nonceOf(owner common.Address) *big.Int {
	if nonce, ok := c.permitNonces[owner]; ok {
		return nonce
	}
	return new(big.Int)
}

func (c *Chain) locked(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}
