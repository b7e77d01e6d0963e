// Package payment runs a permit payment from validation to confirmation.
package payment

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/permit-payment/pkg/chain"
	"storj.io/permit-payment/pkg/contract"
	"storj.io/permit-payment/pkg/directory"
	"storj.io/permit-payment/pkg/failure"
	"storj.io/permit-payment/pkg/journal"
	"storj.io/permit-payment/pkg/permit"
	"storj.io/permit-payment/pkg/token"
	"storj.io/permit-payment/pkg/wallet"
)

type Config struct {
	// Log is the logger for payment progress.
	Log *zap.Logger

	// Decimals is the number of decimals of the token. Defaults to
	// token.DefaultDecimals.
	Decimals int32

	// VerifyDecimals, if true, reads decimals() from the token before each
	// payment and refuses to pay if it differs from Decimals.
	VerifyDecimals bool

	// GasLimit is the gas limit of the payment transaction. Defaults to
	// contract.PaymentGasLimit.
	GasLimit uint64

	// PermitWindow is how long a signed permit stays valid. Defaults to
	// permit.DefaultWindow.
	PermitWindow time.Duration

	// ConfirmTimeout bounds the wait for the receipt. Zero waits for as long
	// as the context allows.
	ConfirmTimeout time.Duration

	// ExplorerURL is the block explorer transaction URL prefix. Defaults to
	// DefaultExplorerURL.
	ExplorerURL string

	// Journal, if set, records every attempt that passes validation.
	Journal *journal.DB

	// Observer, if set, is told about every phase change.
	Observer Observer

	// Now defaults to time.Now.
	Now func() time.Time
}

// Orchestrator owns the payment session. Only one payment can be in flight
// at a time; Pay refuses to start while another attempt is not Idle.
type Orchestrator struct {
	log            *zap.Logger
	client         *chain.Client
	directory      *directory.Directory
	signer         *permit.Signer
	decimals       int32
	verifyDecimals bool
	gasLimit       uint64
	confirmTimeout time.Duration
	explorerURL    string
	journal        *journal.DB
	observer       Observer

	mu      sync.Mutex
	session Session
}

func New(client *chain.Client, dir *directory.Directory, config Config) (*Orchestrator, error) {
	switch {
	case config.Log == nil:
		return nil, errs.New("log is required")
	case client == nil:
		return nil, errs.New("chain client is required")
	case dir == nil:
		return nil, errs.New("directory is required")
	case config.Decimals < 0:
		return nil, errs.New("decimals must not be negative")
	}
	if config.Decimals == 0 {
		config.Decimals = token.DefaultDecimals
	}
	if config.GasLimit == 0 {
		config.GasLimit = contract.PaymentGasLimit
	}
	if config.ExplorerURL == "" {
		config.ExplorerURL = DefaultExplorerURL
	}

	return &Orchestrator{
		log:       config.Log,
		client:    client,
		directory: dir,
		signer: permit.NewSigner(config.Log.Named("permit"), client.Backend(), client.Wallet(), permit.Config{
			Window: config.PermitWindow,
			Now:    config.Now,
		}),
		decimals:       config.Decimals,
		verifyDecimals: config.VerifyDecimals,
		gasLimit:       config.GasLimit,
		confirmTimeout: config.ConfirmTimeout,
		explorerURL:    config.ExplorerURL,
		journal:        config.Journal,
		observer:       config.Observer,
	}, nil
}

// Decimals returns the token decimals amounts are parsed with.
func (o *Orchestrator) Decimals() int32 {
	return o.decimals
}

// Session returns a snapshot of the session.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.session.clone()
	if info, ok := o.directory.Info(); ok {
		s.Contracts = info
	}
	return s
}

// Reload retries loading the contract addresses if they are not loaded yet.
func (o *Orchestrator) Reload(ctx context.Context) error {
	return o.directory.Load(ctx)
}

// Connect requests account access from the wallet, remembers the first
// account and reads its balance if the contracts are loaded.
func (o *Orchestrator) Connect(ctx context.Context) (Session, error) {
	account, err := o.client.Connect(ctx)
	if err != nil {
		return Session{}, err
	}

	o.mu.Lock()
	if o.session.Account != account {
		o.session.Account = account
		o.session.Balance = nil
	}
	o.mu.Unlock()

	o.log.Info("Account connected", zap.Stringer("account", account))

	if _, ok := o.directory.Info(); ok {
		if _, err := o.RefreshBalance(ctx); err != nil {
			return o.Session(), err
		}
	}
	return o.Session(), nil
}

// RefreshBalance reads the token balance of the connected account.
func (o *Orchestrator) RefreshBalance(ctx context.Context) (*big.Int, error) {
	info, ok := o.directory.Info()
	if !ok {
		return nil, o.contractsUnloaded()
	}
	o.mu.Lock()
	account := o.session.Account
	o.mu.Unlock()
	if account == (common.Address{}) {
		return nil, failure.NewPrecondition(failure.NotConnected, "")
	}

	balance, err := o.client.TokenBalance(ctx, info.Token, account)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.session.Account == account {
		o.session.Balance = new(big.Int).Set(balance)
	}
	o.mu.Unlock()

	o.log.Debug("Balance refreshed",
		zap.Stringer("account", account),
		zap.String("balance", token.Format(balance, o.decimals)),
	)
	return balance, nil
}

// Pay pays amount, given in token units, to the processor. It validates the
// request, signs a permit for the processor's approval amount, submits the
// payment and waits for its receipt. The session returns to Idle on every
// exit.
func (o *Orchestrator) Pay(ctx context.Context, amount string) (_ *Receipt, err error) {
	if err := o.begin(); err != nil {
		return nil, err
	}

	var attempt *journal.Attempt
	defer func() {
		o.finish(ctx, attempt, err)
	}()

	req, err := o.validate(ctx, amount)
	if err != nil {
		return nil, err
	}

	attempt = &journal.Attempt{
		Account:   req.account,
		Processor: req.contracts.Processor,
		Amount:    req.amount,
		State:     journal.Aborted,
	}
	o.record(ctx, attempt)

	o.transition(Authorizing)
	auth, err := o.signer.Authorize(ctx, req.account, req.contracts)
	if err != nil {
		return nil, err
	}
	attempt.Approval = auth.Message.Value
	attempt.Nonce = auth.Message.Nonce
	attempt.Deadline = auth.Message.Deadline.Int64()

	o.transition(Submitting)
	tx, err := o.submit(ctx, req, auth)
	if err != nil {
		return nil, err
	}
	attempt.TxHash = tx.Hash()
	attempt.State = journal.Pending
	o.record(ctx, attempt)

	link := ExplorerLink(o.explorerURL, tx.Hash())
	o.log.Info("Payment submitted",
		zap.Stringer("hash", tx.Hash()),
		zap.String("link", link),
	)

	o.transition(Confirming)
	mined, err := o.confirm(ctx, tx)
	if mined != nil {
		attempt.State = journal.StateFromReceipt(mined)
	}
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		TxHash:      tx.Hash(),
		ExplorerURL: link,
		BlockNumber: mined.BlockNumber,
		GasUsed:     mined.GasUsed,
		Amount:      req.amount,
		Approval:    auth.Message.Value,
		Nonce:       auth.Message.Nonce,
		Deadline:    auth.Message.Deadline,
	}

	if _, err := o.RefreshBalance(ctx); err != nil {
		o.log.Warn("Failed to refresh balance after payment", zap.Error(err))
	}
	o.mu.Lock()
	o.session.PendingAmount = nil
	o.mu.Unlock()

	o.log.Info("Payment confirmed", zap.Object("receipt", receipt))
	return receipt, nil
}

type request struct {
	contracts *directory.ContractInfo
	account   common.Address
	amount    *big.Int
}

// validate checks that a payment of amount can be attempted. The checks run
// in a fixed order and stop at the first failure. Nothing is signed or sent.
func (o *Orchestrator) validate(ctx context.Context, amount string) (*request, error) {
	info, ok := o.directory.Info()
	if !ok {
		return nil, o.contractsUnloaded()
	}
	if !o.client.HasWallet() {
		return nil, failure.NewPrecondition(failure.NoWallet, "")
	}

	units, err := token.ParseAmount(amount, o.decimals)
	if err != nil {
		return nil, failure.NewPrecondition(failure.InvalidAmount, "%v", err)
	}

	account, err := o.account(ctx)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.session.PendingAmount = new(big.Int).Set(units)
	o.mu.Unlock()

	if o.verifyDecimals {
		decimals, err := o.client.TokenDecimals(ctx, info.Token)
		if err != nil {
			return nil, err
		}
		if decimals != o.decimals {
			return nil, failure.NewPrecondition(failure.DecimalsMismatch,
				"token has %d decimals, configured for %d", decimals, o.decimals)
		}
	}

	balance, err := o.RefreshBalance(ctx)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(units) < 0 {
		return nil, failure.NewPrecondition(failure.InsufficientBalance, "balance %s is below %s",
			token.Format(balance, o.decimals), token.Format(units, o.decimals))
	}

	return &request{
		contracts: info,
		account:   account,
		amount:    units,
	}, nil
}

// account returns the connected account. If none has been connected yet it
// falls back to an account the wallet has already authorized, without
// prompting.
func (o *Orchestrator) account(ctx context.Context) (common.Address, error) {
	o.mu.Lock()
	account := o.session.Account
	o.mu.Unlock()
	if account != (common.Address{}) {
		return account, nil
	}

	accounts, err := o.client.CurrentAccounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, failure.NewPrecondition(failure.NotConnected, "")
	}

	o.mu.Lock()
	o.session.Account = accounts[0]
	o.mu.Unlock()
	return accounts[0], nil
}

func (o *Orchestrator) submit(ctx context.Context, req *request, auth *permit.Authorization) (*types.Transaction, error) {
	opts, err := o.client.Transactor(ctx, req.account)
	if err != nil {
		if failure.WalletUnavailable.Has(err) {
			return nil, err
		}
		return nil, failure.Preparation.Wrap(err)
	}
	opts.GasLimit = o.gasLimit
	// Build and sign only; the send below is the one step the node can refuse.
	opts.NoSend = true

	processor, err := contract.NewProcessor(req.contracts.Processor, o.client.Backend())
	if err != nil {
		return nil, failure.Preparation.Wrap(err)
	}

	tx, err := processor.MakePaymentWithPermit(opts, req.amount, auth.Payload)
	switch {
	case err == nil:
	case wallet.IsRejected(err):
		return nil, failure.SigningRejected.Wrap(err)
	default:
		return nil, failure.Preparation.Wrap(err)
	}

	if err := o.client.Backend().SendTransaction(ctx, tx); err != nil {
		return nil, failure.Submission.Wrap(err)
	}
	return tx, nil
}

func (o *Orchestrator) confirm(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if o.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.confirmTimeout)
		defer cancel()
	}

	receipt, err := o.client.WaitMined(ctx, tx)
	if err != nil {
		return nil, failure.Confirmation.Wrap(err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, failure.Confirmation.New("transaction %s reverted in block %s", tx.Hash().Hex(), receipt.BlockNumber)
	}
	return receipt, nil
}

// begin moves the session from Idle to Validating or refuses if another
// attempt is in flight.
func (o *Orchestrator) begin() error {
	o.mu.Lock()
	if phase := o.session.Phase; phase != Idle {
		o.mu.Unlock()
		return failure.NewPrecondition(failure.InFlight, "session is %s", phase)
	}
	o.session.Phase = Validating
	o.mu.Unlock()

	o.notify(Idle, Validating)
	return nil
}

func (o *Orchestrator) finish(ctx context.Context, attempt *journal.Attempt, err error) {
	final := Completed
	if err != nil {
		final = Failed
		outcome := failure.Classify(err)
		o.log.Info("Payment failed",
			zap.String("kind", string(outcome.Kind)),
			zap.String("category", outcome.Category),
			zap.Error(err),
		)
		if attempt != nil {
			if failure.Submission.Has(err) {
				attempt.State = journal.Failed
			}
			attempt.Outcome = string(outcome.Kind)
			attempt.Message = outcome.Message
		}
	}
	if attempt != nil {
		// The attempt is recorded even if ctx was what failed it.
		o.record(context.WithoutCancel(ctx), attempt)
	}

	o.transition(final)
	o.transition(Idle)
}

func (o *Orchestrator) transition(to Phase) {
	o.mu.Lock()
	from := o.session.Phase
	o.session.Phase = to
	o.mu.Unlock()

	o.log.Debug("Phase changed", zap.Stringer("from", from), zap.Stringer("to", to))
	o.notify(from, to)
}

func (o *Orchestrator) notify(from, to Phase) {
	if o.observer != nil {
		o.observer(from, to)
	}
}

func (o *Orchestrator) record(ctx context.Context, attempt *journal.Attempt) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Record(ctx, attempt); err != nil {
		o.log.Error("Failed to record payment attempt", zap.Int64("id", attempt.ID), zap.Error(err))
	}
}

func (o *Orchestrator) contractsUnloaded() error {
	if err := o.directory.Err(); err != nil {
		return failure.NewPrecondition(failure.ContractsUnloaded, "%v", err)
	}
	return failure.NewPrecondition(failure.ContractsUnloaded, "")
}

// IsInFlight reports whether err is the refusal to start a second payment.
func IsInFlight(err error) bool {
	reason, ok := failure.ReasonOf(err)
	return ok && reason == failure.InFlight
}
