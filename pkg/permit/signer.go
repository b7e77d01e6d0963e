package permit

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/permit-payment/pkg/contract"
	"storj.io/permit-payment/pkg/directory"
	"storj.io/permit-payment/pkg/failure"
	"storj.io/permit-payment/pkg/wallet"
)

// DefaultWindow is how long a permit stays valid after signing.
const DefaultWindow = time.Hour

// Backend is what the signer reads from the chain.
type Backend interface {
	bind.ContractCaller
	ChainID(ctx context.Context) (*big.Int, error)
}

type Config struct {
	// Window is added to the signing time to form the deadline. Defaults to
	// DefaultWindow.
	Window time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Signer produces permits for the payment processor.
type Signer struct {
	log     *zap.Logger
	backend Backend
	wallet  wallet.Wallet
	window  time.Duration
	now     func() time.Time
}

func NewSigner(log *zap.Logger, backend Backend, w wallet.Wallet, config Config) *Signer {
	if config.Window <= 0 {
		config.Window = DefaultWindow
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Signer{
		log:     log,
		backend: backend,
		wallet:  w,
		window:  config.Window,
		now:     config.Now,
	}
}

// Authorization is a signed permit ready to be submitted.
type Authorization struct {
	Domain    apitypes.TypedDataDomain
	Message   Message
	Signature Signature
	Payload   Payload
}

// Authorize signs a permit letting the processor spend the amount it quotes
// from owner. It reads, in order, the approval amount, the owner's nonce,
// the token name and the chain id, then asks the wallet to sign. None of the
// values are cached between calls.
func (s *Signer) Authorize(ctx context.Context, owner common.Address, info *directory.ContractInfo) (*Authorization, error) {
	if info == nil {
		return nil, failure.NewPrecondition(failure.ContractsUnloaded, "")
	}

	value, err := s.QuoteApprovalAmount(ctx, info.Processor)
	if err != nil {
		return nil, err
	}
	nonce, err := s.FetchNonce(ctx, info.Token, owner)
	if err != nil {
		return nil, err
	}
	name, err := s.TokenName(ctx, info.Token)
	if err != nil {
		return nil, err
	}
	chainID, err := s.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	now := s.now()
	deadline := big.NewInt(now.Add(s.window).Unix())
	if deadline.Int64() <= now.Unix() {
		return nil, errs.New("permit deadline %d is not in the future", deadline)
	}

	msg := Message{
		Owner:    owner,
		Spender:  info.Processor,
		Value:    value,
		Nonce:    nonce,
		Deadline: deadline,
	}
	domain := BuildDomain(name, chainID, info.Token)

	raw, err := s.RequestSignature(ctx, owner, TypedData(domain, msg))
	if err != nil {
		return nil, err
	}
	sig, err := SplitSignature(raw)
	if err != nil {
		return nil, err
	}
	payload, err := EncodePayload(deadline, sig)
	if err != nil {
		return nil, err
	}

	s.log.Debug("Permit signed",
		zap.Stringer("owner", owner),
		zap.Stringer("spender", info.Processor),
		zap.Stringer("value", value),
		zap.Stringer("nonce", nonce),
		zap.Stringer("deadline", deadline),
	)

	return &Authorization{
		Domain:    domain,
		Message:   msg,
		Signature: sig,
		Payload:   payload,
	}, nil
}

// QuoteApprovalAmount returns the amount the processor asks to be approved.
func (s *Signer) QuoteApprovalAmount(ctx context.Context, processor common.Address) (*big.Int, error) {
	caller, err := contract.NewProcessorCaller(processor, s.backend)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	value, err := caller.GetApprovalAmount(&bind.CallOpts{Context: ctx})
	if err != nil {
		return nil, fmt.Errorf("failed to quote approval amount: %w", err)
	}
	if value.Sign() <= 0 {
		return nil, errs.New("processor quoted a non-positive approval amount %s", value)
	}
	return value, nil
}

// FetchNonce returns the current permit nonce of owner.
func (s *Signer) FetchNonce(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	caller, err := contract.NewTokenCaller(token, s.backend)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	nonce, err := caller.Nonces(&bind.CallOpts{Context: ctx}, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permit nonce: %w", err)
	}
	return nonce, nil
}

func (s *Signer) TokenName(ctx context.Context, token common.Address) (string, error) {
	caller, err := contract.NewTokenCaller(token, s.backend)
	if err != nil {
		return "", errs.Wrap(err)
	}
	name, err := caller.Name(&bind.CallOpts{Context: ctx})
	if err != nil {
		return "", fmt.Errorf("failed to read token name: %w", err)
	}
	return name, nil
}

// RequestSignature asks the wallet to sign data as owner. A decline is
// reported as failure.SigningRejected.
func (s *Signer) RequestSignature(ctx context.Context, owner common.Address, data apitypes.TypedData) ([]byte, error) {
	if s.wallet == nil {
		return nil, failure.WalletUnavailable.New("no wallet configured")
	}
	raw, err := s.wallet.SignTypedData(ctx, owner, data)
	switch {
	case err == nil:
		return raw, nil
	case wallet.IsRejected(err):
		s.log.Info("Permit signature declined", zap.Stringer("owner", owner))
		return nil, failure.SigningRejected.Wrap(err)
	default:
		return nil, errs.Wrap(err)
	}
}
