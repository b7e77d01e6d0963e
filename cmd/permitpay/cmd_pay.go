package main

import (
	"context"
	"fmt"

	"github.com/zeebo/clingy"
	"go.uber.org/zap"

	"storj.io/permit-payment/pkg/fancy"
	"storj.io/permit-payment/pkg/payment"
	"storj.io/permit-payment/pkg/token"
)

type cmdPay struct {
	config           string
	dataDir          string
	skipConfirmation bool
	amount           string
}

func (cmd *cmdPay) Setup(params clingy.Parameters) {
	cmd.config = stringFlag(params, "config", "The configuration file", "./config.toml")
	cmd.dataDir = stringFlag(params, "data-dir", "Where to write the payment logs", ".")
	cmd.skipConfirmation = toggleFlag(params, "skip-confirmation", "Pay and sign without asking for confirmation", false)
	cmd.amount = stringArg(params, "amount", "The amount to pay in whole tokens (e.g. 10 or 0.25)")
}

func (cmd *cmdPay) Execute(ctx context.Context) error {
	stdout := clingy.Stdout(ctx)
	stderr := clingy.Stderr(ctx)

	cfg, err := loadConfig(cmd.config)
	if err != nil {
		return err
	}

	log, err := openLog(cmd.dataDir)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}

	observer := func(from, to payment.Phase) {
		switch to {
		case payment.Authorizing:
			fancy.Finfoln(stdout, "Requesting the permit signature...")
		case payment.Submitting:
			fancy.Finfoln(stdout, "Submitting the payment...")
		case payment.Confirming:
			fancy.Finfoln(stdout, "Waiting for confirmation...")
		}
	}

	s, err := openSession(ctx, log, cfg, sessionOptions{
		confirm:  cfg.Wallet.Confirm && !cmd.skipConfirmation,
		observer: observer,
	})
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.orchestrator.Reload(ctx); err != nil {
		fancy.Foutcome(stderr, err)
		return err
	}

	state, err := s.orchestrator.Connect(ctx)
	if err != nil {
		fancy.Foutcome(stderr, err)
		return err
	}

	decimals := s.orchestrator.Decimals()
	amount, err := token.ParseAmount(cmd.amount, decimals)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", cmd.amount, err)
	}

	fancy.Finfof(stdout, "Account.....: %s\n", state.Account.Hex())
	fancy.Finfof(stdout, "Balance.....: %s\n", token.Pretty(state.Balance, decimals, token.DefaultSymbol))
	fancy.Finfof(stdout, "Processor...: %s\n", state.Contracts.Processor.Hex())

	label := fmt.Sprintf("Pay %s", token.Pretty(amount, decimals, token.DefaultSymbol))
	if cmd.skipConfirmation {
		fmt.Fprintf(stdout, "Skipping confirmation to %s!\n", label)
	} else if err := promptConfirm(label); err != nil {
		return err
	}

	receipt, err := s.orchestrator.Pay(ctx, cmd.amount)
	if err != nil {
		fancy.Foutcome(stderr, err)
		return err
	}

	log.Debug("Receipt", zap.Object("receipt", receipt))
	fancy.Fsuccessf(stdout, "Paid %s\n", token.Pretty(receipt.Amount, decimals, token.DefaultSymbol))
	fancy.Finfof(stdout, "Transaction.: %s\n", receipt.ExplorerURL)
	fancy.Finfof(stdout, "Balance.....: %s\n", token.Pretty(s.orchestrator.Session().Balance, decimals, token.DefaultSymbol))
	return nil
}
