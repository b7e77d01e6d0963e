package main

import (
	"context"

	"github.com/zeebo/clingy"

	"storj.io/permit-payment/pkg/fancy"
	"storj.io/permit-payment/pkg/token"
)

type cmdConnect struct {
	config string
}

func (cmd *cmdConnect) Setup(params clingy.Parameters) {
	cmd.config = stringFlag(params, "config", "The configuration file", "./config.toml")
}

func (cmd *cmdConnect) Execute(ctx context.Context) error {
	stdout := clingy.Stdout(ctx)
	stderr := clingy.Stderr(ctx)

	cfg, err := loadConfig(cmd.config)
	if err != nil {
		return err
	}

	log, err := openConsoleLog()
	if err != nil {
		return err
	}

	s, err := openSession(ctx, log, cfg, sessionOptions{confirm: cfg.Wallet.Confirm})
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

	fancy.Finfof(stdout, "Account.....: %s\n", state.Account.Hex())
	fancy.Finfof(stdout, "Processor...: %s\n", state.Contracts.Processor.Hex())
	fancy.Finfof(stdout, "Token.......: %s\n", state.Contracts.Token.Hex())
	fancy.Finfof(stdout, "Balance.....: %s\n", token.Pretty(state.Balance, s.orchestrator.Decimals(), token.DefaultSymbol))
	return nil
}
