package main

import (
	"context"

	"github.com/zeebo/clingy"

	"storj.io/permit-payment/pkg/fancy"
)

type cmdContracts struct {
	config string
}

func (cmd *cmdContracts) Setup(params clingy.Parameters) {
	cmd.config = stringFlag(params, "config", "The configuration file", "./config.toml")
}

func (cmd *cmdContracts) Execute(ctx context.Context) error {
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

	dir, err := cfg.Contracts.NewDirectory(log.Named("directory"))
	if err != nil {
		return err
	}
	if err := dir.Load(ctx); err != nil {
		fancy.Foutcome(stderr, err)
		return err
	}

	info, _ := dir.Info()
	fancy.Finfof(stdout, "Processor...: %s\n", info.Processor.Hex())
	fancy.Finfof(stdout, "Token.......: %s\n", info.Token.Hex())
	return nil
}
