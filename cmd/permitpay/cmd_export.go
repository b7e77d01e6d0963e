package main

import (
	"context"
	"os"

	"github.com/zeebo/clingy"
	"github.com/zeebo/errs"

	"storj.io/permit-payment/pkg/fancy"
	"storj.io/permit-payment/pkg/receipts"
)

type cmdExport struct {
	config       string
	receiptsPath string
}

func (cmd *cmdExport) Setup(params clingy.Parameters) {
	cmd.config = stringFlag(params, "config", "The configuration file", "./config.toml")
	cmd.receiptsPath = stringFlag(params, "receipts", "Where to write the receipts (default stdout)", "")
}

func (cmd *cmdExport) Execute(ctx context.Context) error {
	stdout := clingy.Stdout(ctx)
	stderr := clingy.Stderr(ctx)

	cfg, err := loadConfig(cmd.config)
	if err != nil {
		return err
	}

	db, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	attempts, err := db.List(ctx)
	if err != nil {
		return err
	}

	var buf receipts.Buffer
	for _, a := range attempts {
		buf.EmitAttempt(a, cfg.Payment.TokenDecimals)
	}

	if cmd.receiptsPath == "" {
		_, err := stdout.Write(buf.Finalize())
		return errs.Wrap(err)
	}

	fancy.Finfof(stderr, "Writing %d receipts to %s...\n", len(attempts), cmd.receiptsPath)
	if err := os.WriteFile(cmd.receiptsPath, buf.Finalize(), 0644); err != nil {
		return errs.Wrap(err)
	}
	fancy.Finfoln(stderr, "Done.")
	return nil
}
