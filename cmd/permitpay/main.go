package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/zeebo/clingy"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ok, err := clingy.Environment{}.Run(ctx, func(cmds clingy.Commands) {
		cmds.New("contracts", "Loads and shows the payment contract addresses", new(cmdContracts))
		cmds.New("connect", "Connects the wallet and shows the token balance", new(cmdConnect))
		cmds.New("pay", "Pays an amount with a signed permit", new(cmdPay))
		cmds.New("history", "Shows the recorded payment attempts", new(cmdHistory))
		cmds.New("export", "Writes the recorded payment attempts as CSV receipts", new(cmdExport))
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed: %+v\n", err)
		return err
	}
	if !ok {
		return errors.New("usage error")
	}
	return nil
}
