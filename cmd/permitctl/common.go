package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	errs2 "github.com/zeebo/errs/v2"

	"storj.io/permit-payment/pkg/chain"
)

var usageErr = errs.Class("usage")

func cmdCtx() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		sig := <-ch
		fmt.Fprintf(os.Stderr, "Signal %q received\n", sig)
		cancel()
	}()
	return ctx
}

func checkCmd(err error) error {
	switch {
	case err == nil:
		return nil
	case usageErr.Has(err):
		// usage errors are returned so cobra shows usage
		return err
	}
	// other errors exit with 2
	fmt.Fprintf(os.Stderr, "error: %+v\n", err)
	os.Exit(2)
	return err
}

func dialNode(ctx context.Context, address string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, address)
	if err != nil {
		return nil, errs2.Errorf("failed to dial node %q: %v", address, err)
	}
	return client, nil
}

func convertAddress(s, which string) (common.Address, error) {
	address, err := chain.ParseAddress(s)
	if err != nil {
		return common.Address{}, usageErr.New("invalid %s address: %v", which, err)
	}
	return address, nil
}

func registerAddressFlag(cmd *cobra.Command, name, usage string, value *string) {
	cmd.Flags().StringVarP(value, name, "", "", usage)
	_ = cmd.MarkFlagRequired(name)
}

// expandPath resolves a leading ~ to the home directory.
func expandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errs2.Wrap(err)
	}
	return expanded, nil
}
