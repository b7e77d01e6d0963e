package main

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

const defaultNodeAddress = "http://localhost:8545"

type rootConfig struct {
	Ctx context.Context

	NodeAddress string
}

func newRootCommand() *cobra.Command {
	config := new(rootConfig)
	cmd := &cobra.Command{
		Use:   "permitctl",
		Short: "Inspect permit payment contracts, payloads and transactions",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			config.Ctx = cmdCtx()
			return nil
		},
		SilenceUsage: true,
		Version:      getVersion(),
	}
	cmd.PersistentFlags().StringVarP(
		&config.NodeAddress,
		"node-address", "",
		defaultNodeAddress,
		"Address of the ETH node to use")

	cmd.AddCommand(newAddressesCommand(config))
	cmd.AddCommand(newQuoteCommand(config))
	cmd.AddCommand(newTokenCommand(config))
	cmd.AddCommand(newDecodeCommand())
	cmd.AddCommand(newStatusCommand(config))
	return cmd
}

func getVersion() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	return fmt.Sprintf("%s (built with %s)\n", buildInfo.Main.Version, runtime.Version())
}
