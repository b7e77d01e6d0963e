package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/permit-payment/pkg/contract"
	"storj.io/permit-payment/pkg/token"
)

type quoteConfig struct {
	*rootConfig
	Processor string
	Decimals  int32
}

func newQuoteCommand(rootConfig *rootConfig) *cobra.Command {
	config := &quoteConfig{
		rootConfig: rootConfig,
	}

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Prints the approval amount and version of the payment processor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCmd(doQuote(config))
		},
	}
	registerAddressFlag(cmd, "processor", "Address of the payment processor contract", &config.Processor)
	cmd.Flags().Int32VarP(&config.Decimals, "decimals", "", token.DefaultDecimals, "Token decimals")
	return cmd
}

func doQuote(config *quoteConfig) error {
	processor, err := convertAddress(config.Processor, "processor")
	if err != nil {
		return err
	}

	client, err := dialNode(config.Ctx, config.NodeAddress)
	if err != nil {
		return err
	}
	defer client.Close()

	caller, err := contract.NewProcessorCaller(processor, client)
	if err != nil {
		return errs.Wrap(err)
	}

	opts := &bind.CallOpts{Context: config.Ctx}
	approval, err := caller.GetApprovalAmount(opts)
	if err != nil {
		return errs.New("failed to query approval amount: %v", err)
	}
	version, err := caller.GetVersion(opts)
	if err != nil {
		return errs.New("failed to query version: %v", err)
	}

	fmt.Printf("Version:         %s\n", version)
	fmt.Printf("Approval amount: %s\n", token.Pretty(approval, config.Decimals, token.DefaultSymbol))
	return nil
}
