package main

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/permit-payment/pkg/chain"
	"storj.io/permit-payment/pkg/journal"
)

type statusConfig struct {
	*rootConfig
}

func newStatusCommand(rootConfig *rootConfig) *cobra.Command {
	config := &statusConfig{
		rootConfig: rootConfig,
	}

	return &cobra.Command{
		Use:   "status TXHASH",
		Short: "Prints the state of a payment transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCmd(doStatus(config, args[0]))
		},
	}
}

func doStatus(config *statusConfig, arg string) error {
	hash, err := chain.ParseHash(arg)
	if err != nil {
		return usageErr.Wrap(err)
	}

	client, err := dialNode(config.Ctx, config.NodeAddress)
	if err != nil {
		return err
	}
	defer client.Close()

	receipt, err := client.TransactionReceipt(config.Ctx, hash)
	switch {
	case err == nil:
	case errors.Is(err, ethereum.NotFound):
		_, pending, err := client.TransactionByHash(config.Ctx, hash)
		switch {
		case err == nil && pending:
			fmt.Printf("State: %s\n", journal.Pending)
			return nil
		case err == nil:
			return errs.New("transaction %s has no receipt", hash.Hex())
		case errors.Is(err, ethereum.NotFound):
			return errs.New("transaction %s not found", hash.Hex())
		default:
			return errs.Wrap(err)
		}
	default:
		return errs.Wrap(err)
	}

	printReceipt(receipt)
	return nil
}

func printReceipt(receipt *types.Receipt) {
	fmt.Printf("State:    %s\n", journal.StateFromReceipt(receipt))
	fmt.Printf("Block:    %s\n", receipt.BlockNumber)
	fmt.Printf("Gas used: %d\n", receipt.GasUsed)
	fmt.Printf("Gas cost: %s\n", chain.PrettyETH(chain.GasCost(receipt.GasUsed, receipt.EffectiveGasPrice)))
}
