package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/permit-payment/pkg/contract"
	"storj.io/permit-payment/pkg/token"
)

type tokenConfig struct {
	*rootConfig
	Token string
}

func newTokenCommand(rootConfig *rootConfig) *cobra.Command {
	config := &tokenConfig{
		rootConfig: rootConfig,
	}

	cmd := &cobra.Command{
		Use:   "token OWNER",
		Short: "Prints the token balance and permit nonce of an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCmd(doToken(config, args[0]))
		},
	}
	registerAddressFlag(cmd, "token", "Address of the token contract", &config.Token)
	return cmd
}

func doToken(config *tokenConfig, ownerArg string) error {
	tokenAddress, err := convertAddress(config.Token, "token")
	if err != nil {
		return err
	}
	owner, err := convertAddress(ownerArg, "owner")
	if err != nil {
		return err
	}

	client, err := dialNode(config.Ctx, config.NodeAddress)
	if err != nil {
		return err
	}
	defer client.Close()

	caller, err := contract.NewTokenCaller(tokenAddress, client)
	if err != nil {
		return errs.Wrap(err)
	}

	opts := &bind.CallOpts{Context: config.Ctx}
	name, err := caller.Name(opts)
	if err != nil {
		return errs.New("failed to query name: %v", err)
	}
	decimals, err := caller.Decimals(opts)
	if err != nil {
		return errs.New("failed to query decimals: %v", err)
	}
	balance, err := caller.BalanceOf(opts, owner)
	if err != nil {
		return errs.New("failed to query balance: %v", err)
	}
	nonce, err := caller.Nonces(opts, owner)
	if err != nil {
		return errs.New("failed to query permit nonce: %v", err)
	}

	fmt.Printf("Token:    %s (%d decimals)\n", name, decimals)
	fmt.Printf("Balance:  %s\n", token.Pretty(balance, int32(decimals), token.DefaultSymbol))
	fmt.Printf("Nonce:    %s\n", nonce)
	return nil
}
