package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storj.io/permit-payment/pkg/directory"
)

type addressesConfig struct {
	*rootConfig
	Timeout time.Duration
}

func newAddressesCommand(rootConfig *rootConfig) *cobra.Command {
	config := &addressesConfig{
		rootConfig: rootConfig,
	}

	cmd := &cobra.Command{
		Use:   "addresses SOURCE",
		Short: "Loads the contract addresses from a payment service URL or a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCmd(doAddresses(config, args[0], cmd.OutOrStdout()))
		},
	}
	cmd.Flags().DurationVarP(&config.Timeout, "timeout", "", 10*time.Second, "Fetch timeout")
	return cmd
}

func doAddresses(config *addressesConfig, source string, w io.Writer) error {
	var src directory.Source
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client, err := directory.NewClient(source, &http.Client{Timeout: config.Timeout})
		if err != nil {
			return usageErr.Wrap(err)
		}
		fmt.Fprintf(w, "Fetching %s...\n", client.URL())
		src = client
	} else {
		path, err := expandPath(source)
		if err != nil {
			return err
		}
		src = directory.File(path)
	}

	info, err := src.Load(config.Ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Processor: %s\n", info.Processor.Hex())
	fmt.Fprintf(w, "Token:     %s\n", info.Token.Hex())
	return nil
}
