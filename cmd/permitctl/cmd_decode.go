package main

import (
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"storj.io/permit-payment/pkg/permit"
)

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode PAYLOAD",
		Short: "Decodes a hex encoded permit payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCmd(doDecode(args[0], cmd.OutOrStdout()))
		},
	}
}

func doDecode(arg string, w io.Writer) error {
	raw, err := hexutil.Decode(arg)
	if err != nil {
		return usageErr.New("invalid payload: %v", err)
	}

	deadline, sig, err := permit.DecodePayload(raw)
	if err != nil {
		return usageErr.Wrap(err)
	}

	fmt.Fprintf(w, "Deadline: %s", deadline)
	if deadline.IsInt64() {
		fmt.Fprintf(w, " (%s)", time.Unix(deadline.Int64(), 0).UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "V:        %d\n", sig.V)
	fmt.Fprintf(w, "R:        %s\n", hexutil.Encode(sig.R[:]))
	fmt.Fprintf(w, "S:        %s\n", hexutil.Encode(sig.S[:]))
	return nil
}
