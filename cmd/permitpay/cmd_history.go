package main

import (
	"context"
	"io"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kyokomi/emoji/v2"
	"github.com/zeebo/clingy"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"

	"storj.io/permit-payment/pkg/fancy"
	"storj.io/permit-payment/pkg/journal"
	"storj.io/permit-payment/pkg/token"
)

type cmdHistory struct {
	config string
}

func (cmd *cmdHistory) Setup(params clingy.Parameters) {
	cmd.config = stringFlag(params, "config", "The configuration file", "./config.toml")
}

func (cmd *cmdHistory) Execute(ctx context.Context) error {
	stdout := clingy.Stdout(ctx)

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
	if len(attempts) == 0 {
		fancy.Finfoln(stdout, "No payments recorded.")
		return nil
	}

	decimals := cfg.Payment.TokenDecimals
	for _, a := range attempts {
		printAttempt(stdout, a, decimals)
	}

	counts, err := db.CountByState(ctx)
	if err != nil {
		return err
	}

	fancy.Finfoln(stdout)
	states := maps.Keys(counts)
	slices.Sort(states)
	for _, state := range states {
		level := fancy.Info
		if state == journal.Failed {
			level = errorIfNonZero(counts[state])
		}
		fancy.Fprintf(stdout, level, "%-12s: %d\n", state, counts[state])
	}
	return nil
}

func printAttempt(w io.Writer, a *journal.Attempt, decimals int32) {
	icon := ":grey_question:"
	switch a.State {
	case journal.Confirmed:
		icon = ":white_check_mark:"
	case journal.Pending:
		icon = ":hourglass:"
	case journal.Failed:
		icon = ":x:"
	case journal.Aborted:
		icon = ":no_entry_sign:"
	}

	_, _ = emoji.Fprintf(w, "%s #%d %s %s %s\n", icon, a.ID,
		a.CreatedAt.Format("2006-01-02 15:04:05"),
		token.Pretty(a.Amount, decimals, token.DefaultSymbol),
		a.State)
	if a.TxHash != (common.Hash{}) {
		_, _ = emoji.Fprintf(w, "    tx %s\n", a.TxHash.Hex())
	}
	if a.Message != "" {
		_, _ = emoji.Fprintf(w, "    %s\n", a.Message)
	}
}

func errorIfNonZero[T constraints.Integer](v T) fancy.Level {
	if v != 0 {
		return fancy.Error
	}
	return fancy.Info
}
