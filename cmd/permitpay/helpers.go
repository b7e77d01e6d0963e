package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/permit-payment/pkg/chain"
	"storj.io/permit-payment/pkg/config"
	"storj.io/permit-payment/pkg/journal"
	"storj.io/permit-payment/pkg/payment"
	"storj.io/permit-payment/pkg/wallet"
)

func promptConfirm(label string) error {
	_, err := (&promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}).Run()
	if err != nil {
		return errors.New("aborted")
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		var mfe *config.MissingFieldsError
		if errors.As(err, &mfe) {
			return config.Config{}, fmt.Errorf("unable to load config:\n%s", mfe.String())
		}
		return config.Config{}, fmt.Errorf("unable to load config: %w", err)
	}
	return cfg, nil
}

// session is everything a command needs to talk to the chain.
type session struct {
	closers []func() error

	journal      *journal.DB
	orchestrator *payment.Orchestrator
}

type sessionOptions struct {
	confirm  bool
	observer payment.Observer
}

func openSession(ctx context.Context, log *zap.Logger, cfg config.Config, opts sessionOptions) (_ *session, err error) {
	s := new(session)
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	if !opts.confirm {
		cfg.Wallet.Confirm = false
	}
	w, err := cfg.Wallet.NewWallet(wallet.PromptApprover{})
	if err != nil {
		return nil, err
	}

	backend, err := cfg.Node.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node: %w", err)
	}
	s.closers = append(s.closers, func() error { backend.Close(); return nil })

	dir, err := cfg.Contracts.NewDirectory(log.Named("directory"))
	if err != nil {
		return nil, err
	}

	s.journal, err = cfg.Journal.Open(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if s.journal != nil {
		s.closers = append(s.closers, s.journal.Close)
	}

	paymentConfig := payment.Config{
		Log:      log.Named("payment"),
		Journal:  s.journal,
		Observer: opts.observer,
	}
	cfg.Payment.Apply(&paymentConfig)

	client := chain.NewClient(log.Named("chain"), backend, w)
	s.orchestrator, err = payment.New(client, dir, paymentConfig)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) Close() error {
	var g errs.Group
	for i := len(s.closers) - 1; i >= 0; i-- {
		g.Add(s.closers[i]())
	}
	return g.Err()
}

func openJournal(ctx context.Context, cfg config.Config) (*journal.DB, error) {
	db, err := cfg.Journal.Open(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if db == nil {
		return nil, errors.New("the journal is disabled; set journal.path in the config")
	}
	return db, nil
}
