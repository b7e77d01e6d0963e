package config

import (
	"context"

	"storj.io/permit-payment/pkg/journal"
)

type Journal struct {
	// Path is the sqlite journal. An empty path disables the journal.
	Path Path `toml:"path"`
}

// Open opens the journal, or returns nil if it is disabled.
func (c *Journal) Open(ctx context.Context, readOnly bool) (*journal.DB, error) {
	if c.Path == "" {
		return nil, nil
	}
	return journal.Open(ctx, string(c.Path), readOnly)
}
