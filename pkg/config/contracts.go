package config

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"storj.io/permit-payment/pkg/directory"
)

type Contracts struct {
	// URL is the base URL serving /contracts/contract-addresses.json.
	URL string `toml:"url"`

	// Path is a local contract addresses file. Used when URL is unset.
	Path Path `toml:"path"`

	// Timeout bounds the fetch from URL.
	Timeout Duration `toml:"timeout"`
}

func (c *Contracts) NewSource() (directory.Source, error) {
	if c.URL == "" {
		return directory.File(c.Path), nil
	}
	return directory.NewClient(c.URL, &http.Client{Timeout: time.Duration(c.Timeout)})
}

// NewDirectory returns an unloaded directory for the configured source.
func (c *Contracts) NewDirectory(log *zap.Logger) (*directory.Directory, error) {
	source, err := c.NewSource()
	if err != nil {
		return nil, err
	}
	return directory.New(log, source), nil
}
