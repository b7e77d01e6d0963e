package directory

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Source produces contract addresses.
type Source interface {
	Load(ctx context.Context) (*ContractInfo, error)
}

type SourceFunc func(ctx context.Context) (*ContractInfo, error)

func (fn SourceFunc) Load(ctx context.Context) (*ContractInfo, error) {
	return fn(ctx)
}

// Load implements Source.
func (cli *Client) Load(ctx context.Context) (*ContractInfo, error) {
	return cli.Fetch(ctx)
}

// File is a Source reading a local contract-addresses document.
type File string

func (f File) Load(context.Context) (*ContractInfo, error) {
	return LoadFile(string(f))
}

// Static returns a Source that always yields info.
func Static(info *ContractInfo) Source {
	return SourceFunc(func(context.Context) (*ContractInfo, error) {
		return info, nil
	})
}

// Directory holds the contract addresses once they have loaded. A failed
// load is logged and leaves the directory empty; it can be retried with Load.
type Directory struct {
	log    *zap.Logger
	source Source

	mu      sync.RWMutex
	info    *ContractInfo
	lastErr error
}

func New(log *zap.Logger, source Source) *Directory {
	return &Directory{
		log:    log,
		source: source,
	}
}

// Load loads the addresses unless they are already loaded. The returned
// error is also remembered and available from Err.
func (d *Directory) Load(ctx context.Context) error {
	if _, ok := d.Info(); ok {
		return nil
	}

	info, err := d.source.Load(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.lastErr = err
		d.log.Warn("Failed to load contract addresses", zap.Error(err))
		return err
	}
	if d.info == nil {
		d.info = info
		d.log.Info("Contract addresses loaded", zap.Object("contracts", info))
	}
	d.lastErr = nil
	return nil
}

// Info returns the loaded addresses. The second result is false until a
// load has succeeded.
func (d *Directory) Info() (*ContractInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.info, d.info != nil
}

// Err returns the error of the last failed load, if the directory is still
// empty.
func (d *Directory) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}
