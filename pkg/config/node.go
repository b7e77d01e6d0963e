package config

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/zeebo/errs"
)

type Node struct {
	// Address is the JSON-RPC endpoint of the node.
	Address string `toml:"address"`

	// ChainID, if set, must match the chain id reported by the node.
	ChainID int64 `toml:"chain_id"`
}

// NewClient dials the node and checks its chain id.
func (c *Node) NewClient(ctx context.Context) (_ *ethclient.Client, err error) {
	client, err := ethclient.DialContext(ctx, c.Address)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer func() {
		if err != nil {
			client.Close()
		}
	}()

	if c.ChainID != 0 {
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return nil, errs.New("unable to query chain id: %v", err)
		}
		if !chainID.IsInt64() || chainID.Int64() != c.ChainID {
			return nil, errs.New("node %s is on chain %s; configured for %d", c.Address, chainID, c.ChainID)
		}
	}
	return client, nil
}
