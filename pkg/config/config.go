package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"storj.io/permit-payment/pkg/contract"
	"storj.io/permit-payment/pkg/payment"
	"storj.io/permit-payment/pkg/permit"
	"storj.io/permit-payment/pkg/token"
)

type MissingFieldsError = toml.StrictMissingError

type Config struct {
	Node      Node      `toml:"node"`
	Contracts Contracts `toml:"contracts"`
	Wallet    Wallet    `toml:"wallet"`
	Payment   Payment   `toml:"payment"`
	Journal   Journal   `toml:"journal"`
}

type Payment struct {
	// PermitWindow is how long a signed permit stays valid.
	PermitWindow Duration `toml:"permit_window"`

	// GasLimit is the gas limit of the payment transaction.
	GasLimit uint64 `toml:"gas_limit"`

	// TokenDecimals is the number of decimals amounts are entered with.
	TokenDecimals int32 `toml:"token_decimals"`

	// VerifyDecimals checks TokenDecimals against the token's decimals()
	// before each payment.
	VerifyDecimals bool `toml:"verify_decimals"`

	// ConfirmTimeout bounds the wait for the payment receipt. Zero waits
	// until interrupted.
	ConfirmTimeout Duration `toml:"confirm_timeout"`

	// ExplorerURL is prefixed to transaction hashes to link to them.
	ExplorerURL string `toml:"explorer_url"`
}

// Apply copies the payment settings into config.
func (c *Payment) Apply(config *payment.Config) {
	config.PermitWindow = time.Duration(c.PermitWindow)
	config.GasLimit = c.GasLimit
	config.Decimals = c.TokenDecimals
	config.VerifyDecimals = c.VerifyDecimals
	config.ConfirmTimeout = time.Duration(c.ConfirmTimeout)
	config.ExplorerURL = c.ExplorerURL
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	const (
		defaultNodeAddress     = "http://localhost:8545"
		defaultContractsPath   = "./contracts/contract-addresses.json"
		defaultContractsFetch  = Duration(10 * time.Second)
		defaultPermitWindow    = Duration(permit.DefaultWindow)
		defaultGasLimit        = contract.PaymentGasLimit
		defaultTokenDecimals   = token.DefaultDecimals
		defaultConfirmTimeout  = Duration(5 * time.Minute)
		defaultExplorerURL     = payment.DefaultExplorerURL
		defaultJournalPath     = "~/.permitpay/journal.db"
		defaultConfirmRequests = true
	)

	config := Config{
		Node: Node{
			Address: defaultNodeAddress,
		},
		Contracts: Contracts{
			Timeout: defaultContractsFetch,
		},
		Wallet: Wallet{
			Confirm: defaultConfirmRequests,
		},
		Payment: Payment{
			PermitWindow:   defaultPermitWindow,
			GasLimit:       defaultGasLimit,
			TokenDecimals:  defaultTokenDecimals,
			ConfirmTimeout: defaultConfirmTimeout,
			ExplorerURL:    defaultExplorerURL,
		},
		Journal: Journal{
			Path: ToPath(defaultJournalPath),
		},
	}

	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Contracts.URL == "" && config.Contracts.Path == "" {
		config.Contracts.Path = defaultContractsPath
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch {
	case c.Node.Address == "":
		return errors.New("node.address is not configured")
	case c.Contracts.URL != "" && c.Contracts.Path != "":
		return errors.New("contracts.url and contracts.path are mutually exclusive")
	case c.Wallet.KeyPath != "" && c.Wallet.KeystoreDir != "":
		return errors.New("wallet.key_path and wallet.keystore_dir are mutually exclusive")
	case c.Wallet.KeystoreDir != "" && c.Wallet.Account == nil:
		return errors.New("wallet.account is required with wallet.keystore_dir")
	case c.Payment.TokenDecimals < 1 || c.Payment.TokenDecimals > 36:
		return fmt.Errorf("payment.token_decimals %d is out of range", c.Payment.TokenDecimals)
	case c.Payment.PermitWindow <= 0:
		return errors.New("payment.permit_window must be positive")
	case c.Payment.GasLimit == 0:
		return errors.New("payment.gas_limit must be positive")
	}
	return nil
}

func DumpUnknownFields(err error) string {
	var sme *toml.StrictMissingError
	if errors.As(err, &sme) {
		return sme.String()
	}
	return ""
}
