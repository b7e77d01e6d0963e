// Package directory loads and holds the addresses of the payment processor
// and token contracts.
package directory

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap/zapcore"

	"storj.io/permit-payment/pkg/failure"
)

// ContractInfo holds the contract addresses a payment needs. It is never
// modified after loading.
type ContractInfo struct {
	Processor common.Address
	Token     common.Address
}

func (info *ContractInfo) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("processor", info.Processor.Hex())
	enc.AddString("token", info.Token.Hex())
	return nil
}

// Parse decodes and validates a contract-addresses document:
//
//	{"proxy": "0x...", "usdcToken": "0x..."}
func Parse(data []byte) (*ContractInfo, error) {
	var doc struct {
		Proxy     *string `json:"proxy"`
		USDCToken *string `json:"usdcToken"`
	}
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, failure.ConfigLoad.New("invalid JSON: %v", err)
	}

	processor, err := parseAddress("proxy", doc.Proxy)
	if err != nil {
		return nil, err
	}
	token, err := parseAddress("usdcToken", doc.USDCToken)
	if err != nil {
		return nil, err
	}
	if processor == token {
		return nil, failure.ConfigLoad.New("proxy and usdcToken must differ")
	}

	return &ContractInfo{
		Processor: processor,
		Token:     token,
	}, nil
}

// LoadFile reads a contract-addresses document from disk.
func LoadFile(path string) (*ContractInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failure.ConfigLoad.Wrap(err)
	}
	return Parse(data)
}

func parseAddress(field string, value *string) (common.Address, error) {
	switch {
	case value == nil || *value == "":
		return common.Address{}, failure.ConfigLoad.New("%s address is missing", field)
	case !common.IsHexAddress(*value):
		return common.Address{}, failure.ConfigLoad.New("%s address %q is malformed", field, *value)
	}
	address := common.HexToAddress(*value)
	if address == (common.Address{}) {
		return common.Address{}, failure.ConfigLoad.New("%s address must not be zero", field)
	}
	return address, nil
}
