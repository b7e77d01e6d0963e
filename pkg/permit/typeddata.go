// Package permit builds, signs and encodes EIP-2612 permits for the payment
// processor.
package permit

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	// DomainVersion is the EIP-712 domain version of the token.
	DomainVersion = "1"

	PrimaryType = "Permit"
)

// Types are the EIP-712 types of a permit. Field order is part of the type
// hash and must not change.
var Types = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	PrimaryType: {
		{Name: "owner", Type: "address"},
		{Name: "spender", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
	},
}

// Message is the permit being signed.
type Message struct {
	Owner    common.Address
	Spender  common.Address
	Value    *big.Int
	Nonce    *big.Int
	Deadline *big.Int
}

// Map returns the message in the form apitypes expects.
func (m Message) Map() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"owner":    m.Owner.Hex(),
		"spender":  m.Spender.Hex(),
		"value":    new(big.Int).Set(m.Value),
		"nonce":    new(big.Int).Set(m.Nonce),
		"deadline": new(big.Int).Set(m.Deadline),
	}
}

// BuildDomain returns the EIP-712 domain of the token at tokenAddress.
func BuildDomain(tokenName string, chainID *big.Int, tokenAddress common.Address) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              tokenName,
		Version:           DomainVersion,
		ChainId:           (*math.HexOrDecimal256)(new(big.Int).Set(chainID)),
		VerifyingContract: tokenAddress.Hex(),
	}
}

// TypedData assembles the signing request for msg under domain.
func TypedData(domain apitypes.TypedDataDomain, msg Message) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       Types,
		PrimaryType: PrimaryType,
		Domain:      domain,
		Message:     msg.Map(),
	}
}
