// Package token converts between human readable token amounts and the
// integer smallest-unit amounts used on chain.
package token

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
	"github.com/zeebo/errs"
)

const (
	// DefaultDecimals is the number of decimals of the payment stablecoin.
	DefaultDecimals = 6

	// DefaultSymbol is shown next to formatted amounts.
	DefaultSymbol = "USDC"
)

var maxUnits = decimal.NewFromBigInt(math.MaxBig256, 0)

// ParseAmount returns the smallest-unit amount for s, a positive decimal
// number of whole tokens such as "10" or "0.25". Amounts finer than one
// smallest unit are rejected rather than rounded, as are exponent forms and
// amounts that do not fit in a uint256.
func ParseAmount(s string, decimals int32) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errs.New("invalid amount: empty")
	}
	if strings.ContainsAny(s, "eE") {
		return nil, errs.New("%s is not a valid amount: exponent notation is not supported", s)
	}

	raw, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errs.New("%s is not a valid amount: %v", s, err)
	}
	if !raw.IsPositive() {
		return nil, errs.New("%s is not a valid amount: must be positive", s)
	}

	units := raw.Shift(decimals)
	if !units.Truncate(0).Equal(units) {
		return nil, errs.New("%s is not a valid amount: at most %d decimal places are supported", s, decimals)
	}
	if units.GreaterThan(maxUnits) {
		return nil, errs.New("%s is not a valid amount: does not fit in a uint256", s)
	}
	return units.BigInt(), nil
}

// FromUnits returns the whole-token value of a smallest-unit amount.
func FromUnits(units *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(units, -decimals)
}

// Format renders a smallest-unit amount as whole tokens.
func Format(units *big.Int, decimals int32) string {
	if units == nil {
		return "0"
	}
	return FromUnits(units, decimals).String()
}

// Pretty renders units with both the raw and the whole-token value.
func Pretty(units *big.Int, decimals int32, symbol string) string {
	if units == nil {
		units = new(big.Int)
	}
	return fmt.Sprintf("%s (%s %s)", units, Format(units, decimals), symbol)
}
