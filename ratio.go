package poolbot

import (
	"fmt"
	"math/big"

	"github.com/0x5487/poolbot/protocol"
	"github.com/shopspring/decimal"
)

var (
	ratioDenominator = decimal.NewFromInt(protocol.TradeRatioDenominator)
	one              = decimal.NewFromInt(1)
)

// RatioFromDecimal converts the share of a pool asset to commit to an order,
// a fraction in (0, 1], into the CreateOrder trade ratio numerator. The result
// is rounded half up and never below 1.
func RatioFromDecimal(fraction decimal.Decimal) (uint16, error) {
	if !fraction.IsPositive() || fraction.GreaterThan(one) {
		return 0, fmt.Errorf("%w: trade ratio %s outside (0, 1]", ErrInvalidParam, fraction)
	}

	n := fraction.Mul(ratioDenominator).Round(0).IntPart()
	if n < 1 {
		n = 1
	}
	return uint16(n), nil
}

// RatioToDecimal returns ratio / 65535.
func RatioToDecimal(ratio uint16) decimal.Decimal {
	return decimal.NewFromInt(int64(ratio)).Div(ratioDenominator)
}

// ToBaseUnits converts a token amount expressed in whole units into the
// integer base units carried on the wire, e.g. 1.5 with 6 decimals is 1500000.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (uint64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %s", ErrInvalidParam, amount)
	}

	shifted := amount.Shift(decimals)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: amount %s has more than %d decimals", ErrInvalidParam, amount, decimals)
	}

	v := shifted.BigInt()
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: amount %s overflows u64", ErrInvalidParam, amount)
	}
	return v.Uint64(), nil
}

// FromBaseUnits is the inverse of ToBaseUnits.
func FromBaseUnits(units uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -decimals)
}
