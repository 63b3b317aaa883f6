package protocol

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

const (
	// KeyLength is the byte width of every account key and of the pool seed.
	KeyLength = solana.PublicKeyLength

	// TradeRatioDenominator is the fixed denominator of CreateOrder.TradeRatio.
	TradeRatioDenominator = math.MaxUint16

	// MaxMarkets is the largest market list a Create payload can carry.
	MaxMarkets = math.MaxUint16
)

// Key is a 32-byte account identifier.
type Key = solana.PublicKey

// PoolSeed identifies the pool a command targets. It is the first field of
// every payload.
type PoolSeed [KeyLength]byte

func (s PoolSeed) String() string {
	return hex.EncodeToString(s[:])
}

// MarshalText encodes the seed as lowercase hex.
func (s PoolSeed) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *PoolSeed) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("pool seed: %w", err)
	}
	if len(b) != KeyLength {
		return fmt.Errorf("pool seed: want %d bytes, got %d", KeyLength, len(b))
	}
	copy(s[:], b)
	return nil
}

// Uint128 is an unsigned 128-bit integer. On the wire it is 16 bytes,
// little-endian: the low word first.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// NewUint128 builds a Uint128 from a 64-bit value.
func NewUint128(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// ParseUint128 parses a base-10 string.
func ParseUint128(s string) (Uint128, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.BitLen() > 128 {
		return Uint128{}, fmt.Errorf("invalid uint128 %q", s)
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(math.MaxUint64))
	hi := new(big.Int).Rsh(v, 64)
	return Uint128{Lo: lo.Uint64(), Hi: hi.Uint64()}, nil
}

// BigInt returns the value as a big.Int.
func (u Uint128) BigInt() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string {
	return u.BigInt().String()
}

// MarshalText encodes the value as a decimal string so JSON consumers do not
// lose precision.
func (u Uint128) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Uint128) UnmarshalText(text []byte) error {
	v, err := ParseUint128(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// enumTable is the single name/code mapping of an enumeration. The wire code
// of a value is its index.
type enumTable []string

func (t enumTable) valid(code uint8) bool {
	return int(code) < len(t)
}

func (t enumTable) name(code uint8) string {
	if !t.valid(code) {
		return fmt.Sprintf("unknown(%d)", code)
	}
	return t[code]
}

func (t enumTable) code(name string) (uint8, bool) {
	for i, n := range t {
		if n == name {
			return uint8(i), true
		}
	}
	return 0, false
}

func (t enumTable) unmarshal(kind string, text []byte) (uint8, error) {
	code, ok := t.code(string(text))
	if !ok {
		return 0, &DecodeError{Err: ErrInvalidEnumerationValue, Field: kind}
	}
	return code, nil
}

// Side represents the order side on the order book.
type Side uint8

const (
	SideBid Side = 0
	SideAsk Side = 1
)

var sideNames = enumTable{"bid", "ask"}

func (s Side) IsValid() bool  { return sideNames.valid(uint8(s)) }
func (s Side) String() string { return sideNames.name(uint8(s)) }

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(text []byte) error {
	code, err := sideNames.unmarshal("side", text)
	*s = Side(code)
	return err
}

// OrderType represents how the exchange treats a new order.
type OrderType uint8

const (
	OrderTypeLimit             OrderType = 0
	OrderTypeImmediateOrCancel OrderType = 1
	OrderTypePostOnly          OrderType = 2 // Maker only
)

var orderTypeNames = enumTable{"limit", "immediate_or_cancel", "post_only"}

func (o OrderType) IsValid() bool  { return orderTypeNames.valid(uint8(o)) }
func (o OrderType) String() string { return orderTypeNames.name(uint8(o)) }

func (o OrderType) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *OrderType) UnmarshalText(text []byte) error {
	code, err := orderTypeNames.unmarshal("order_type", text)
	*o = OrderType(code)
	return err
}

// SelfTradeBehavior selects what the exchange does when an order would match
// another order of the same owner.
type SelfTradeBehavior uint8

const (
	SelfTradeDecrementTake SelfTradeBehavior = 0
	SelfTradeCancelProvide SelfTradeBehavior = 1
)

var selfTradeNames = enumTable{"decrement_take", "cancel_provide"}

func (b SelfTradeBehavior) IsValid() bool  { return selfTradeNames.valid(uint8(b)) }
func (b SelfTradeBehavior) String() string { return selfTradeNames.name(uint8(b)) }

func (b SelfTradeBehavior) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *SelfTradeBehavior) UnmarshalText(text []byte) error {
	code, err := selfTradeNames.unmarshal("self_trade_behavior", text)
	*b = SelfTradeBehavior(code)
	return err
}
