package protocol

import "fmt"

// Command is one pool instruction. The set of implementations is closed to
// the seven types in this file.
type Command interface {
	// Opcode returns the tag written before the payload.
	Opcode() Opcode
	// Seed returns the pool the command targets.
	Seed() PoolSeed
	// Validate checks the constraints the wire format cannot represent for an
	// in-memory value. Pack does not call it.
	Validate() error

	unpack(r *fieldReader) error
	pack(w *fieldWriter)
}

// Init allocates an empty pool account.
type Init struct {
	PoolSeed          PoolSeed `json:"pool_seed"`
	MaxNumberOfAssets uint32   `json:"max_number_of_assets"`
	NumberOfMarkets   uint16   `json:"number_of_markets"`
}

// Create performs the first deposit into an initialized pool and fixes its
// signal provider and market list.
//
// Markets is length-prefixed on the wire. DepositAmounts is not: it runs to
// the end of the payload.
type Create struct {
	PoolSeed          PoolSeed `json:"pool_seed"`
	ExchangeProgramID Key      `json:"exchange_program_id"`
	SignalProviderKey Key      `json:"signal_provider_key"`
	DepositAmounts    []uint64 `json:"deposit_amounts"`
	Markets           []Key    `json:"markets"`
}

// Deposit buys PoolTokenAmount pool tokens with the pool's current asset mix.
type Deposit struct {
	PoolSeed        PoolSeed `json:"pool_seed"`
	PoolTokenAmount uint64   `json:"pool_token_amount"`
}

// CreateOrder places an order on the exchange on behalf of the pool.
// TradeRatio is the share of the source asset to commit, as a numerator over
// TradeRatioDenominator.
type CreateOrder struct {
	PoolSeed          PoolSeed          `json:"pool_seed"`
	Side              Side              `json:"side"`
	LimitPrice        uint64            `json:"limit_price"` // nonzero
	TradeRatio        uint16            `json:"trade_ratio"` // nonzero
	OrderType         OrderType         `json:"order_type"`
	ClientID          uint64            `json:"client_id"`
	SelfTradeBehavior SelfTradeBehavior `json:"self_trade_behavior"`
	SourceIndex       uint64            `json:"source_index"`
	TargetIndex       uint64            `json:"target_index"`
	MarketIndex       uint16            `json:"market_index"`
	CoinLotSize       uint64            `json:"coin_lot_size"`
	PcLotSize         uint64            `json:"pc_lot_size"`
	TargetMint        Key               `json:"target_mint"`
}

// CancelOrder cancels an open exchange order of the pool.
type CancelOrder struct {
	PoolSeed PoolSeed `json:"pool_seed"`
	Side     Side     `json:"side"`
	OrderID  Uint128  `json:"order_id"`
}

// SettleFunds moves settled balances out of one of the pool's open orders
// accounts.
type SettleFunds struct {
	PoolSeed  PoolSeed `json:"pool_seed"`
	PcIndex   uint64   `json:"pc_index"`
	CoinIndex uint64   `json:"coin_index"`
}

// Redeem burns PoolTokenAmount pool tokens against the pool's assets.
type Redeem struct {
	PoolSeed        PoolSeed `json:"pool_seed"`
	PoolTokenAmount uint64   `json:"pool_token_amount"`
}

func (*Init) Opcode() Opcode        { return OpInit }
func (*Create) Opcode() Opcode      { return OpCreate }
func (*Deposit) Opcode() Opcode     { return OpDeposit }
func (*CreateOrder) Opcode() Opcode { return OpCreateOrder }
func (*CancelOrder) Opcode() Opcode { return OpCancelOrder }
func (*SettleFunds) Opcode() Opcode { return OpSettleFunds }
func (*Redeem) Opcode() Opcode      { return OpRedeem }

func (c *Init) Seed() PoolSeed        { return c.PoolSeed }
func (c *Create) Seed() PoolSeed      { return c.PoolSeed }
func (c *Deposit) Seed() PoolSeed     { return c.PoolSeed }
func (c *CreateOrder) Seed() PoolSeed { return c.PoolSeed }
func (c *CancelOrder) Seed() PoolSeed { return c.PoolSeed }
func (c *SettleFunds) Seed() PoolSeed { return c.PoolSeed }
func (c *Redeem) Seed() PoolSeed      { return c.PoolSeed }

func (*Init) Validate() error        { return nil }
func (*Deposit) Validate() error     { return nil }
func (*SettleFunds) Validate() error { return nil }
func (*Redeem) Validate() error      { return nil }

// Validate rejects market lists too long for the 16-bit count prefix.
func (c *Create) Validate() error {
	if len(c.Markets) > MaxMarkets {
		return fmt.Errorf("create: %d markets exceeds the maximum of %d", len(c.Markets), MaxMarkets)
	}
	return nil
}

// Validate enforces the nonzero and enumeration constraints Unpack applies.
func (c *CreateOrder) Validate() error {
	switch {
	case !c.Side.IsValid():
		return &DecodeError{Err: ErrInvalidEnumerationValue, Opcode: OpCreateOrder, Field: "side", Offset: 32, Value: uint64(c.Side)}
	case c.LimitPrice == 0:
		return &DecodeError{Err: ErrZeroConstraintViolated, Opcode: OpCreateOrder, Field: "limit_price", Offset: 33}
	case c.TradeRatio == 0:
		return &DecodeError{Err: ErrZeroConstraintViolated, Opcode: OpCreateOrder, Field: "trade_ratio", Offset: 41}
	case !c.OrderType.IsValid():
		return &DecodeError{Err: ErrInvalidEnumerationValue, Opcode: OpCreateOrder, Field: "order_type", Offset: 43, Value: uint64(c.OrderType)}
	case !c.SelfTradeBehavior.IsValid():
		return &DecodeError{Err: ErrInvalidEnumerationValue, Opcode: OpCreateOrder, Field: "self_trade_behavior", Offset: 52, Value: uint64(c.SelfTradeBehavior)}
	}
	return nil
}

func (c *CancelOrder) Validate() error {
	if !c.Side.IsValid() {
		return &DecodeError{Err: ErrInvalidEnumerationValue, Opcode: OpCancelOrder, Field: "side", Offset: 32, Value: uint64(c.Side)}
	}
	return nil
}
