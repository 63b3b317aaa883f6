package protocol

import (
	bin "github.com/gagliardetto/binary"
)

// Unpack decodes an instruction payload: one opcode byte followed by the
// command's fields, little-endian, without padding.
//
// Every field read is bounds checked. A payload shorter than its command's
// fixed fields fails with ErrTruncatedField; bytes after the last fixed field
// are ignored. For Create, trailing bytes that do not form a whole 8-byte
// deposit amount are dropped.
func Unpack(data []byte) (Command, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: ErrEmptyBuffer}
	}

	op := Opcode(data[0])
	cmd, err := newCommand(op)
	if err != nil {
		return nil, err
	}

	r := &fieldReader{
		dec:    bin.NewBinDecoder(data[1:]),
		opcode: op,
	}
	if err := cmd.unpack(r); err != nil {
		return nil, err
	}
	return cmd, nil
}

// fieldReader tracks the payload offset for error reporting and routes every
// read through reserve so no field is read past the end of the buffer.
type fieldReader struct {
	dec    *bin.Decoder
	opcode Opcode
	offset int
}

func (r *fieldReader) remaining() int {
	return r.dec.Remaining()
}

func (r *fieldReader) truncated(field string, at int) error {
	return &DecodeError{Err: ErrTruncatedField, Opcode: r.opcode, Field: field, Offset: at}
}

func (r *fieldReader) reserve(field string, n int) (int, error) {
	at := r.offset
	if r.dec.Remaining() < n {
		return at, r.truncated(field, at)
	}
	r.offset += n
	return at, nil
}

func (r *fieldReader) bytes(field string, dst []byte) error {
	at, err := r.reserve(field, len(dst))
	if err != nil {
		return err
	}
	b, err := r.dec.ReadNBytes(len(dst))
	if err != nil {
		return r.truncated(field, at)
	}
	copy(dst, b)
	return nil
}

func (r *fieldReader) seed() (PoolSeed, error) {
	var seed PoolSeed
	err := r.bytes("pool_seed", seed[:])
	return seed, err
}

func (r *fieldReader) key(field string) (Key, error) {
	var key Key
	err := r.bytes(field, key[:])
	return key, err
}

func (r *fieldReader) u8(field string) (uint8, error) {
	at, err := r.reserve(field, 1)
	if err != nil {
		return 0, err
	}
	v, err := r.dec.ReadByte()
	if err != nil {
		return 0, r.truncated(field, at)
	}
	return v, nil
}

func (r *fieldReader) u16(field string) (uint16, error) {
	at, err := r.reserve(field, 2)
	if err != nil {
		return 0, err
	}
	v, err := r.dec.ReadUint16(bin.LE)
	if err != nil {
		return 0, r.truncated(field, at)
	}
	return v, nil
}

func (r *fieldReader) u32(field string) (uint32, error) {
	at, err := r.reserve(field, 4)
	if err != nil {
		return 0, err
	}
	v, err := r.dec.ReadUint32(bin.LE)
	if err != nil {
		return 0, r.truncated(field, at)
	}
	return v, nil
}

func (r *fieldReader) u64(field string) (uint64, error) {
	at, err := r.reserve(field, 8)
	if err != nil {
		return 0, err
	}
	v, err := r.dec.ReadUint64(bin.LE)
	if err != nil {
		return 0, r.truncated(field, at)
	}
	return v, nil
}

func (r *fieldReader) u128(field string) (Uint128, error) {
	at, err := r.reserve(field, 16)
	if err != nil {
		return Uint128{}, err
	}
	lo, err := r.dec.ReadUint64(bin.LE)
	if err != nil {
		return Uint128{}, r.truncated(field, at)
	}
	hi, err := r.dec.ReadUint64(bin.LE)
	if err != nil {
		return Uint128{}, r.truncated(field, at)
	}
	return Uint128{Lo: lo, Hi: hi}, nil
}

func (r *fieldReader) nonZeroU16(field string) (uint16, error) {
	at := r.offset
	v, err := r.u16(field)
	if err == nil && v == 0 {
		return 0, &DecodeError{Err: ErrZeroConstraintViolated, Opcode: r.opcode, Field: field, Offset: at}
	}
	return v, err
}

func (r *fieldReader) nonZeroU64(field string) (uint64, error) {
	at := r.offset
	v, err := r.u64(field)
	if err == nil && v == 0 {
		return 0, &DecodeError{Err: ErrZeroConstraintViolated, Opcode: r.opcode, Field: field, Offset: at}
	}
	return v, err
}

func (r *fieldReader) enum(field string, table enumTable) (uint8, error) {
	at := r.offset
	v, err := r.u8(field)
	if err != nil {
		return 0, err
	}
	if !table.valid(v) {
		return 0, &DecodeError{Err: ErrInvalidEnumerationValue, Opcode: r.opcode, Field: field, Offset: at, Value: uint64(v)}
	}
	return v, nil
}

func (r *fieldReader) side() (Side, error) {
	v, err := r.enum("side", sideNames)
	return Side(v), err
}

func (c *Init) unpack(r *fieldReader) (err error) {
	if c.PoolSeed, err = r.seed(); err != nil {
		return err
	}
	if c.MaxNumberOfAssets, err = r.u32("max_number_of_assets"); err != nil {
		return err
	}
	c.NumberOfMarkets, err = r.u16("number_of_markets")
	return err
}

func (c *Create) unpack(r *fieldReader) (err error) {
	if c.PoolSeed, err = r.seed(); err != nil {
		return err
	}
	if c.ExchangeProgramID, err = r.key("exchange_program_id"); err != nil {
		return err
	}
	if c.SignalProviderKey, err = r.key("signal_provider_key"); err != nil {
		return err
	}

	count, err := r.u16("market_count")
	if err != nil {
		return err
	}
	if count > 0 {
		c.Markets = make([]Key, count)
	}
	for i := range c.Markets {
		if c.Markets[i], err = r.key("markets"); err != nil {
			return err
		}
	}

	// Deposit amounts carry no count: every whole 8-byte group left is one
	// amount.
	for r.remaining() >= 8 {
		amount, err := r.u64("deposit_amounts")
		if err != nil {
			return err
		}
		c.DepositAmounts = append(c.DepositAmounts, amount)
	}
	return nil
}

func (c *Deposit) unpack(r *fieldReader) (err error) {
	if c.PoolSeed, err = r.seed(); err != nil {
		return err
	}
	c.PoolTokenAmount, err = r.u64("pool_token_amount")
	return err
}

func (c *CreateOrder) unpack(r *fieldReader) (err error) {
	if c.PoolSeed, err = r.seed(); err != nil {
		return err
	}
	if c.Side, err = r.side(); err != nil {
		return err
	}
	if c.LimitPrice, err = r.nonZeroU64("limit_price"); err != nil {
		return err
	}
	if c.TradeRatio, err = r.nonZeroU16("trade_ratio"); err != nil {
		return err
	}
	orderType, err := r.enum("order_type", orderTypeNames)
	if err != nil {
		return err
	}
	c.OrderType = OrderType(orderType)
	if c.ClientID, err = r.u64("client_id"); err != nil {
		return err
	}
	selfTrade, err := r.enum("self_trade_behavior", selfTradeNames)
	if err != nil {
		return err
	}
	c.SelfTradeBehavior = SelfTradeBehavior(selfTrade)
	if c.SourceIndex, err = r.u64("source_index"); err != nil {
		return err
	}
	if c.TargetIndex, err = r.u64("target_index"); err != nil {
		return err
	}
	if c.MarketIndex, err = r.u16("market_index"); err != nil {
		return err
	}
	if c.CoinLotSize, err = r.u64("coin_lot_size"); err != nil {
		return err
	}
	if c.PcLotSize, err = r.u64("pc_lot_size"); err != nil {
		return err
	}
	c.TargetMint, err = r.key("target_mint")
	return err
}

func (c *CancelOrder) unpack(r *fieldReader) (err error) {
	if c.PoolSeed, err = r.seed(); err != nil {
		return err
	}
	if c.Side, err = r.side(); err != nil {
		return err
	}
	c.OrderID, err = r.u128("order_id")
	return err
}

func (c *SettleFunds) unpack(r *fieldReader) (err error) {
	if c.PoolSeed, err = r.seed(); err != nil {
		return err
	}
	if c.PcIndex, err = r.u64("pc_index"); err != nil {
		return err
	}
	c.CoinIndex, err = r.u64("coin_index")
	return err
}

func (c *Redeem) unpack(r *fieldReader) (err error) {
	if c.PoolSeed, err = r.seed(); err != nil {
		return err
	}
	c.PoolTokenAmount, err = r.u64("pool_token_amount")
	return err
}
