package protocol

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
)

// Pack encodes cmd into its canonical payload. The output is deterministic
// and Unpack inverts it.
//
// Pack does not validate. A CreateOrder with a zero LimitPrice or TradeRatio,
// or a Create with more than MaxMarkets markets, encodes to bytes that Unpack
// rejects or misreads; call Validate first when the value comes from outside.
func Pack(cmd Command) []byte {
	w := &fieldWriter{}
	w.enc = bin.NewBinEncoder(&w.buf)
	w.u8(uint8(cmd.Opcode()))
	cmd.pack(w)
	return w.buf.Bytes()
}

// fieldWriter writes into an in-memory buffer, which cannot fail, so the
// encoder errors are dropped.
type fieldWriter struct {
	buf bytes.Buffer
	enc *bin.Encoder
}

func (w *fieldWriter) bytes(b []byte) { _ = w.enc.WriteBytes(b, false) }
func (w *fieldWriter) u8(v uint8)     { _ = w.enc.WriteByte(v) }
func (w *fieldWriter) u16(v uint16)   { _ = w.enc.WriteUint16(v, bin.LE) }
func (w *fieldWriter) u32(v uint32)   { _ = w.enc.WriteUint32(v, bin.LE) }
func (w *fieldWriter) u64(v uint64)   { _ = w.enc.WriteUint64(v, bin.LE) }

func (w *fieldWriter) u128(v Uint128) {
	w.u64(v.Lo)
	w.u64(v.Hi)
}

func (w *fieldWriter) seed(s PoolSeed) { w.bytes(s[:]) }
func (w *fieldWriter) key(k Key)       { w.bytes(k[:]) }

func (c *Init) pack(w *fieldWriter) {
	w.seed(c.PoolSeed)
	w.u32(c.MaxNumberOfAssets)
	w.u16(c.NumberOfMarkets)
}

func (c *Create) pack(w *fieldWriter) {
	w.seed(c.PoolSeed)
	w.key(c.ExchangeProgramID)
	w.key(c.SignalProviderKey)
	w.u16(uint16(len(c.Markets)))
	for _, market := range c.Markets {
		w.key(market)
	}
	// No count: Unpack consumes 8-byte groups to the end of the payload.
	for _, amount := range c.DepositAmounts {
		w.u64(amount)
	}
}

func (c *Deposit) pack(w *fieldWriter) {
	w.seed(c.PoolSeed)
	w.u64(c.PoolTokenAmount)
}

func (c *CreateOrder) pack(w *fieldWriter) {
	w.seed(c.PoolSeed)
	w.u8(uint8(c.Side))
	w.u64(c.LimitPrice)
	w.u16(c.TradeRatio)
	w.u8(uint8(c.OrderType))
	w.u64(c.ClientID)
	w.u8(uint8(c.SelfTradeBehavior))
	w.u64(c.SourceIndex)
	w.u64(c.TargetIndex)
	w.u16(c.MarketIndex)
	w.u64(c.CoinLotSize)
	w.u64(c.PcLotSize)
	w.key(c.TargetMint)
}

func (c *CancelOrder) pack(w *fieldWriter) {
	w.seed(c.PoolSeed)
	w.u8(uint8(c.Side))
	w.u128(c.OrderID)
}

func (c *SettleFunds) pack(w *fieldWriter) {
	w.seed(c.PoolSeed)
	w.u64(c.PcIndex)
	w.u64(c.CoinIndex)
}

func (c *Redeem) pack(w *fieldWriter) {
	w.seed(c.PoolSeed)
	w.u64(c.PoolTokenAmount)
}
