package poolbot

import (
	"context"
	"testing"

	"github.com/0x5487/poolbot/protocol"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountFlags struct {
	key      solana.PublicKey
	writable bool
	signer   bool
}

func assertAccounts(t *testing.T, expected []accountFlags, actual solana.AccountMetaSlice) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i, want := range expected {
		assert.Equal(t, want.key, actual[i].PublicKey, "account %d", i)
		assert.Equal(t, want.writable, actual[i].IsWritable, "account %d writable", i)
		assert.Equal(t, want.signer, actual[i].IsSigner, "account %d signer", i)
	}
}

func instructionData(t *testing.T, ins *solana.GenericInstruction) []byte {
	t.Helper()
	data, err := ins.Data()
	require.NoError(t, err)
	return data
}

func TestNewInitInstruction(t *testing.T) {
	cmd := protocol.Init{PoolSeed: testPoolSeed(1), MaxNumberOfAssets: 4, NumberOfMarkets: 2}
	ins, err := NewInitInstruction(InitParams{
		ProgramID: testProgramID,
		Pool:      testPubkey(1),
		PoolMint:  testPubkey(2),
		Payer:     testPubkey(3),
		Command:   cmd,
	})
	require.NoError(t, err)

	assert.Equal(t, testProgramID, ins.ProgramID())
	assert.Equal(t, protocol.Pack(&cmd), instructionData(t, ins))
	assertAccounts(t, []accountFlags{
		{solana.SystemProgramID, false, false},
		{solana.SysVarRentPubkey, false, false},
		{solana.TokenProgramID, false, false},
		{testPubkey(1), true, false},
		{testPubkey(2), true, false},
		{testPubkey(3), true, true},
	}, ins.Accounts())
}

func TestNewCreateInstruction(t *testing.T) {
	params := CreateParams{
		ProgramID:       testProgramID,
		PoolMint:        testPubkey(1),
		TargetPoolToken: testPubkey(2),
		Pool:            testPubkey(3),
		PoolAssets:      []solana.PublicKey{testPubkey(4), testPubkey(5)},
		SourceOwner:     testPubkey(6),
		SourceAssets:    []solana.PublicKey{testPubkey(7), testPubkey(8)},
		Command: protocol.Create{
			PoolSeed:          testPoolSeed(1),
			ExchangeProgramID: testPubkey(20),
			SignalProviderKey: testPubkey(21),
			DepositAmounts:    []uint64{100, 200},
			Markets:           []protocol.Key{testPubkey(30)},
		},
	}

	t.Run("Accounts", func(t *testing.T) {
		ins, err := NewCreateInstruction(params)
		require.NoError(t, err)

		assert.Equal(t, protocol.Pack(&params.Command), instructionData(t, ins))
		assertAccounts(t, []accountFlags{
			{solana.TokenProgramID, false, false},
			{testPubkey(1), true, false},
			{testPubkey(2), true, false},
			{testPubkey(3), true, false},
			{testPubkey(4), true, false},
			{testPubkey(5), true, false},
			{testPubkey(6), false, true},
			{testPubkey(7), true, false},
			{testPubkey(8), true, false},
		}, ins.Accounts())
	})

	t.Run("MismatchedAssets", func(t *testing.T) {
		p := params
		p.SourceAssets = p.SourceAssets[:1]
		_, err := NewCreateInstruction(p)
		assert.ErrorIs(t, err, ErrInvalidParam)
	})

	t.Run("MismatchedAmounts", func(t *testing.T) {
		p := params
		p.Command.DepositAmounts = []uint64{100}
		_, err := NewCreateInstruction(p)
		assert.ErrorIs(t, err, ErrInvalidParam)
	})
}

func TestNewDepositInstruction(t *testing.T) {
	sub := depositSubmission(t, 10)

	assert.Equal(t, testProgramID, sub.ProgramID)
	assertAccounts(t, []accountFlags{
		{solana.TokenProgramID, false, false},
		{testPubkey(1), true, false},
		{testPubkey(2), true, false},
		{testPubkey(3), false, false},
		{testPubkey(4), true, false},
		{testPubkey(5), false, true},
		{testPubkey(6), true, false},
	}, sub.Accounts)

	_, err := NewDepositInstruction(DepositParams{
		ProgramID:  testProgramID,
		PoolAssets: []solana.PublicKey{testPubkey(4)},
	})
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestNewCreateOrderInstruction(t *testing.T) {
	params := CreateOrderParams{
		ProgramID:      testProgramID,
		SignalProvider: testPubkey(1),
		Market:         testPubkey(2),
		PayerPoolAsset: testPubkey(3),
		OpenOrders:     testPubkey(4),
		RequestQueue:   testPubkey(5),
		Pool:           testPubkey(6),
		CoinVault:      testPubkey(7),
		PcVault:        testPubkey(8),
		DexProgram:     testPubkey(9),
		Command: protocol.CreateOrder{
			PoolSeed:   testPoolSeed(1),
			Side:       protocol.SideBid,
			LimitPrice: 1000,
			TradeRatio: 32768,
			OrderType:  protocol.OrderTypeLimit,
			ClientID:   77,
			TargetMint: testPubkey(10),
		},
	}

	t.Run("Accounts", func(t *testing.T) {
		ins, err := NewCreateOrderInstruction(params)
		require.NoError(t, err)

		assert.Equal(t, protocol.Pack(&params.Command), instructionData(t, ins))
		assertAccounts(t, []accountFlags{
			{testPubkey(1), false, true},
			{testPubkey(2), true, false},
			{testPubkey(3), true, false},
			{testPubkey(4), true, false},
			{testPubkey(5), true, false},
			{testPubkey(6), true, false},
			{testPubkey(7), true, false},
			{testPubkey(8), true, false},
			{solana.TokenProgramID, false, false},
			{solana.SysVarRentPubkey, false, false},
			{testPubkey(9), false, false},
		}, ins.Accounts())
	})

	t.Run("SRMReferrer", func(t *testing.T) {
		p := params
		referrer := testPubkey(11)
		p.SRMReferrer = &referrer

		ins, err := NewCreateOrderInstruction(p)
		require.NoError(t, err)

		accounts := ins.Accounts()
		require.Len(t, accounts, 12)
		assert.Equal(t, referrer, accounts[11].PublicKey)
		assert.True(t, accounts[11].IsWritable)
	})

	t.Run("ZeroLimitPrice", func(t *testing.T) {
		p := params
		p.Command.LimitPrice = 0
		_, err := NewCreateOrderInstruction(p)
		assert.ErrorIs(t, err, ErrInvalidParam)
		assert.ErrorIs(t, err, protocol.ErrZeroConstraintViolated)
	})

	t.Run("ZeroTradeRatio", func(t *testing.T) {
		p := params
		p.Command.TradeRatio = 0
		_, err := NewCreateOrderInstruction(p)
		assert.ErrorIs(t, err, protocol.ErrZeroConstraintViolated)
	})

	t.Run("InvalidOrderType", func(t *testing.T) {
		p := params
		p.Command.OrderType = protocol.OrderType(3)
		_, err := NewCreateOrderInstruction(p)
		assert.ErrorIs(t, err, protocol.ErrInvalidEnumerationValue)
	})
}

func TestNewCancelOrderInstruction(t *testing.T) {
	cmd := protocol.CancelOrder{
		PoolSeed: testPoolSeed(1),
		Side:     protocol.SideAsk,
		OrderID:  protocol.Uint128{Lo: 1, Hi: 2},
	}
	ins, err := NewCancelOrderInstruction(CancelOrderParams{
		ProgramID:      testProgramID,
		SignalProvider: testPubkey(1),
		Market:         testPubkey(2),
		OpenOrders:     testPubkey(3),
		RequestQueue:   testPubkey(4),
		Pool:           testPubkey(5),
		DexProgram:     testPubkey(6),
		Command:        cmd,
	})
	require.NoError(t, err)

	assert.Equal(t, protocol.Pack(&cmd), instructionData(t, ins))
	assertAccounts(t, []accountFlags{
		{testPubkey(1), false, true},
		{testPubkey(2), false, false},
		{testPubkey(3), true, false},
		{testPubkey(4), true, false},
		{testPubkey(5), false, false},
		{testPubkey(6), false, false},
	}, ins.Accounts())

	cmd.Side = protocol.Side(2)
	_, err = NewCancelOrderInstruction(CancelOrderParams{ProgramID: testProgramID, Command: cmd})
	assert.ErrorIs(t, err, protocol.ErrInvalidEnumerationValue)
}

func TestNewSettleFundsInstruction(t *testing.T) {
	params := SettleFundsParams{
		ProgramID:      testProgramID,
		Market:         testPubkey(1),
		OpenOrders:     testPubkey(2),
		Pool:           testPubkey(3),
		PoolMint:       testPubkey(4),
		CoinVault:      testPubkey(5),
		PcVault:        testPubkey(6),
		PoolCoinWallet: testPubkey(7),
		PoolPcWallet:   testPubkey(8),
		VaultSigner:    testPubkey(9),
		DexProgram:     testPubkey(10),
		Command:        protocol.SettleFunds{PoolSeed: testPoolSeed(1), PcIndex: 0, CoinIndex: 1},
	}

	ins, err := NewSettleFundsInstruction(params)
	require.NoError(t, err)

	assert.Equal(t, protocol.Pack(&params.Command), instructionData(t, ins))
	accounts := ins.Accounts()
	assertAccounts(t, []accountFlags{
		{testPubkey(1), true, false},
		{testPubkey(2), true, false},
		{testPubkey(3), true, false},
		{testPubkey(4), false, false},
		{testPubkey(5), true, false},
		{testPubkey(6), true, false},
		{testPubkey(7), true, false},
		{testPubkey(8), true, false},
		{testPubkey(9), false, false},
		{solana.TokenProgramID, false, false},
		{testPubkey(10), false, false},
	}, accounts)
	for _, account := range accounts {
		assert.False(t, account.IsSigner)
	}

	referrer := testPubkey(11)
	params.ReferrerPc = &referrer
	ins, err = NewSettleFundsInstruction(params)
	require.NoError(t, err)
	assert.Len(t, ins.Accounts(), 12)
}

func TestNewRedeemInstruction(t *testing.T) {
	params := RedeemParams{
		ProgramID:            testProgramID,
		PoolMint:             testPubkey(1),
		SourcePoolTokenOwner: testPubkey(2),
		SourcePoolToken:      testPubkey(3),
		Pool:                 testPubkey(4),
		PoolAssets:           []solana.PublicKey{testPubkey(5)},
		TargetAssets:         []solana.PublicKey{testPubkey(6)},
		Command:              protocol.Redeem{PoolSeed: testPoolSeed(1), PoolTokenAmount: 9},
	}

	ins, err := NewRedeemInstruction(params)
	require.NoError(t, err)

	assert.Equal(t, protocol.Pack(&params.Command), instructionData(t, ins))
	assertAccounts(t, []accountFlags{
		{solana.TokenProgramID, false, false},
		{testPubkey(1), true, false},
		{testPubkey(2), false, true},
		{testPubkey(3), true, false},
		{testPubkey(4), true, false},
		{testPubkey(5), true, false},
		{testPubkey(6), true, false},
	}, ins.Accounts())

	params.TargetAssets = nil
	_, err = NewRedeemInstruction(params)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestInstructionRoundTripThroughProcessor(t *testing.T) {
	handler := &recordingHandler{}
	p := NewProcessor(testProgramID, handler)

	cmd := protocol.CreateOrder{
		PoolSeed:          testPoolSeed(2),
		Side:              protocol.SideAsk,
		LimitPrice:        5,
		TradeRatio:        1,
		OrderType:         protocol.OrderTypeImmediateOrCancel,
		SelfTradeBehavior: protocol.SelfTradeCancelProvide,
		MarketIndex:       3,
	}
	ins, err := NewCreateOrderInstruction(CreateOrderParams{ProgramID: testProgramID, Command: cmd})
	require.NoError(t, err)

	sub, err := NewSubmission(ins)
	require.NoError(t, err)

	_, err = p.Process(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, []protocol.Command{&cmd}, handler.received())
}
