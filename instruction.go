package poolbot

import (
	"fmt"

	"github.com/0x5487/poolbot/protocol"
	"github.com/gagliardetto/solana-go"
)

// InitParams holds the accounts of an Init instruction.
type InitParams struct {
	ProgramID solana.PublicKey
	Pool      solana.PublicKey
	PoolMint  solana.PublicKey
	Payer     solana.PublicKey
	Command   protocol.Init
}

// CreateParams holds the accounts of a Create instruction. PoolAssets and
// SourceAssets are parallel lists, one entry per deposited token, in the
// order of Command.DepositAmounts.
type CreateParams struct {
	ProgramID       solana.PublicKey
	PoolMint        solana.PublicKey
	TargetPoolToken solana.PublicKey
	Pool            solana.PublicKey
	PoolAssets      []solana.PublicKey
	SourceOwner     solana.PublicKey
	SourceAssets    []solana.PublicKey
	Command         protocol.Create
}

// DepositParams holds the accounts of a Deposit instruction.
type DepositParams struct {
	ProgramID       solana.PublicKey
	PoolMint        solana.PublicKey
	TargetPoolToken solana.PublicKey
	Pool            solana.PublicKey
	PoolAssets      []solana.PublicKey
	SourceOwner     solana.PublicKey
	SourceAssets    []solana.PublicKey
	Command         protocol.Deposit
}

// CreateOrderParams holds the accounts of a CreateOrder instruction.
type CreateOrderParams struct {
	ProgramID      solana.PublicKey
	SignalProvider solana.PublicKey
	Market         solana.PublicKey
	PayerPoolAsset solana.PublicKey
	OpenOrders     solana.PublicKey
	RequestQueue   solana.PublicKey
	Pool           solana.PublicKey
	CoinVault      solana.PublicKey
	PcVault        solana.PublicKey
	DexProgram     solana.PublicKey
	SRMReferrer    *solana.PublicKey // optional
	Command        protocol.CreateOrder
}

// CancelOrderParams holds the accounts of a CancelOrder instruction.
type CancelOrderParams struct {
	ProgramID      solana.PublicKey
	SignalProvider solana.PublicKey
	Market         solana.PublicKey
	OpenOrders     solana.PublicKey
	RequestQueue   solana.PublicKey
	Pool           solana.PublicKey
	DexProgram     solana.PublicKey
	Command        protocol.CancelOrder
}

// SettleFundsParams holds the accounts of a SettleFunds instruction.
type SettleFundsParams struct {
	ProgramID      solana.PublicKey
	Market         solana.PublicKey
	OpenOrders     solana.PublicKey
	Pool           solana.PublicKey
	PoolMint       solana.PublicKey
	CoinVault      solana.PublicKey
	PcVault        solana.PublicKey
	PoolCoinWallet solana.PublicKey
	PoolPcWallet   solana.PublicKey
	VaultSigner    solana.PublicKey
	DexProgram     solana.PublicKey
	ReferrerPc     *solana.PublicKey // optional
	Command        protocol.SettleFunds
}

// RedeemParams holds the accounts of a Redeem instruction.
type RedeemParams struct {
	ProgramID            solana.PublicKey
	PoolMint             solana.PublicKey
	SourcePoolTokenOwner solana.PublicKey
	SourcePoolToken      solana.PublicKey
	Pool                 solana.PublicKey
	PoolAssets           []solana.PublicKey
	TargetAssets         []solana.PublicKey
	Command              protocol.Redeem
}

// NewInitInstruction builds an Init instruction.
func NewInitInstruction(p InitParams) (*solana.GenericInstruction, error) {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(p.Pool, true, false),
		solana.NewAccountMeta(p.PoolMint, true, false),
		solana.NewAccountMeta(p.Payer, true, true),
	}
	return newInstruction(p.ProgramID, &p.Command, accounts)
}

// NewCreateInstruction builds a Create instruction.
func NewCreateInstruction(p CreateParams) (*solana.GenericInstruction, error) {
	if err := sameLength("pool assets", p.PoolAssets, "source assets", p.SourceAssets); err != nil {
		return nil, err
	}
	if len(p.Command.DepositAmounts) != len(p.PoolAssets) {
		return nil, fmt.Errorf("%w: %d deposit amounts for %d pool assets", ErrInvalidParam, len(p.Command.DepositAmounts), len(p.PoolAssets))
	}

	accounts := make(solana.AccountMetaSlice, 0, 5+2*len(p.PoolAssets))
	accounts = append(accounts,
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(p.PoolMint, true, false),
		solana.NewAccountMeta(p.TargetPoolToken, true, false),
		solana.NewAccountMeta(p.Pool, true, false),
	)
	accounts = appendWritable(accounts, p.PoolAssets)
	accounts = append(accounts, solana.NewAccountMeta(p.SourceOwner, false, true))
	accounts = appendWritable(accounts, p.SourceAssets)

	return newInstruction(p.ProgramID, &p.Command, accounts)
}

// NewDepositInstruction builds a Deposit instruction.
func NewDepositInstruction(p DepositParams) (*solana.GenericInstruction, error) {
	if err := sameLength("pool assets", p.PoolAssets, "source assets", p.SourceAssets); err != nil {
		return nil, err
	}

	accounts := make(solana.AccountMetaSlice, 0, 5+2*len(p.PoolAssets))
	accounts = append(accounts,
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(p.PoolMint, true, false),
		solana.NewAccountMeta(p.TargetPoolToken, true, false),
		solana.NewAccountMeta(p.Pool, false, false),
	)
	accounts = appendWritable(accounts, p.PoolAssets)
	accounts = append(accounts, solana.NewAccountMeta(p.SourceOwner, false, true))
	accounts = appendWritable(accounts, p.SourceAssets)

	return newInstruction(p.ProgramID, &p.Command, accounts)
}

// NewCreateOrderInstruction builds a CreateOrder instruction. The limit price
// and trade ratio must be nonzero.
func NewCreateOrderInstruction(p CreateOrderParams) (*solana.GenericInstruction, error) {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.SignalProvider, false, true),
		solana.NewAccountMeta(p.Market, true, false),
		solana.NewAccountMeta(p.PayerPoolAsset, true, false),
		solana.NewAccountMeta(p.OpenOrders, true, false),
		solana.NewAccountMeta(p.RequestQueue, true, false),
		solana.NewAccountMeta(p.Pool, true, false),
		solana.NewAccountMeta(p.CoinVault, true, false),
		solana.NewAccountMeta(p.PcVault, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
		solana.NewAccountMeta(p.DexProgram, false, false),
	}
	if p.SRMReferrer != nil {
		accounts = append(accounts, solana.NewAccountMeta(*p.SRMReferrer, true, false))
	}
	return newInstruction(p.ProgramID, &p.Command, accounts)
}

// NewCancelOrderInstruction builds a CancelOrder instruction.
func NewCancelOrderInstruction(p CancelOrderParams) (*solana.GenericInstruction, error) {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.SignalProvider, false, true),
		solana.NewAccountMeta(p.Market, false, false),
		solana.NewAccountMeta(p.OpenOrders, true, false),
		solana.NewAccountMeta(p.RequestQueue, true, false),
		solana.NewAccountMeta(p.Pool, false, false),
		solana.NewAccountMeta(p.DexProgram, false, false),
	}
	return newInstruction(p.ProgramID, &p.Command, accounts)
}

// NewSettleFundsInstruction builds a SettleFunds instruction. Anyone may
// submit it; no account signs.
func NewSettleFundsInstruction(p SettleFundsParams) (*solana.GenericInstruction, error) {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Market, true, false),
		solana.NewAccountMeta(p.OpenOrders, true, false),
		solana.NewAccountMeta(p.Pool, true, false),
		solana.NewAccountMeta(p.PoolMint, false, false),
		solana.NewAccountMeta(p.CoinVault, true, false),
		solana.NewAccountMeta(p.PcVault, true, false),
		solana.NewAccountMeta(p.PoolCoinWallet, true, false),
		solana.NewAccountMeta(p.PoolPcWallet, true, false),
		solana.NewAccountMeta(p.VaultSigner, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(p.DexProgram, false, false),
	}
	if p.ReferrerPc != nil {
		accounts = append(accounts, solana.NewAccountMeta(*p.ReferrerPc, true, false))
	}
	return newInstruction(p.ProgramID, &p.Command, accounts)
}

// NewRedeemInstruction builds a Redeem instruction.
func NewRedeemInstruction(p RedeemParams) (*solana.GenericInstruction, error) {
	if err := sameLength("pool assets", p.PoolAssets, "target assets", p.TargetAssets); err != nil {
		return nil, err
	}

	accounts := make(solana.AccountMetaSlice, 0, 5+2*len(p.PoolAssets))
	accounts = append(accounts,
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(p.PoolMint, true, false),
		solana.NewAccountMeta(p.SourcePoolTokenOwner, false, true),
		solana.NewAccountMeta(p.SourcePoolToken, true, false),
		solana.NewAccountMeta(p.Pool, true, false),
	)
	accounts = appendWritable(accounts, p.PoolAssets)
	accounts = appendWritable(accounts, p.TargetAssets)

	return newInstruction(p.ProgramID, &p.Command, accounts)
}

func newInstruction(programID solana.PublicKey, cmd protocol.Command, accounts solana.AccountMetaSlice) (*solana.GenericInstruction, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParam, err)
	}
	return solana.NewInstruction(programID, accounts, protocol.Pack(cmd)), nil
}

func appendWritable(accounts solana.AccountMetaSlice, keys []solana.PublicKey) solana.AccountMetaSlice {
	for _, key := range keys {
		accounts = append(accounts, solana.NewAccountMeta(key, true, false))
	}
	return accounts
}

func sameLength(aName string, a []solana.PublicKey, bName string, b []solana.PublicKey) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d %s but %d %s", ErrInvalidParam, len(a), aName, len(b), bName)
	}
	return nil
}
