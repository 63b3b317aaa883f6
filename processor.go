package poolbot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0x5487/poolbot/protocol"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/xid"
)

// Submission is one instruction as the program receives it: the program it
// is addressed to, its ordered account list and its payload.
type Submission struct {
	ProgramID solana.PublicKey
	Accounts  solana.AccountMetaSlice
	Data      []byte
}

// NewSubmission converts a built instruction into a Submission.
func NewSubmission(ins solana.Instruction) (*Submission, error) {
	data, err := ins.Data()
	if err != nil {
		return nil, err
	}
	return &Submission{
		ProgramID: ins.ProgramID(),
		Accounts:  ins.Accounts(),
		Data:      data,
	}, nil
}

// Handler executes decoded commands. Account checks and state transitions
// belong to the implementation; the Processor only decodes and routes.
type Handler interface {
	Init(ctx context.Context, cmd *protocol.Init, accounts solana.AccountMetaSlice) error
	Create(ctx context.Context, cmd *protocol.Create, accounts solana.AccountMetaSlice) error
	Deposit(ctx context.Context, cmd *protocol.Deposit, accounts solana.AccountMetaSlice) error
	CreateOrder(ctx context.Context, cmd *protocol.CreateOrder, accounts solana.AccountMetaSlice) error
	CancelOrder(ctx context.Context, cmd *protocol.CancelOrder, accounts solana.AccountMetaSlice) error
	SettleFunds(ctx context.Context, cmd *protocol.SettleFunds, accounts solana.AccountMetaSlice) error
	Redeem(ctx context.Context, cmd *protocol.Redeem, accounts solana.AccountMetaSlice) error
}

// UnimplementedHandler rejects every command with ErrNotFound. Embed it to
// implement a subset of Handler.
type UnimplementedHandler struct{}

func unimplemented(op protocol.Opcode) error {
	return fmt.Errorf("%w: no handler for %s", ErrNotFound, op)
}

func (UnimplementedHandler) Init(context.Context, *protocol.Init, solana.AccountMetaSlice) error {
	return unimplemented(protocol.OpInit)
}

func (UnimplementedHandler) Create(context.Context, *protocol.Create, solana.AccountMetaSlice) error {
	return unimplemented(protocol.OpCreate)
}

func (UnimplementedHandler) Deposit(context.Context, *protocol.Deposit, solana.AccountMetaSlice) error {
	return unimplemented(protocol.OpDeposit)
}

func (UnimplementedHandler) CreateOrder(context.Context, *protocol.CreateOrder, solana.AccountMetaSlice) error {
	return unimplemented(protocol.OpCreateOrder)
}

func (UnimplementedHandler) CancelOrder(context.Context, *protocol.CancelOrder, solana.AccountMetaSlice) error {
	return unimplemented(protocol.OpCancelOrder)
}

func (UnimplementedHandler) SettleFunds(context.Context, *protocol.SettleFunds, solana.AccountMetaSlice) error {
	return unimplemented(protocol.OpSettleFunds)
}

func (UnimplementedHandler) Redeem(context.Context, *protocol.Redeem, solana.AccountMetaSlice) error {
	return unimplemented(protocol.OpRedeem)
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithCommandLog sets the journal every processed submission is published to.
func WithCommandLog(l CommandLog) ProcessorOption {
	return func(p *Processor) {
		p.commandLog = l
	}
}

// WithRingBufferSize sets the capacity of the Submit queue. It must be a
// power of 2.
func WithRingBufferSize(size int64) ProcessorOption {
	return func(p *Processor) {
		p.ringSize = size
	}
}

// Processor decodes submissions addressed to one program and routes them to
// a Handler.
//
// Process handles a submission on the caller's goroutine. Submit queues it on
// a ring buffer whose single consumer processes submissions in publish order.
type Processor struct {
	mu         sync.RWMutex
	isShutdown atomic.Bool
	isStarted  atomic.Bool

	programID  solana.PublicKey
	handler    Handler
	commandLog CommandLog
	ringSize   int64
	ring       *RingBuffer[*Submission]
}

// NewProcessor creates a Processor for programID. Call Start before Submit.
func NewProcessor(programID solana.PublicKey, handler Handler, opts ...ProcessorOption) *Processor {
	p := &Processor{
		programID:  programID,
		handler:    handler,
		commandLog: NewDiscardCommandLog(),
		ringSize:   DefaultRingBufferSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.ring = NewRingBuffer[*Submission](p.ringSize, p)
	return p
}

// Start starts the consumer of the Submit queue.
func (p *Processor) Start() {
	if p.isStarted.CompareAndSwap(false, true) {
		p.ring.Start()
	}
}

// Submit queues a submission for asynchronous processing. The outcome is
// published to the CommandLog.
func (p *Processor) Submit(sub *Submission) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.isShutdown.Load() {
		return ErrShutdown
	}
	if !p.ring.Publish(sub) {
		return ErrShutdown
	}
	return nil
}

// Process decodes sub and invokes the matching Handler method. The returned
// record is also published to the CommandLog.
func (p *Processor) Process(ctx context.Context, sub *Submission) (*CommandRecord, error) {
	if p.isShutdown.Load() {
		return nil, ErrShutdown
	}
	return p.process(ctx, sub)
}

// OnEvent implements EventHandler for the Submit queue.
func (p *Processor) OnEvent(sub *Submission) {
	_, _ = p.process(context.Background(), sub)
}

// Shutdown stops accepting submissions and waits until the queued ones have
// been processed or ctx is done.
func (p *Processor) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.isShutdown.Store(true)
	p.mu.Unlock()

	if !p.isStarted.Load() {
		return nil
	}
	if err := p.ring.Shutdown(ctx); err != nil {
		return fmt.Errorf("%w: %d submissions pending", ErrTimeout, p.ring.PendingEvents())
	}
	return nil
}

func (p *Processor) process(ctx context.Context, sub *Submission) (*CommandRecord, error) {
	record := &CommandRecord{
		TraceID:   xid.New().String(),
		ProgramID: sub.ProgramID,
		Accounts:  len(sub.Accounts),
		CreatedAt: time.Now().UTC(),
	}
	if len(sub.Data) > 0 {
		record.Opcode = protocol.Opcode(sub.Data[0])
	}

	cmd, err := p.decode(sub)
	if err != nil {
		record.Status = RecordRejected
		record.Reason = err.Error()
		logger.Warn("instruction rejected",
			"trace_id", record.TraceID,
			"opcode", record.Opcode.String(),
			"error", err)
		p.commandLog.Publish(record)
		return record, err
	}

	record.PoolSeed = cmd.Seed()
	record.Command = cmd

	if err := p.dispatch(ctx, cmd, sub.Accounts); err != nil {
		record.Status = RecordFailed
		record.Reason = err.Error()
		logger.Error("instruction failed",
			"trace_id", record.TraceID,
			"opcode", record.Opcode.String(),
			"pool_seed", record.PoolSeed.String(),
			"error", err)
		p.commandLog.Publish(record)
		return record, err
	}

	record.Status = RecordAccepted
	p.commandLog.Publish(record)
	return record, nil
}

func (p *Processor) decode(sub *Submission) (protocol.Command, error) {
	if !sub.ProgramID.Equals(p.programID) {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrProgramMismatch, sub.ProgramID, p.programID)
	}
	return protocol.Unpack(sub.Data)
}

func (p *Processor) dispatch(ctx context.Context, cmd protocol.Command, accounts solana.AccountMetaSlice) error {
	switch c := cmd.(type) {
	case *protocol.Init:
		return p.handler.Init(ctx, c, accounts)
	case *protocol.Create:
		return p.handler.Create(ctx, c, accounts)
	case *protocol.Deposit:
		return p.handler.Deposit(ctx, c, accounts)
	case *protocol.CreateOrder:
		return p.handler.CreateOrder(ctx, c, accounts)
	case *protocol.CancelOrder:
		return p.handler.CancelOrder(ctx, c, accounts)
	case *protocol.SettleFunds:
		return p.handler.SettleFunds(ctx, c, accounts)
	case *protocol.Redeem:
		return p.handler.Redeem(ctx, c, accounts)
	}
	return unimplemented(cmd.Opcode())
}
