package poolbot

import (
	"sync"
	"time"

	"github.com/0x5487/poolbot/protocol"
	"github.com/gagliardetto/solana-go"
)

// RecordStatus is the outcome of processing one submission.
type RecordStatus string

const (
	RecordAccepted RecordStatus = "accepted" // decoded and handled
	RecordRejected RecordStatus = "rejected" // wrong program or undecodable payload
	RecordFailed   RecordStatus = "failed"   // decoded, but the handler returned an error
)

// CommandRecord is the journal entry written for every processed submission.
type CommandRecord struct {
	TraceID   string            `json:"trace_id"`
	Status    RecordStatus      `json:"status"`
	ProgramID solana.PublicKey  `json:"program_id"`
	Opcode    protocol.Opcode   `json:"opcode"`
	PoolSeed  protocol.PoolSeed `json:"pool_seed"`
	Command   protocol.Command  `json:"command,omitempty"`
	Accounts  int               `json:"accounts"`
	Reason    string            `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// CommandLog receives journal entries from a Processor.
//
// Publish is called on the processing goroutine; implementations that hand
// records to other goroutines must not mutate them.
type CommandLog interface {
	Publish(...*CommandRecord)
}

// MemoryCommandLog stores records in memory, useful for testing and tooling.
type MemoryCommandLog struct {
	mu      sync.RWMutex
	Records []*CommandRecord
}

// NewMemoryCommandLog creates a new MemoryCommandLog.
func NewMemoryCommandLog() *MemoryCommandLog {
	return &MemoryCommandLog{
		Records: make([]*CommandRecord, 0),
	}
}

// Publish appends copies of the records.
func (m *MemoryCommandLog) Publish(records ...*CommandRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range records {
		cpy := new(CommandRecord)
		*cpy = *record
		m.Records = append(m.Records, cpy)
	}
}

// Count returns the number of records stored.
func (m *MemoryCommandLog) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Records)
}

// Get returns the record at the specified index.
func (m *MemoryCommandLog) Get(index int) *CommandRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Records[index]
}

// Filter returns the records with the given status, in publish order.
func (m *MemoryCommandLog) Filter(status RecordStatus) []*CommandRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*CommandRecord
	for _, record := range m.Records {
		if record.Status == status {
			out = append(out, record)
		}
	}
	return out
}

// DiscardCommandLog discards all records, useful for benchmarking.
type DiscardCommandLog struct{}

// NewDiscardCommandLog creates a new DiscardCommandLog.
func NewDiscardCommandLog() *DiscardCommandLog {
	return &DiscardCommandLog{}
}

// Publish does nothing.
func (DiscardCommandLog) Publish(...*CommandRecord) {}
