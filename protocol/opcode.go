package protocol

// Opcode is the one-byte discriminant that prefixes every instruction payload.
//
// The set is closed: adding a command kind is a wire format version change.
// Decoders built against this table keep rejecting tags they do not know
// instead of guessing.
type Opcode uint8

const (
	// Pool administration
	OpInit    Opcode = 0
	OpCreate  Opcode = 1
	OpDeposit Opcode = 2

	// Signal provider trading
	OpCreateOrder Opcode = 3
	OpCancelOrder Opcode = 4

	// Permissionless crank and withdrawal
	OpSettleFunds Opcode = 5
	OpRedeem      Opcode = 6
)

var opcodeNames = enumTable{
	"init",
	"create",
	"deposit",
	"create_order",
	"cancel_order",
	"settle_funds",
	"redeem",
}

// registry maps every opcode to a constructor of its empty command value.
// Both Unpack and the JSON envelope resolve variants through it.
var registry = [...]func() Command{
	OpInit:        func() Command { return &Init{} },
	OpCreate:      func() Command { return &Create{} },
	OpDeposit:     func() Command { return &Deposit{} },
	OpCreateOrder: func() Command { return &CreateOrder{} },
	OpCancelOrder: func() Command { return &CancelOrder{} },
	OpSettleFunds: func() Command { return &SettleFunds{} },
	OpRedeem:      func() Command { return &Redeem{} },
}

// IsValid reports whether the opcode is registered.
func (op Opcode) IsValid() bool {
	return int(op) < len(registry)
}

func (op Opcode) String() string {
	return opcodeNames.name(uint8(op))
}

// MarshalText encodes the opcode as its snake_case command name.
func (op Opcode) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (op *Opcode) UnmarshalText(text []byte) error {
	code, ok := opcodeNames.code(string(text))
	if !ok {
		return &DecodeError{Err: ErrUnknownOpcode, Field: string(text)}
	}
	*op = Opcode(code)
	return nil
}

func newCommand(op Opcode) (Command, error) {
	if !op.IsValid() {
		return nil, &DecodeError{Err: ErrUnknownOpcode, Opcode: op, Value: uint64(op)}
	}
	return registry[op](), nil
}
