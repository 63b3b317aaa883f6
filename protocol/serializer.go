package protocol

import (
	"encoding/json"
	"fmt"
)

// Serializer defines the contract for turning commands into bytes and back.
// BinarySerializer produces the on-chain wire format; JSONSerializer produces
// the envelope used by tooling.
type Serializer interface {
	Marshal(cmd Command) ([]byte, error)
	Unmarshal(data []byte) (Command, error)
}

// BinarySerializer is the wire codec.
type BinarySerializer struct{}

// Marshal validates cmd and packs it.
func (BinarySerializer) Marshal(cmd Command) ([]byte, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return Pack(cmd), nil
}

func (BinarySerializer) Unmarshal(data []byte) (Command, error) {
	return Unpack(data)
}

// Envelope is the JSON form of a command:
//
//	{"type": "create_order", "data": {...}}
//
// Keys are base58, the pool seed is hex and 128-bit order ids are decimal
// strings.
type Envelope struct {
	Type Opcode          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// JSONSerializer encodes commands as an Envelope.
type JSONSerializer struct {
	// Indent, when set, pretty-prints the output.
	Indent string
}

func (s JSONSerializer) Marshal(cmd Command) ([]byte, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	env := Envelope{Type: cmd.Opcode(), Data: data}
	if s.Indent != "" {
		return json.MarshalIndent(env, "", s.Indent)
	}
	return json.Marshal(env)
}

// Unmarshal decodes an Envelope and validates the resulting command.
func (JSONSerializer) Unmarshal(data []byte) (Command, error) {
	var env struct {
		Type *Opcode         `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Type == nil {
		return nil, fmt.Errorf("envelope: missing type")
	}
	cmd, err := newCommand(*env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%s: missing data", cmd.Opcode())
	}
	if err := json.Unmarshal(env.Data, cmd); err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Opcode(), err)
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}
