package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBuffer             = errors.New("instruction buffer is empty")
	ErrUnknownOpcode           = errors.New("unknown opcode")
	ErrTruncatedField          = errors.New("field exceeds remaining buffer")
	ErrInvalidEnumerationValue = errors.New("invalid enumeration value")
	ErrZeroConstraintViolated  = errors.New("nonzero field is zero")
)

// DecodeError describes why a payload was rejected. Err is always one of the
// sentinel errors above, so callers match with errors.Is.
type DecodeError struct {
	Err    error
	Opcode Opcode
	Field  string
	// Offset is relative to the first byte after the tag.
	Offset int
	// Value holds the offending tag or enumeration byte.
	Value uint64
}

func (e *DecodeError) Error() string {
	switch {
	case errors.Is(e.Err, ErrEmptyBuffer):
		return e.Err.Error()
	case errors.Is(e.Err, ErrUnknownOpcode):
		if e.Field != "" {
			return fmt.Sprintf("%s: %q", e.Err, e.Field)
		}
		return fmt.Sprintf("%s: %d", e.Err, e.Value)
	case errors.Is(e.Err, ErrInvalidEnumerationValue):
		return fmt.Sprintf("%s: %s.%s = %d at offset %d", e.Err, e.Opcode, e.Field, e.Value, e.Offset)
	default:
		return fmt.Sprintf("%s: %s.%s at offset %d", e.Err, e.Opcode, e.Field, e.Offset)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
