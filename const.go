package poolbot

const (
	// ProtocolVersion is the instruction wire format version understood by this module.
	// Adding a command kind or changing a field layout increments it.
	ProtocolVersion = 1

	// DefaultRingBufferSize is the submission queue capacity of a Processor.
	DefaultRingBufferSize = 1024
)
