package poolbot

import "errors"

var (
	ErrInvalidParam    = errors.New("the param is invalid")
	ErrShutdown        = errors.New("processor is shutting down")
	ErrNotFound        = errors.New("not found")
	ErrProgramMismatch = errors.New("instruction is addressed to another program")
	ErrTimeout         = errors.New("timeout")
)
