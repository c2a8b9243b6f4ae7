package engine

import "errors"

// Error kinds and propagation follow spec.md §7 exactly: a malformed
// instruction or an unsupported opcode is fatal for the enclosing
// contract's analysis (the driver logs and moves on to the next
// contract); a symbolic jump destination or a symbolic length on a
// byte-copying opcode is soft (handled inline by the transfer function,
// never surfaced as an error).
var (
	ErrMalformedInstruction = errors.New("engine: malformed instruction")
	ErrUnsupportedOpcode    = errors.New("engine: unsupported opcode")
	ErrTerminatedState      = errors.New("engine: instruction dispatched on a terminated state")
)
