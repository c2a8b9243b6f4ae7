package state

// Environment is the immutable per-contract data the transfer layer reads
// from (spec.md §3 "Environment"): the deployed code bytes CODESIZE/
// CODECOPY consume. It is shared by reference across every trace forked
// from the same contract, never cloned.
type Environment struct {
	Contract string
	Code     []byte
}

func NewEnvironment(contract string, code []byte) *Environment {
	return &Environment{Contract: contract, Code: code}
}
