package state

import (
	"fmt"

	"github.com/core-coin/conkas/internal/symbolic"
)

// State is the aggregate symbolic machine state of spec.md §3: registers,
// memory, storage, environment, the last RETURN/REVERT data, and the
// mutually-exclusive termination flags.
type State struct {
	Registers *Registers
	Memory    *Memory
	Storage   *Storage
	Env       *Environment

	ReturnData       symbolic.Word
	ReturnDataBytes   []byte
	HasReturnData     bool

	Reverted   bool
	Stopped    bool
	Destructed bool
	Invalid    bool
}

// New builds a fresh state for environment env.
func New(env *Environment) *State {
	return &State{
		Registers: NewRegisters(),
		Memory:    NewMemory(),
		Storage:   NewStorage(),
		Env:       env,

		ReturnData: symbolic.FromUint64(0),
	}
}

// Terminated reports whether any termination flag is set; dispatching a
// further instruction on a terminated state is invalid (spec.md §3
// invariants).
func (s *State) Terminated() bool {
	return s.Reverted || s.Stopped || s.Destructed || s.Invalid
}

// Fingerprint renders a deterministic summary of the whole state's
// content, used by AnalyzedBlock equality/hash (spec.md §3 "equality and
// hash use all three components").
func (s *State) Fingerprint() string {
	return fmt.Sprintf("regs{%s}mem{%s}store{%s}ret{%s,%v}flags{%v,%v,%v,%v}",
		s.Registers.Fingerprint(), s.Memory.Fingerprint(), s.Storage.Fingerprint(),
		s.ReturnData.String(), s.HasReturnData,
		s.Reverted, s.Stopped, s.Destructed, s.Invalid)
}

// Clone deep-clones registers, memory and storage, and shares the
// immutable environment by reference (spec.md §5 "Memory ownership").
func (s *State) Clone() *State {
	return &State{
		Registers:       s.Registers.Clone(),
		Memory:          s.Memory.Clone(),
		Storage:         s.Storage.Clone(),
		Env:             s.Env,
		ReturnData:      s.ReturnData,
		ReturnDataBytes: append([]byte(nil), s.ReturnDataBytes...),
		HasReturnData:   s.HasReturnData,
		Reverted:        s.Reverted,
		Stopped:         s.Stopped,
		Destructed:      s.Destructed,
		Invalid:         s.Invalid,
	}
}
