package engine

import (
	"fmt"

	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

// Resolve turns an SSA stack operand — a concrete literal or a reference to
// another instruction's result — into a Word, uniformly, via the sum type
// rather than an inheritance hierarchy (spec.md §9 "SSA-value
// polymorphism").
func Resolve(v ssa.StackValue, regs *state.Registers) symbolic.Word {
	if v.IsConst {
		return symbolic.FromBytes(v.Const)
	}
	w, ok := regs.Get(v.Ref)
	if !ok {
		// Absence propagated as a fresh symbol tagged with the missing
		// SSA index, rather than panicking the analysis over a lifter gap.
		return symbolic.NewSymbol(fmt.Sprintf("undefined_%d", v.Ref))
	}
	return w
}

func operand(instr *ssa.Instruction, i int, regs *state.Registers) symbolic.Word {
	return Resolve(instr.Operands[i], regs)
}

func requireArity(instr *ssa.Instruction, n int) error {
	if len(instr.Operands) < n {
		return ErrMalformedInstruction
	}
	return nil
}
