package engine

import (
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

func cmpOp(fn func(a, b symbolic.Word) symbolic.Word) TransferFunc {
	return func(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
		if err := requireArity(instr, 2); err != nil {
			return nil, nil, err
		}
		r := fn(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
		return &r, nil, nil
	}
}

var (
	opLt  = cmpOp(symbolic.Lt)
	opGt  = cmpOp(symbolic.Gt)
	opSlt = cmpOp(symbolic.Slt)
	opSgt = cmpOp(symbolic.Sgt)
	opEq  = cmpOp(symbolic.Eq)
	opAnd = cmpOp(symbolic.And)
	opOr  = cmpOp(symbolic.Or)
	opXor = cmpOp(symbolic.Xor)
)

func opIszero(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 1); err != nil {
		return nil, nil, err
	}
	r := symbolic.IsZero(operand(instr, 0, st.Registers))
	return &r, nil, nil
}

func opNot(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 1); err != nil {
		return nil, nil, err
	}
	r := symbolic.Not(operand(instr, 0, st.Registers))
	return &r, nil, nil
}

// opByte's operand order follows the EVM stack convention: the byte index
// is on top of the stack (BYTE i, x pops i then x).
func opByte(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.Byte(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}
