package engine

import (
	"fmt"

	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

func resultName(instr *ssa.Instruction) string {
	return fmt.Sprintf("%s_%d", instr.Op, instr.SSAIndex)
}

func opAdd(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.Add(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}

func opMul(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.Mul(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}

func opSub(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.Sub(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}

func opDiv(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.Div(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}

func opSdiv(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.SDiv(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}

func opMod(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.Mod(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}

func opSmod(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.SMod(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}

func opAddmod(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 3); err != nil {
		return nil, nil, err
	}
	r := symbolic.AddMod(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers), operand(instr, 2, st.Registers))
	return &r, nil, nil
}

func opMulmod(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 3); err != nil {
		return nil, nil, err
	}
	r := symbolic.MulMod(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers), operand(instr, 2, st.Registers))
	return &r, nil, nil
}

// opExp approximates any symbolically-exponentiated result as a fresh
// symbolic word named after the SSA result (spec.md §4.3).
func opExp(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	base := operand(instr, 0, st.Registers)
	exponent := operand(instr, 1, st.Registers)
	r := symbolic.Exp(base, exponent, resultName(instr))
	return &r, nil, nil
}

func opSignExtend(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.SignExtend(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}

func opShl(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.Shl(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}

func opShr(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.Shr(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}

func opSar(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	r := symbolic.Sar(operand(instr, 0, st.Registers), operand(instr, 1, st.Registers))
	return &r, nil, nil
}
