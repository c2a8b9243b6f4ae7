package engine

import (
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

func opMload(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 1); err != nil {
		return nil, nil, err
	}
	off := operand(instr, 0, st.Registers)
	if !off.IsConcrete() {
		r := st.Memory.LoadSymbolicOffset(off.Expr())
		return &r, nil, nil
	}
	o := off.Uint256().Uint64()
	st.Memory.Extend(o, 32)
	r := st.Memory.Load(o, 32, -1)
	return &r, nil, nil
}

func opMstore(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	off := operand(instr, 0, st.Registers)
	val := operand(instr, 1, st.Registers)
	if !off.IsConcrete() {
		st.Memory.StoreSymbolicOffset(off.Expr(), val)
		return nil, nil, nil
	}
	st.Memory.Store(off.Uint256().Uint64(), val, 32)
	return nil, nil, nil
}

func opMstore8(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	off := operand(instr, 0, st.Registers)
	val := operand(instr, 1, st.Registers)
	if !off.IsConcrete() {
		st.Memory.StoreSymbolicOffset(off.Expr(), val)
		return nil, nil, nil
	}
	lowByte := symbolic.And(val, symbolic.FromUint64(0xff))
	st.Memory.Store(off.Uint256().Uint64(), lowByte, 1)
	return nil, nil, nil
}

// opSload's result, for an unset key, is a fresh symbolic word named
// "storage,<key>,<conc|sym>" (spec.md §4.3) — this naming is load-bearing
// for the reentrancy and TOD analyses (spec.md §4.8).
func opSload(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 1); err != nil {
		return nil, nil, err
	}
	key := operand(instr, 0, st.Registers)
	val, _ := st.Storage.Load(key, -1)
	return &val, nil, nil
}

func opSstore(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	key := operand(instr, 0, st.Registers)
	val := operand(instr, 1, st.Registers)
	st.Storage.Store(key, val)
	return nil, nil, nil
}

func opPop(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	return nil, nil, nil
}

// opPush gives a literal a register identity. The lifter could fold PUSH
// operands directly into its consumers' StackValue.Const, but a PHI's Args
// selects among SSA indices (state/registers.go), not among StackValues — a
// constant reaching a block boundary still needs a register to be a valid
// PHI candidate, so the lifter emits one PUSH instruction per literal
// instead of inlining it everywhere it's read.
func opPush(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 1); err != nil {
		return nil, nil, err
	}
	w := operand(instr, 0, st.Registers)
	return &w, nil, nil
}
