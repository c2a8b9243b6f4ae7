package engine

import (
	"fmt"

	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

// opCall, opCallCode, opDelegateCall, opStaticCall never recurse into the
// callee (spec.md §4.3 "Calls"): the return value is a fresh symbolic
// word. When the return buffer's offset and length are both concrete, a
// fresh symbolic word is written over its first min(length, 32) bytes and
// memory is extended over those bytes only; bytes past the first 32 keep
// their earlier content. A symbolic offset/length skips the write.
func opCall(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 7); err != nil {
		return nil, nil, err
	}
	return callLike(instr, st, 5, 6)
}

func opCallCode(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 7); err != nil {
		return nil, nil, err
	}
	return callLike(instr, st, 5, 6)
}

func opDelegateCall(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 6); err != nil {
		return nil, nil, err
	}
	return callLike(instr, st, 4, 5)
}

func opStaticCall(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 6); err != nil {
		return nil, nil, err
	}
	return callLike(instr, st, 4, 5)
}

func callLike(instr *ssa.Instruction, st *state.State, retOffsetIdx, retLengthIdx int) (*symbolic.Word, []Edge, error) {
	retOffset := operand(instr, retOffsetIdx, st.Registers)
	retLength := operand(instr, retLengthIdx, st.Registers)
	if retOffset.IsConcrete() && retLength.IsConcrete() && retLength.Uint256().IsUint64() {
		n := int(retLength.Uint256().Uint64())
		if n > 0 {
			blob := symbolic.NewSymbol(fmt.Sprintf("%s_ret_%d", instr.Op, instr.SSAIndex))
			off := retOffset.Uint256().Uint64()
			st.Memory.Extend(off, uint64(clamp32(n)))
			st.Memory.Store(off, blob, clamp32(n))
		}
	}
	r := symbolic.NewSymbol(resultName(instr))
	return &r, nil, nil
}

func opCreate(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 3); err != nil {
		return nil, nil, err
	}
	r := symbolic.NewSymbol(fmt.Sprintf("create_%d", instr.SSAIndex))
	return &r, nil, nil
}

func opCreate2(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 4); err != nil {
		return nil, nil, err
	}
	r := symbolic.NewSymbol(fmt.Sprintf("create2_%d", instr.SSAIndex))
	return &r, nil, nil
}

// opReturn/opRevert load the given memory range into the trace's return
// data (a fresh symbol if the length is symbolic) and terminate the trace
// (spec.md §4.3, §7).
func opReturn(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	setReturnData(instr, st, "return")
	st.Stopped = true
	return nil, []Edge{}, nil
}

func opRevert(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	setReturnData(instr, st, "revert")
	st.Reverted = true
	return nil, []Edge{}, nil
}

func setReturnData(instr *ssa.Instruction, st *state.State, label string) {
	off := operand(instr, 0, st.Registers)
	length := operand(instr, 1, st.Registers)
	st.HasReturnData = true
	if off.IsConcrete() && length.IsConcrete() && length.Uint256().IsUint64() {
		n := length.Uint256().Uint64()
		if b, ok := st.Memory.LoadBytes(off.Uint256().Uint64(), int(n), -1); ok {
			st.ReturnDataBytes = b
			st.ReturnData = symbolic.FromBytes(b)
			return
		}
	}
	st.ReturnData = symbolic.NewSymbol(fmt.Sprintf("%s_data_%d", label, instr.SSAIndex))
}

func opInvalid(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	st.Invalid = true
	return nil, []Edge{}, nil
}

func opSelfdestruct(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 1); err != nil {
		return nil, nil, err
	}
	st.Destructed = true
	return nil, []Edge{}, nil
}
