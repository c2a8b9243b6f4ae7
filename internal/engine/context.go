package engine

import (
	"fmt"

	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

// contextOp builds the transfer function for a nullary blockchain/contract
// context opcode: it always returns a fresh symbolic word under the fixed,
// well-known name spec.md §4.3 assigns it (these names are load-bearing
// for the time-dependence analysis, spec.md §7 Time manipulation).
func contextOp(name string) TransferFunc {
	return func(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
		r := symbolic.NewSymbol(name)
		return &r, nil, nil
	}
}

// opFreshWord builds a transfer function for opcodes this engine
// approximates wholesale as a fresh symbolic word (EXTCODESIZE,
// EXTCODEHASH, BLOCKHASH — their real semantics require modeling other
// contracts' state, out of scope per spec.md §1).
func opFreshWord(prefix string) TransferFunc {
	return func(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
		r := symbolic.NewSymbol(fmt.Sprintf("%s_%d", prefix, instr.SSAIndex))
		return &r, nil, nil
	}
}

func opPC(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	r := symbolic.FromUint64(instr.PC)
	return &r, nil, nil
}

func opMsize(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	r := symbolic.FromUint64(st.Memory.Size())
	return &r, nil, nil
}

func opGas(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	r := symbolic.NewSymbol(fmt.Sprintf("gas_%d", instr.SSAIndex))
	return &r, nil, nil
}

// opCalldataload's result name encodes the offset, concrete or symbolic
// (spec.md §4.3 "Calldata & code").
func opCalldataload(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 1); err != nil {
		return nil, nil, err
	}
	off := operand(instr, 0, st.Registers)
	var name string
	if off.IsConcrete() {
		name = symbolic.CalldataLoadName(off.Uint256().Dec(), false)
	} else {
		name = symbolic.CalldataLoadName(off.Expr().String(), true)
	}
	r := symbolic.NewSymbol(name)
	return &r, nil, nil
}

func opCalldatasize(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	r := symbolic.NewSymbol("calldatasize")
	return &r, nil, nil
}

// opCalldatacopy has a soft failure mode for a symbolic length (spec.md
// §7): it installs a fresh symbolic byte blob into memory rather than
// erroring.
func opCalldatacopy(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 3); err != nil {
		return nil, nil, err
	}
	destOffset := operand(instr, 0, st.Registers)
	length := operand(instr, 2, st.Registers)
	storeFreshBlob(st, destOffset, length, fmt.Sprintf("calldatacopy_%d", instr.SSAIndex))
	return nil, nil, nil
}

func storeFreshBlob(st *state.State, destOffset, length symbolic.Word, name string) {
	blob := symbolic.NewSymbol(name)
	if destOffset.IsConcrete() && length.IsConcrete() && length.Uint256().IsUint64() {
		n := int(length.Uint256().Uint64())
		st.Memory.Store(destOffset.Uint256().Uint64(), blob, clamp32(n))
	} else if destOffset.IsConcrete() {
		st.Memory.Extend(destOffset.Uint256().Uint64(), 32)
		st.Memory.Store(destOffset.Uint256().Uint64(), blob, 32)
	} else {
		st.Memory.StoreSymbolicOffset(destOffset.Expr(), blob)
	}
}

func clamp32(n int) int {
	if n <= 0 {
		return 0
	}
	if n > 32 {
		return 32
	}
	return n
}

func opCodesize(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	r := symbolic.FromUint64(uint64(len(st.Env.Code)))
	return &r, nil, nil
}

// opCodecopy: fully concrete arguments copy real bytes from the
// environment's code; a symbolic offset or length installs a fresh
// symbolic blob (spec.md §4.3 "Calldata & code").
func opCodecopy(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 3); err != nil {
		return nil, nil, err
	}
	destOffset := operand(instr, 0, st.Registers)
	codeOffset := operand(instr, 1, st.Registers)
	length := operand(instr, 2, st.Registers)

	if destOffset.IsConcrete() && codeOffset.IsConcrete() && length.IsConcrete() && length.Uint256().IsUint64() {
		n := length.Uint256().Uint64()
		co := codeOffset.Uint256().Uint64()
		code := st.Env.Code
		buf := make([]byte, n)
		for i := uint64(0); i < n; i++ {
			if co+i < uint64(len(code)) {
				buf[i] = code[co+i]
			}
		}
		writeConcreteBytes(st, destOffset.Uint256().Uint64(), buf)
		return nil, nil, nil
	}
	storeFreshBlob(st, destOffset, length, fmt.Sprintf("codecopy_%d", instr.SSAIndex))
	return nil, nil, nil
}

func writeConcreteBytes(st *state.State, off uint64, buf []byte) {
	for i := 0; i+32 <= len(buf); i += 32 {
		st.Memory.Store(off+uint64(i), symbolic.FromBytes(buf[i:i+32]), 32)
	}
	rem := len(buf) % 32
	if rem != 0 {
		start := len(buf) - rem
		st.Memory.Store(off+uint64(start), symbolic.FromBytes(buf[start:]), rem)
	}
	if len(buf) == 0 {
		st.Memory.Extend(off, 0)
	}
}

func opExtcodecopy(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 4); err != nil {
		return nil, nil, err
	}
	destOffset := operand(instr, 1, st.Registers)
	length := operand(instr, 3, st.Registers)
	storeFreshBlob(st, destOffset, length, fmt.Sprintf("extcodecopy_%d", instr.SSAIndex))
	return nil, nil, nil
}

func opReturndatasize(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	r := symbolic.NewSymbol(fmt.Sprintf("returndatasize_%d", instr.SSAIndex))
	return &r, nil, nil
}

func opReturndatacopy(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 3); err != nil {
		return nil, nil, err
	}
	destOffset := operand(instr, 0, st.Registers)
	length := operand(instr, 2, st.Registers)
	storeFreshBlob(st, destOffset, length, fmt.Sprintf("returndatacopy_%d", instr.SSAIndex))
	return nil, nil, nil
}
