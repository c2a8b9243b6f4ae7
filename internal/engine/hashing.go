package engine

import (
	"fmt"

	"github.com/core-coin/conkas/crypto"
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

// opSha3: a concrete memory range hashes to the real Keccak-256 digest; a
// zero-length range is the well-known empty-Keccak-256 constant; anything
// symbolic becomes a fresh symbolic word (spec.md §4.3 "Hashing").
func opSha3(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	off := operand(instr, 0, st.Registers)
	length := operand(instr, 1, st.Registers)

	if length.IsConcrete() && length.Uint256().IsZero() {
		r := symbolic.FromBytes(crypto.EmptyKeccak256)
		return &r, nil, nil
	}
	if off.IsConcrete() && length.IsConcrete() && length.Uint256().IsUint64() {
		n := length.Uint256().Uint64()
		if b, ok := st.Memory.LoadBytes(off.Uint256().Uint64(), int(n), -1); ok {
			r := symbolic.FromBytes(crypto.Keccak256(b))
			return &r, nil, nil
		}
	}
	r := symbolic.NewSymbol(fmt.Sprintf("sha3_%d", instr.SSAIndex))
	return &r, nil, nil
}
