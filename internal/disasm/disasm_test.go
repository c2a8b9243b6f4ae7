package disasm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/core-coin/conkas/internal/isa"
	"github.com/core-coin/conkas/internal/ssa"
)

// push1 encodes PUSH1 <b>.
func push1(b byte) []byte { return []byte{0x60, b} }

// pushN encodes PUSHn <data>, n = len(data).
func pushN(data []byte) []byte {
	return append([]byte{byte(0x5f + len(data))}, data...)
}

func TestLiftStraightLineBlock(t *testing.T) {
	// spec.md §8 scenario 1: PUSH 0xFF...FF; PUSH 0x02; ADD; STOP.
	var code []byte
	ones := make([]byte, 32)
	for i := range ones {
		ones[i] = 0xff
	}
	code = append(code, pushN(ones)...)
	code = append(code, push1(0x02)...)
	code = append(code, 0x01) // ADD
	code = append(code, 0x00) // STOP

	cfg := Lift("t", code)
	require.Len(t, cfg.Functions, 1)
	fn := cfg.Functions[0]
	require.Len(t, fn.Blocks, 1)

	ops := make([]isa.Op, 0)
	for _, instr := range fn.Entry.Instructions {
		ops = append(ops, instr.Op)
	}
	require.Equal(t, []isa.Op{isa.PUSH, isa.PUSH, isa.ADD, isa.STOP}, ops)
}

func TestLiftResolvesStaticJump(t *testing.T) {
	// PUSH1 4; JUMP; STOP (dead); JUMPDEST; STOP -- the JUMP's constant
	// destination (PC 4) must resolve to a structural Jump edge landing
	// on the JUMPDEST block.
	code := []byte{0x60, 0x04, 0x56, 0x00, 0x5b, 0x00}

	cfg := Lift("t", code)
	fn := cfg.Functions[0]
	require.Len(t, fn.Blocks, 3)

	entry := fn.Entry
	require.Len(t, entry.Successors, 1)
	target := entry.Successors[0].To
	require.Len(t, target.Instructions, 1)
	require.EqualValues(t, 5, target.Instructions[0].PC)
	require.Equal(t, isa.STOP, target.Instructions[0].Op)
}

func TestLiftUnresolvedJumpAddsNoEdge(t *testing.T) {
	// A JUMP to a non-constant destination (here, a value loaded via
	// CALLDATALOAD) must not produce a structural Jump edge (spec.md §7
	// "soft: trace stops at that instruction").
	code := []byte{
		0x60, 0x00, // PUSH1 0
		0x35,       // CALLDATALOAD
		0x56,       // JUMP
	}
	cfg := Lift("t", code)
	fn := cfg.Functions[0]
	require.Len(t, fn.Blocks, 1)
	require.Empty(t, fn.Entry.Successors)
}

func TestLiftDupSwapNeverEmitInstructions(t *testing.T) {
	code := []byte{
		0x60, 0x01, // PUSH1 1
		0x60, 0x02, // PUSH1 2
		0x80, // DUP1
		0x90, // SWAP1
		0x00, // STOP
	}
	cfg := Lift("t", code)
	fn := cfg.Functions[0]
	for _, instr := range fn.Entry.Instructions {
		require.NotContains(t, []isa.Op{isa.DUP, isa.SWAP, isa.PHI}, instr.Op, "DUP/SWAP must not appear as instructions, and need no PHI when the block's own pushes cover them")
	}
}

func TestLiftBackwardBranchPhiReconciliation(t *testing.T) {
	// JUMPDEST; DUP1; PUSH1 0 (self); JUMPI -- a self-loop whose DUP1
	// underflows the block's own stack, forcing a PHI at depth 0. The
	// back edge (to the block itself) must fold its own exit value into
	// that PHI's Args via patchEntryPhis without panicking.
	code := []byte{
		0x5b,       // JUMPDEST PC0
		0x80,       // DUP1     PC1
		0x60, 0x00, // PUSH1 0  PC2-3 (dest, == this block's own start)
		0x57, // JUMPI PC4
	}

	var cfg *ssa.CFG
	require.NotPanics(t, func() { cfg = Lift("t", code) })

	fn := cfg.Functions[0]
	require.Len(t, fn.Blocks, 1)

	var phi *ssa.Instruction
	for _, instr := range fn.Entry.Instructions {
		if instr.Op == isa.PHI {
			phi = instr
			break
		}
	}
	require.NotNil(t, phi, "DUP1's underflow must have materialized a PHI")
	require.Contains(t, phi.Args, phi.SSAIndex, "the only predecessor is the block's own back edge")
}
