package engine

import (
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

func successorByKind(block *ssa.Block, kind ssa.EdgeKind) *ssa.Block {
	for _, e := range block.Successors {
		if e.Kind == kind {
			return e.To
		}
	}
	return nil
}

// opJump: a concrete destination is already resolved to a structural Jump
// edge by the lifter, so the transfer function just selects it; a
// symbolic destination stops the trace (spec.md §4.3, §7 "soft" error).
func opJump(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	dest := successorByKind(ctx.Block, ssa.Jump)
	if dest == nil {
		return nil, []Edge{}, nil
	}
	return nil, []Edge{{Block: dest}}, nil
}

// opJumpi implements the three-way split of spec.md §4.3: concrete
// nonzero -> only the true edge; concrete zero -> only the fallthrough
// edge; symbolic -> both, fallthrough carrying (cond == 0), jump edge
// carrying (cond != 0).
func opJumpi(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 2); err != nil {
		return nil, nil, err
	}
	cond := operand(instr, 1, st.Registers)
	fallthroughBlock := successorByKind(ctx.Block, ssa.Fallthrough)
	jumpBlock := successorByKind(ctx.Block, ssa.Jump)

	if cond.IsConcrete() {
		if cond.Uint256().IsZero() {
			if fallthroughBlock == nil {
				return nil, []Edge{}, nil
			}
			return nil, []Edge{{Block: fallthroughBlock}}, nil
		}
		if jumpBlock == nil {
			return nil, []Edge{}, nil
		}
		return nil, []Edge{{Block: jumpBlock}}, nil
	}

	edges := []Edge{}
	if fallthroughBlock != nil {
		edges = append(edges, Edge{Block: fallthroughBlock, Cond: zeroCond(cond, "==")})
	}
	if jumpBlock != nil {
		edges = append(edges, Edge{Block: jumpBlock, Cond: zeroCond(cond, "!=")})
	}
	return nil, edges, nil
}

// zeroCond builds the boolean expression "cond <op> 0" used to tag a
// symbolic branch's edges with their path constraint (spec.md §4.3).
func zeroCond(cond symbolic.Word, op string) symbolic.Expr {
	return &symbolic.BinOp{Op: op, X: cond.Expr(), Y: symbolic.FromUint64(0).Expr()}
}

func opJumpdest(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	return nil, nil, nil
}

func opStop(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	st.Stopped = true
	return nil, []Edge{}, nil
}

// opInternalCall moves execution into the callee's entry block through an
// unconditional edge, exactly like a structural Jump (spec.md §4.3). No
// condition is attached to that edge; the instruction's operands are not
// read.
func opInternalCall(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	target := successorByKind(ctx.Block, ssa.InternalCallEdge)
	if target == nil {
		return nil, []Edge{}, nil
	}
	return nil, []Edge{{Block: target}}, nil
}

// opConditionalInternalCall behaves like JUMPI but between function
// entries (spec.md §4.3).
func opConditionalInternalCall(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	if err := requireArity(instr, 1); err != nil {
		return nil, nil, err
	}
	cond := operand(instr, 0, st.Registers)
	fallthroughBlock := successorByKind(ctx.Block, ssa.Fallthrough)
	target := successorByKind(ctx.Block, ssa.ConditionalInternalCallEdge)

	if cond.IsConcrete() {
		if cond.Uint256().IsZero() {
			if fallthroughBlock == nil {
				return nil, []Edge{}, nil
			}
			return nil, []Edge{{Block: fallthroughBlock}}, nil
		}
		if target == nil {
			return nil, []Edge{}, nil
		}
		return nil, []Edge{{Block: target}}, nil
	}

	edges := []Edge{}
	if fallthroughBlock != nil {
		edges = append(edges, Edge{Block: fallthroughBlock, Cond: zeroCond(cond, "==")})
	}
	if target != nil {
		edges = append(edges, Edge{Block: target, Cond: zeroCond(cond, "!=")})
	}
	return nil, edges, nil
}

// opPhi chooses the first argument whose register already holds a value,
// trying candidates in descending SSA-index order (spec.md §4.3).
func opPhi(instr *ssa.Instruction, st *state.State, ctx *ExecContext) (*symbolic.Word, []Edge, error) {
	args := append([]int(nil), instr.Args...)
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	sortDescending(args)
	for _, idx := range args {
		if w, ok := st.Registers.Get(idx); ok {
			return &w, nil, nil
		}
	}
	return nil, nil, nil
}

func sortDescending(a []int) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] < v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
