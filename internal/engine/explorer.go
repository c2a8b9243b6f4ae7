package engine

import (
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

// DefaultMaxDepth is the default cap on analyzed basic blocks per trace
// (spec.md §6 "max_depth", default 25).
const DefaultMaxDepth = 25

// execBlock walks a block's instructions in order (spec.md §4.4 "Per-block
// execution"): an instruction that returns a non-nil edge set (even an
// empty one) contributes it to the block's successor list; one that
// returns nil advances silently, writing its SSA result if any. If no
// instruction contributed an edge set, the block's structural fallthrough
// (if any) is synthesized as the sole successor.
func execBlock(block *ssa.Block, jt JumpTable, st *state.State, functions map[string]*ssa.Function) ([]Edge, error) {
	ctx := &ExecContext{Block: block, Functions: functions}
	var collected []Edge
	produced := false

	for _, instr := range block.Instructions {
		fn, ok := jt[instr.Op]
		if !ok {
			return nil, ErrUnsupportedOpcode
		}
		result, edges, err := fn(instr, st, ctx)
		if err != nil {
			return nil, err
		}
		if result != nil && instr.HasResult {
			st.Registers.Set(instr.SSAIndex, *result)
		}
		if edges != nil {
			produced = true
			collected = append(collected, edges...)
		}
	}

	if !produced {
		if ft := structuralFallthrough(block); ft != nil {
			collected = append(collected, Edge{Block: ft})
		}
	}
	return collected, nil
}

func structuralFallthrough(block *ssa.Block) *ssa.Block {
	for _, e := range block.Successors {
		if e.Kind == ssa.Fallthrough {
			return e.To
		}
	}
	return nil
}

// Explore is the trace explorer of spec.md §4.4: starting from entry with
// a freshly built state, it drives per-block execution, forks a new trace
// for every successor edge beyond the first, accumulates path constraints,
// and bounds each trace's depth by maxDepth. It returns every trace that
// finished, including those that hit the depth bound — a trace is never
// silently dropped.
func Explore(entry *ssa.Block, functions map[string]*ssa.Function, initial *state.State, jt JumpTable, maxDepth int) ([]*Trace, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	nextID := 0
	start := NewTrace(nextID, entry, initial)
	nextID++
	queue := []*Trace{start}
	var finished []*Trace

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		if t.CurrentConstraint != nil {
			t.Constraints = append(t.Constraints, t.CurrentConstraint)
			t.CurrentConstraint = nil
		}

		if t.BlockToAnalyse == nil {
			finished = append(finished, t)
			continue
		}

		edges, err := execBlock(t.BlockToAnalyse, jt, t.State, functions)

		snapshot := &AnalyzedBlock{
			Block:       t.BlockToAnalyse,
			State:       t.State.Clone(),
			Constraints: append([]symbolic.Expr(nil), t.Constraints...),
		}
		t.History = append(t.History, snapshot)
		t.Depth++

		if err != nil {
			return finished, err
		}

		if t.Depth >= maxDepth {
			t.HitDepthBound = true
			t.BlockToAnalyse = nil
			finished = append(finished, t)
			continue
		}

		if len(edges) == 0 {
			t.BlockToAnalyse = nil
			finished = append(finished, t)
			continue
		}

		for _, e := range edges[1:] {
			forked := t.Fork(nextID)
			nextID++
			forked.BlockToAnalyse = e.Block
			forked.CurrentConstraint = e.Cond
			queue = append(queue, forked)
		}

		t.BlockToAnalyse = edges[0].Block
		t.CurrentConstraint = edges[0].Cond
		queue = append(queue, t)
	}

	return finished, nil
}
