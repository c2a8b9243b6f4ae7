package engine

import (
	"fmt"
	"strings"

	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

// AnalyzedBlock is the immutable (block, state_snapshot, constraint_prefix)
// triple of spec.md §3/§4.5, recorded after a block finishes executing.
// State must be a deep clone taken at record time, never an alias, so
// later mutation of the trace's live state cannot retroactively rewrite
// history.
type AnalyzedBlock struct {
	Block       *ssa.Block
	State       *state.State
	Constraints []symbolic.Expr
}

// Key renders a value usable for set-membership dedup: equality and hash
// over all three components (spec.md §3 "AnalyzedBlock").
func (ab *AnalyzedBlock) Key() string {
	return fmt.Sprintf("%d|%s|%s", ab.Block.ID, ab.State.Fingerprint(), joinExprs(ab.Constraints))
}

func joinExprs(cs []symbolic.Expr) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, "&&")
}

// Trace is one explored control-flow path (spec.md §3 "Trace"): a pending
// block, the history of blocks already analyzed, the live state, the
// accumulated path condition, the most recently added constraint, and a
// basic-block depth counter bounded by MAX_DEPTH.
type Trace struct {
	ID                int
	BlockToAnalyse    *ssa.Block
	History           []*AnalyzedBlock
	State             *state.State
	Depth             int
	Constraints       []symbolic.Expr
	CurrentConstraint symbolic.Expr
	HitDepthBound     bool
}

// NewTrace starts a trace at the dispatch entry block with a fresh state.
func NewTrace(id int, entry *ssa.Block, st *state.State) *Trace {
	return &Trace{ID: id, BlockToAnalyse: entry, State: st}
}

// Fork deep-clones state and copies the constraint list, sharing the
// immutable environment by reference (spec.md §4.4 "Edge ordering").
func (t *Trace) Fork(id int) *Trace {
	history := make([]*AnalyzedBlock, len(t.History))
	copy(history, t.History)
	constraints := make([]symbolic.Expr, len(t.Constraints))
	copy(constraints, t.Constraints)
	return &Trace{
		ID:          id,
		State:       t.State.Clone(),
		History:     history,
		Depth:       t.Depth,
		Constraints: constraints,
	}
}

// Reverted reports whether the trace's live state ended in revert, used by
// analyses to skip it (spec.md §4.7 "skip traces whose state is reverted").
func (t *Trace) Reverted() bool {
	return t.State.Reverted
}
