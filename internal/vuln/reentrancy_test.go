package vuln

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/core-coin/conkas/internal/engine"
	"github.com/core-coin/conkas/internal/isa"
	"github.com/core-coin/conkas/internal/solver"
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/symbolic"
)

// callInstruction builds a CALL with 7 concrete-zero operands (spec.md
// §4.3 "Calls" arity), leaving the value argument (index 2) overridable.
func callInstruction(pc uint64, ssaIndex int) *ssa.Instruction {
	operands := make([]ssa.StackValue, 7)
	for i := range operands {
		operands[i] = ssa.ConstValue([]byte{0})
	}
	return &ssa.Instruction{
		Op: isa.CALL, Operands: operands, PC: pc, SSAIndex: ssaIndex, HasResult: true,
	}
}

func newBlockWith(instrs ...*ssa.Instruction) *ssa.Block {
	fn := &ssa.Function{Name: "main"}
	block := &ssa.Block{ID: 0, Function: fn, Instructions: instrs}
	fn.Entry = block
	fn.Blocks = []*ssa.Block{block}
	return block
}

func newEmptyState(t *testing.T) *state.State {
	t.Helper()
	env := state.NewEnvironment("t", nil)
	return state.New(env)
}

func TestReentrancySkipsRevertedTrace(t *testing.T) {
	call := callInstruction(10, 0)
	block := newBlockWith(call)
	st := newEmptyState(t)
	st.Reverted = true
	ab := &engine.AnalyzedBlock{Block: block, State: st}
	tr := &engine.Trace{History: []*engine.AnalyzedBlock{ab}, State: st}

	findings := Reentrancy([]*engine.Trace{tr}, solver.DefaultConfig(), Options{FindAll: true})
	require.Empty(t, findings)
}

func TestReentrancyCatchAllOnUnguardedCall(t *testing.T) {
	// spec.md §4.8 reentrancy step 3: a CALL reached on a path with no
	// storage-named constraint anywhere is still reported.
	call := callInstruction(10, 0)
	block := newBlockWith(call)
	st := newEmptyState(t)
	ab := &engine.AnalyzedBlock{Block: block, State: st}
	tr := &engine.Trace{History: []*engine.AnalyzedBlock{ab}, State: st}

	findings := Reentrancy([]*engine.Trace{tr}, solver.DefaultConfig(), Options{FindAll: true})
	require.Len(t, findings, 1)
	require.Equal(t, ReentrancyFinding, findings[0].Type)
	require.Nil(t, findings[0].Model)
}

func TestReentrancyPreCallCheckReportsSatisfiablePath(t *testing.T) {
	// spec.md §8 scenario 3: the block reads balances[msg.sender] via an
	// SLOAD that never hit a prior SSTORE (storage,0,conc is fresh), and
	// the path leading here asserts that balance is nonzero -- a
	// satisfiable constraint the pre-call check reports as-is, since it
	// cannot resolve the cell's current value to rule the path out.
	call := callInstruction(20, 1)
	block := newBlockWith(call)
	st := newEmptyState(t)

	pathCond := &symbolic.BinOp{
		Op: "!=",
		X:  &symbolic.Var{Name: "storage,0,conc"},
		Y:  &symbolic.Const{Val: uint256.NewInt(0)},
	}
	ab := &engine.AnalyzedBlock{Block: block, State: st, Constraints: []symbolic.Expr{pathCond}}
	tr := &engine.Trace{
		History:     []*engine.AnalyzedBlock{ab},
		State:       st,
		Constraints: []symbolic.Expr{pathCond},
	}

	findings := Reentrancy([]*engine.Trace{tr}, solver.DefaultConfig(), Options{FindAll: true})
	require.Len(t, findings, 1)
	require.Equal(t, ReentrancyFinding, findings[0].Type)
}

func TestReentrancyPostCallCheckSuppressesImpossiblePath(t *testing.T) {
	// spec.md §4.8 post-call check "impossible path" branch: a later
	// block's edge constraint names storage,0,conc, and that cell's
	// recorded value at the later block is the very same symbol -- so the
	// internal "name != current value" query postCallCheck builds
	// simplifies to the self-contradictory X != X, folded to the literal false
	// by Simplify's absorb rule, and the call is cleared rather than
	// reported.
	call := callInstruction(20, 1)
	callBlock := newBlockWith(call)
	callState := newEmptyState(t)
	callAB := &engine.AnalyzedBlock{Block: callBlock, State: callState}

	later := newBlockWith(&ssa.Instruction{Op: isa.JUMPDEST, PC: 30, SSAIndex: -1})
	laterState := newEmptyState(t)
	balance := symbolic.NewSymbol("storage,0,conc")
	laterState.Storage.Store(symbolic.FromUint64(0), balance)

	edgeConstraint := &symbolic.BinOp{Op: "==", X: &symbolic.Var{Name: "storage,0,conc"}, Y: &symbolic.Const{Val: uint256.NewInt(5)}}
	laterAB := &engine.AnalyzedBlock{Block: later, State: laterState, Constraints: []symbolic.Expr{edgeConstraint}}

	tr := &engine.Trace{
		History:     []*engine.AnalyzedBlock{callAB, laterAB},
		State:       laterState,
		Constraints: []symbolic.Expr{edgeConstraint},
	}

	findings := Reentrancy([]*engine.Trace{tr}, solver.DefaultConfig(), Options{FindAll: true})
	require.Empty(t, findings)
}
