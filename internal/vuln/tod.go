package vuln

import (
	"github.com/core-coin/conkas/internal/engine"
	"github.com/core-coin/conkas/internal/isa"
	"github.com/core-coin/conkas/internal/solver"
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/symbolic"
)

type todCall struct {
	keyDesc  string
	isSym    bool
	exprText string
	ab       *engine.AnalyzedBlock
	instr    *ssa.Instruction
	trace    *engine.Trace
}

// TransactionOrderingDependence implements spec.md §4.8's TOD analysis:
// collect every CALL/CALLCODE whose value operand names a storage cell,
// then flag each one for which some other trace's final storage at that
// cell holds a differently-named value — the call's transfer amount
// depends on storage a competing transaction could rewrite.
func TransactionOrderingDependence(traces []*engine.Trace, cfg solver.Config, opts Options) []*Vulnerability {
	var calls []todCall
	for _, t := range traces {
		if t.Reverted() {
			continue
		}
		for _, ab := range t.History {
			for _, instr := range ab.Block.Instructions {
				if instr.Op != isa.CALL && instr.Op != isa.CALLCODE {
					continue
				}
				if len(instr.Operands) < 3 {
					continue
				}
				value := engine.Resolve(instr.Operands[2], ab.State.Registers)
				if !value.IsSymbolic() {
					continue
				}
				v, ok := value.Expr().(*symbolic.Var)
				if !ok {
					continue
				}
				keyDesc, isSym, ok := symbolic.ParseStorageVarName(v.Name)
				if !ok {
					continue
				}
				calls = append(calls, todCall{
					keyDesc:  keyDesc,
					isSym:    isSym,
					exprText: v.Name,
					ab:       ab,
					instr:    instr,
					trace:    t,
				})
			}
		}
	}

	var out []*Vulnerability
	for _, c := range calls {
		if v := todFinding(c, traces); v != nil {
			out = append(out, v)
			if !opts.FindAll {
				return out
			}
		}
	}
	return out
}

func todFinding(c todCall, traces []*engine.Trace) *Vulnerability {
	for _, other := range traces {
		if other == c.trace || other.Reverted() || len(other.History) == 0 {
			continue
		}
		finalStorage := other.History[len(other.History)-1].State.Storage
		current, found := finalStorage.LookupByDescriptor(c.keyDesc, c.isSym, -1)
		if !found {
			continue
		}
		if current.String() != c.exprText {
			return newFinding(TransactionOrderingDependenceFinding, c.ab, c.instr, nil)
		}
	}
	return nil
}
