package vuln

import (
	"fmt"

	"github.com/core-coin/conkas/internal/engine"
	"github.com/core-coin/conkas/internal/isa"
	"github.com/core-coin/conkas/internal/solver"
	"github.com/core-coin/conkas/internal/symbolic"
)

// UncheckedLowLevelCall implements spec.md §4.8: for each low-level call
// whose SSA return variable is never mentioned by name in any constraint
// added after it, emit a finding. Traces that hit the depth bound are
// skipped since their remaining-constraint window past that point isn't
// trustworthy.
func UncheckedLowLevelCall(traces []*engine.Trace, cfg solver.Config, opts Options) []*Vulnerability {
	var out []*Vulnerability

	for _, t := range traces {
		if t.Reverted() || t.HitDepthBound {
			continue
		}
		for _, ab := range t.History {
			for _, instr := range ab.Block.Instructions {
				if !isLowLevelCall(instr.Op) {
					continue
				}
				retName := fmt.Sprintf("%s_%d", instr.Op, instr.SSAIndex)
				remaining := t.Constraints[len(ab.Constraints):]
				if mentionsVariable(remaining, retName) {
					continue
				}
				out = append(out, newFinding(UncheckedLowLevelCallFinding, ab, instr, nil))
				if !opts.FindAll {
					return out
				}
			}
		}
	}
	return out
}

func isLowLevelCall(op isa.Op) bool {
	switch op {
	case isa.CALL, isa.CALLCODE, isa.DELEGATECALL, isa.STATICCALL:
		return true
	}
	return false
}

func mentionsVariable(constraints []symbolic.Expr, name string) bool {
	for _, c := range constraints {
		if _, ok := symbolic.FreeVars(c)[name]; ok {
			return true
		}
	}
	return false
}
