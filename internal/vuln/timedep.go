package vuln

import (
	"github.com/core-coin/conkas/internal/engine"
	"github.com/core-coin/conkas/internal/isa"
	"github.com/core-coin/conkas/internal/solver"
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/symbolic"
)

// TimeManipulation implements spec.md §4.8's four time-dependence checks:
// a path constraint naming `timestamp` (bound to the block that
// introduced it), a time-dependent final return value, a SHA3 over a
// concrete range whose content is time-dependent, and an SSTORE of a
// time-dependent value.
func TimeManipulation(traces []*engine.Trace, cfg solver.Config, opts Options) []*Vulnerability {
	var out []*Vulnerability
	seen := visitedBlocks{}

	for _, t := range traces {
		if t.Reverted() {
			continue
		}
		prevLen := 0
		for _, ab := range t.History {
			if !seen.seen(ab) {
				out = append(out, constraintFindings(ab, prevLen, opts)...)
				out = append(out, instructionFindings(ab, opts)...)
			}
			prevLen = len(ab.Constraints)
			if !opts.FindAll && len(out) > 0 {
				return out
			}
		}
		if v := returnDataFinding(t); v != nil {
			out = append(out, v)
			if !opts.FindAll {
				return out
			}
		}
	}
	return out
}

// constraintFindings reports (a): any constraint introduced at this block
// (the slice of ab.Constraints past the previous block's snapshot length)
// whose free variables include `timestamp`.
func constraintFindings(ab *engine.AnalyzedBlock, prevLen int, opts Options) []*Vulnerability {
	if prevLen >= len(ab.Constraints) {
		return nil
	}
	var out []*Vulnerability
	for _, c := range ab.Constraints[prevLen:] {
		if isTimeDependent(c) {
			out = append(out, &Vulnerability{
				Type:         TimeManipulationFinding,
				Block:        ab,
				FunctionName: ab.Block.Function.Name,
				PC:           ab.Block.Instructions[0].PC,
			})
			if !opts.FindAll {
				return out
			}
		}
	}
	return out
}

// instructionFindings reports (c) SHA3 over a concrete range whose loaded
// content is time-dependent, and (d) SSTORE of a time-dependent value.
func instructionFindings(ab *engine.AnalyzedBlock, opts Options) []*Vulnerability {
	var out []*Vulnerability
	for _, instr := range ab.Block.Instructions {
		var found bool
		switch instr.Op {
		case isa.SHA3:
			found = sha3TimeDependent(ab, instr)
		case isa.SSTORE:
			found = sstoreTimeDependent(ab, instr)
		default:
			continue
		}
		if !found {
			continue
		}
		out = append(out, newFinding(TimeManipulationFinding, ab, instr, nil))
		if !opts.FindAll {
			return out
		}
	}
	return out
}

func sha3TimeDependent(ab *engine.AnalyzedBlock, instr *ssa.Instruction) bool {
	if len(instr.Operands) < 2 {
		return false
	}
	off := engine.Resolve(instr.Operands[0], ab.State.Registers)
	length := engine.Resolve(instr.Operands[1], ab.State.Registers)
	if !off.IsConcrete() || !length.IsConcrete() || !length.Uint256().IsUint64() {
		return false
	}
	n := int(length.Uint256().Uint64())
	if n == 0 {
		return false
	}
	loaded := ab.State.Memory.Load(off.Uint256().Uint64(), n, -1)
	return loaded.IsSymbolic() && isTimeDependent(loaded.Expr())
}

func sstoreTimeDependent(ab *engine.AnalyzedBlock, instr *ssa.Instruction) bool {
	if len(instr.Operands) < 2 {
		return false
	}
	val := engine.Resolve(instr.Operands[1], ab.State.Registers)
	return val.IsSymbolic() && isTimeDependent(val.Expr())
}

// returnDataFinding reports (b): the trace's final return data is
// symbolic and time-dependent.
func returnDataFinding(t *engine.Trace) *Vulnerability {
	if len(t.History) == 0 {
		return nil
	}
	last := t.History[len(t.History)-1]
	rd := last.State.ReturnData
	if !last.State.HasReturnData || rd.IsConcrete() {
		return nil
	}
	if !isTimeDependent(rd.Expr()) {
		return nil
	}
	return &Vulnerability{
		Type:         TimeManipulationFinding,
		Block:        last,
		FunctionName: last.Block.Function.Name,
	}
}

func isTimeDependent(e symbolic.Expr) bool {
	for name := range symbolic.FreeVars(e) {
		if symbolic.IsTimestamp(name) {
			return true
		}
	}
	return false
}
