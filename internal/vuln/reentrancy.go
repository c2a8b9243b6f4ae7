package vuln

import (
	"github.com/core-coin/conkas/internal/engine"
	"github.com/core-coin/conkas/internal/isa"
	"github.com/core-coin/conkas/internal/solver"
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/symbolic"
)

// Reentrancy implements spec.md §4.8's three-step decision tree for every
// CALL instruction: a post-call check over constraints added after the
// call, falling through to a pre-call check, falling through in turn to
// an "analyzed but no constraints" catch-all.
func Reentrancy(traces []*engine.Trace, cfg solver.Config, opts Options) []*Vulnerability {
	var out []*Vulnerability
	seen := visitedBlocks{}

	for _, t := range traces {
		if t.Reverted() {
			continue
		}
		for _, ab := range t.History {
			if seen.seen(ab) {
				continue
			}
			for i, instr := range ab.Block.Instructions {
				if instr.Op != isa.CALL {
					continue
				}
				if v := checkCall(t, ab, instr, i, cfg); v != nil {
					out = append(out, v)
					if !opts.FindAll {
						return out
					}
				}
			}
		}
	}
	return out
}

func checkCall(t *engine.Trace, ab *engine.AnalyzedBlock, instr *ssa.Instruction, offset int, cfg solver.Config) *Vulnerability {
	remaining := t.Constraints[len(ab.Constraints):]

	if v, triggered, fallThrough := postCallCheck(t, ab, instr, offset, remaining, cfg); triggered {
		if !fallThrough {
			return v
		}
		if v2, triggered2 := preCallCheck(ab, instr, offset, cfg); triggered2 {
			return v2
		}
		return nil
	}

	if v, triggered := preCallCheck(ab, instr, offset, cfg); triggered {
		return v
	}

	// Neither check found a storage-named constraint to reason about, but
	// the call was still reached (spec.md §4.8 reentrancy step 3).
	return newFinding(ReentrancyFinding, ab, instr, nil)
}

// postCallCheck scans remaining (constraints added strictly after ab was
// recorded) from most recent backward, looking for one naming a storage
// cell. Returns triggered=false if no such constraint exists at all.
func postCallCheck(t *engine.Trace, ab *engine.AnalyzedBlock, instr *ssa.Instruction, offset int, remaining []symbolic.Expr, cfg solver.Config) (v *Vulnerability, triggered, fallThrough bool) {
	for i := len(remaining) - 1; i >= 0; i-- {
		c := remaining[i]
		for name := range symbolic.FreeVars(c) {
			keyDesc, isSym, ok := symbolic.ParseStorageVarName(name)
			if !ok {
				continue
			}
			introducedAt := blockThatIntroduced(t, c)
			if introducedAt == nil {
				continue
			}
			storageVar, found := introducedAt.State.Storage.LookupByDescriptor(keyDesc, isSym, -1)
			if !found {
				continue
			}
			query := &symbolic.BinOp{Op: "!=", X: &symbolic.Var{Name: name}, Y: storageVar.Expr()}
			simplified := symbolic.Simplify(query)

			prefix := append(append([]symbolic.Expr(nil), ab.Constraints...), remaining[:i+1]...)
			res := checkSat(&engine.AnalyzedBlock{Block: ab.Block, State: ab.State, Constraints: prefix}, query, cfg.Timeout)
			if res == nil {
				continue
			}

			if !res.Sat {
				if symbolic.IsLiteralFalse(simplified) {
					return nil, true, false // impossible path: no finding
				}
				return nil, true, true // fall through to pre-call
			}
			if symbolic.IsLiteralTrue(simplified) {
				return nil, true, false // protected: no finding
			}
			return newFinding(ReentrancyFinding, ab, instr, res.Model), true, false
		}
	}
	return nil, false, false
}

// blockThatIntroduced scans a trace's history in reverse for the
// AnalyzedBlock whose recorded constraint snapshot's last entry is c — the
// block the edge carrying c led into (spec.md §4.8 "found by scanning the
// trace's analyzed blocks in reverse for the block whose last constraint
// matches").
func blockThatIntroduced(t *engine.Trace, c symbolic.Expr) *engine.AnalyzedBlock {
	for i := len(t.History) - 1; i >= 0; i-- {
		ab := t.History[i]
		if len(ab.Constraints) == 0 {
			continue
		}
		if ab.Constraints[len(ab.Constraints)-1].String() == c.String() {
			return ab
		}
	}
	return nil
}

// preCallCheck builds an equality constraint set from the analyzed
// block's own constraints: for each storage-named sub-variable, assert it
// equals the storage cell's current value as of just before the call
// (ignoring writes the same block performed after the CALL), plus — if
// the call's value argument is itself a storage-named symbol — that the
// cell is nonzero. triggered is false if no storage-named variable and no
// storage-named value argument were found.
func preCallCheck(ab *engine.AnalyzedBlock, instr *ssa.Instruction, offset int, cfg solver.Config) (*Vulnerability, bool) {
	writesAfterCall := countStorageWritesAfter(ab.Block, offset)

	var constraints []symbolic.Expr
	triggered := false

	for _, c := range ab.Constraints {
		for name := range symbolic.FreeVars(c) {
			keyDesc, isSym, ok := symbolic.ParseStorageVarName(name)
			if !ok {
				continue
			}
			triggered = true
			current, found := ab.State.Storage.LookupByDescriptor(keyDesc, isSym, -1-writesAfterCall)
			if !found {
				continue
			}
			constraints = append(constraints, &symbolic.BinOp{Op: "==", X: &symbolic.Var{Name: name}, Y: current.Expr()})
		}
	}

	if len(instr.Operands) > 2 {
		value := engine.Resolve(instr.Operands[2], ab.State.Registers)
		if value.IsSymbolic() {
			if keyDesc, isSym, ok := symbolic.ParseStorageVarName(value.Expr().String()); ok {
				triggered = true
				_ = isSym
				_ = keyDesc
				constraints = append(constraints, &symbolic.BinOp{Op: "!=", X: value.Expr(), Y: &symbolic.Const{Val: symbolic.FromUint64(0).Uint256()}})
			}
		}
	}

	if !triggered {
		return nil, false
	}

	full := append(append([]symbolic.Expr(nil), ab.Constraints...), constraints...)
	res, err := solver.Check(full, cfg.Timeout)
	if err != nil || !res.Sat {
		return nil, true
	}
	return newFinding(ReentrancyFinding, ab, instr, res.Model), true
}

// countStorageWritesAfter counts SSTORE instructions in block after
// instruction index offset, used to compute the versioned lookup that
// ignores storage writes performed after the call within the same block
// (spec.md §4.8 pre-call check).
func countStorageWritesAfter(block *ssa.Block, offset int) int {
	n := 0
	for i := offset + 1; i < len(block.Instructions); i++ {
		if block.Instructions[i].Op == isa.SSTORE {
			n++
		}
	}
	return n
}
