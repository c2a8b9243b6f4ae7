package vuln

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/core-coin/conkas/internal/engine"
	"github.com/core-coin/conkas/internal/isa"
	"github.com/core-coin/conkas/internal/solver"
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/symbolic"
)

// Overflow runs the integer overflow/underflow analysis of spec.md §4.8
// over every trace's ADD/MUL/SUB instructions.
func Overflow(traces []*engine.Trace, cfg solver.Config, opts Options) []*Vulnerability {
	var out []*Vulnerability
	seen := visitedBlocks{}

	for _, t := range traces {
		if t.Reverted() {
			continue
		}
		// was_mul_with_256/was_exp_with_256 live across the blocks of this
		// trace (spec.md §4.8, original_source/vuln_finder/arithmetic.py
		// arithmetic_analyse), not just the one instruction after the
		// MUL/EXP, until the next SUB in the trace clears them -- if that
		// SUB's second operand equals 1, it is recognised as the closing
		// half of the (1<<8k)-1 bitmask idiom and skips the rest of the
		// trace too.
		sup := &maskSuppression{}
		for _, ab := range t.History {
			if seen.seen(ab) {
				continue
			}
			found, skipTrace := overflowInBlock(ab, cfg, opts, sup)
			out = append(out, found...)
			if !opts.FindAll && len(out) > 0 {
				return out
			}
			if skipTrace {
				break
			}
		}
	}
	return out
}

type maskSuppression struct {
	mul, exp bool
}

// overflowInBlock walks one block's instructions in order. It reports the
// findings from this block and whether the bitmask idiom's closing SUB
// was recognised, in which case the caller abandons the rest of the
// trace (matching arithmetic_analyse's `next_trace` behavior).
func overflowInBlock(ab *engine.AnalyzedBlock, cfg solver.Config, opts Options, sup *maskSuppression) ([]*Vulnerability, bool) {
	var out []*Vulnerability

	for _, instr := range ab.Block.Instructions {
		var found []*Vulnerability
		switch instr.Op {
		case isa.ADD:
			found = checkAdd(ab, instr, cfg)
		case isa.MUL:
			if isConstAt(instr, ab, 0, 256) {
				sup.mul = true
			}
			found = checkMul(ab, instr, cfg)
		case isa.EXP:
			if isConstAt(instr, ab, 0, 256) {
				sup.exp = true
			}
			continue
		case isa.SUB:
			if sup.mul || sup.exp {
				sup.mul, sup.exp = false, false
				if isConstAt(instr, ab, 1, 1) {
					return out, true
				}
			}
			found = checkSub(ab, instr, cfg)
		default:
			continue
		}

		out = append(out, found...)
		if !opts.FindAll && len(out) > 0 {
			return out, false
		}
	}
	return out, false
}

// isConstAt reports whether operand idx of instr resolves to the concrete
// value val.
func isConstAt(instr *ssa.Instruction, ab *engine.AnalyzedBlock, idx int, val uint64) bool {
	if idx >= len(instr.Operands) {
		return false
	}
	w := engine.Resolve(instr.Operands[idx], ab.State.Registers)
	return w.IsConcrete() && w.Uint256().Eq(uint256.NewInt(val))
}

func result(ab *engine.AnalyzedBlock, instr *ssa.Instruction) (symbolic.Word, bool) {
	if !instr.HasResult {
		return symbolic.Word{}, false
	}
	return ab.State.Registers.Get(instr.SSAIndex)
}

func checkAdd(ab *engine.AnalyzedBlock, instr *ssa.Instruction, cfg solver.Config) []*Vulnerability {
	if len(instr.Operands) < 2 {
		return nil
	}
	a := engine.Resolve(instr.Operands[0], ab.State.Registers)
	b := engine.Resolve(instr.Operands[1], ab.State.Registers)
	c, ok := result(ab, instr)
	if !ok {
		return nil
	}
	if symbolic.AllConcrete(a, c) {
		if c.Uint256().Lt(a.Uint256()) {
			return []*Vulnerability{newFinding(IntegerOverflow, ab, instr, concreteModel(a, b))}
		}
		return nil
	}
	query := &symbolic.BinOp{Op: "<", X: c.Expr(), Y: a.Expr()}
	if res := checkSat(ab, query, cfg.Timeout); res != nil && res.Sat {
		return []*Vulnerability{newFinding(IntegerOverflow, ab, instr, res.Model)}
	}
	return nil
}

func checkMul(ab *engine.AnalyzedBlock, instr *ssa.Instruction, cfg solver.Config) []*Vulnerability {
	if len(instr.Operands) < 2 {
		return nil
	}
	a := engine.Resolve(instr.Operands[0], ab.State.Registers)
	b := engine.Resolve(instr.Operands[1], ab.State.Registers)
	c, ok := result(ab, instr)
	if !ok {
		return nil
	}
	if symbolic.AllConcrete(a, b, c) {
		if a.Uint256().IsZero() {
			return nil
		}
		var q uint256.Int
		q.Div(c.Uint256(), a.Uint256())
		if !q.Eq(b.Uint256()) {
			return []*Vulnerability{newFinding(IntegerOverflow, ab, instr, concreteModel(a, b))}
		}
		return nil
	}
	timeout := cfg.Timeout
	if cfg.MulOverflowTimeoutScale > 0 {
		timeout = cfg.Timeout * time.Duration(cfg.MulOverflowTimeoutScale)
	}
	// spec.md §4.8 / original `Not(BVMulNoOverflow(a, b, signed=false))`: a
	// query against the already-wrapped MUL result c would be `a*b != c`,
	// but c is itself defined as a*b mod 2^256, so the two sides translate
	// to the identical bvmul expression and the query is unsatisfiable for
	// every input. MulOverflow instead widens a and b before multiplying,
	// so the high bits the wrapped result lost are exactly what's tested.
	query := &symbolic.MulOverflow{X: a.Expr(), Y: b.Expr()}
	if res := checkSat(ab, query, timeout); res != nil && res.Sat {
		return []*Vulnerability{newFinding(IntegerOverflow, ab, instr, res.Model)}
	}
	return nil
}

func checkSub(ab *engine.AnalyzedBlock, instr *ssa.Instruction, cfg solver.Config) []*Vulnerability {
	if len(instr.Operands) < 2 {
		return nil
	}
	a := engine.Resolve(instr.Operands[0], ab.State.Registers)
	b := engine.Resolve(instr.Operands[1], ab.State.Registers)
	if symbolic.AllConcrete(a, b) {
		if b.Uint256().Gt(a.Uint256()) {
			return []*Vulnerability{newFinding(IntegerUnderflow, ab, instr, concreteModel(a, b))}
		}
		return nil
	}
	query := &symbolic.BinOp{Op: ">", X: b.Expr(), Y: a.Expr()}
	if res := checkSat(ab, query, cfg.Timeout); res != nil && res.Sat {
		return []*Vulnerability{newFinding(IntegerUnderflow, ab, instr, res.Model)}
	}
	return nil
}

// concreteModel builds the witness spec.md §8 scenario 1 expects for a
// fully-concrete finding (original `{'a': a, 'b': b}`): both operands
// were concrete, so there is no solver model to report, but the operand
// values themselves are the witness.
func concreteModel(a, b symbolic.Word) map[string]*uint256.Int {
	av, bv := *a.Uint256(), *b.Uint256()
	return map[string]*uint256.Int{"a": &av, "b": &bv}
}

func checkSat(ab *engine.AnalyzedBlock, query symbolic.Expr, timeout time.Duration) *solver.Result {
	constraints := append(append([]symbolic.Expr(nil), ab.Constraints...), query)
	res, err := solver.Check(constraints, timeout)
	if err != nil {
		return nil
	}
	return &res
}

func newFinding(t Type, ab *engine.AnalyzedBlock, instr *ssa.Instruction, model map[string]*uint256.Int) *Vulnerability {
	return &Vulnerability{
		Type:              t,
		Block:             ab,
		FunctionName:      ab.Block.Function.Name,
		PC:                instr.PC,
		InstructionOffset: instr.SSAIndex,
		Model:             model,
	}
}
