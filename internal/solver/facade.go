// Package solver is the SMT facade (spec.md §4.7, C6): push a list of
// 256-bit bit-vector predicates, check satisfiability under a timeout,
// and on sat retrieve a counter-example model. No dependency in the
// retrieval pack exposes bit-vector SMT; github.com/aclements/go-z3 is the
// only maintained Go z3 binding with push/pop, arbitrary-width bit-vector
// sorts and model extraction, so it is named here per the out-of-pack
// allowance (see DESIGN.md).
package solver

import (
	"time"

	"github.com/aclements/go-z3/z3"
	"github.com/holiman/uint256"

	"github.com/core-coin/conkas/internal/symbolic"
)

const width = 256

// Config carries the solver's tunables (spec.md §6, §9 Open Questions).
type Config struct {
	// Timeout bounds a single Check call (default 100ms).
	Timeout time.Duration
	// MulOverflowTimeoutScale multiplies Timeout for the MUL overflow
	// query specifically (spec.md §9 "best read as a longer timeout for
	// hard multiplication queries"), default 1000.
	MulOverflowTimeoutScale int
}

func DefaultConfig() Config {
	return Config{Timeout: 100 * time.Millisecond, MulOverflowTimeoutScale: 1000}
}

// Result is the outcome of one Check call.
type Result struct {
	Sat     bool
	Unknown bool
	// Model maps a free variable's name to its concrete witness value,
	// populated only when Sat.
	Model map[string]*uint256.Int
}

// Check asserts every constraint's boolean interpretation and solves under
// timeout. An "unknown" result (solver timed out) is surfaced distinctly
// rather than silently folded into unsat; callers that only care about
// "can I disprove this" should treat Unknown as sat=false per spec.md §4.7
// ("'unknown' is treated as unsat").
func Check(constraints []symbolic.Expr, timeout time.Duration) (Result, error) {
	config := z3.NewConfig()
	ctx := z3.NewContext(config)
	solver := z3.NewSolver(ctx)
	solver.SetTimeout(timeout)

	tr := newTranslator(ctx)
	for _, c := range constraints {
		solver.Assert(tr.boolExpr(c))
	}

	switch solver.Check() {
	case z3.Unsat:
		return Result{Sat: false}, nil
	case z3.Unknown:
		return Result{Sat: false, Unknown: true}, nil
	}

	model := solver.Model()
	out := make(map[string]*uint256.Int, len(tr.vars))
	for name, bv := range tr.vars {
		val, ok := model.Eval(bv, true).(z3.BV)
		if !ok {
			continue
		}
		bi, isBig := val.AsBigInt()
		if !isBig {
			continue
		}
		var u uint256.Int
		u.SetFromBig(bi)
		out[name] = &u
	}
	return Result{Sat: true, Model: out}, nil
}

type translator struct {
	ctx  *z3.Context
	sort z3.Sort
	vars map[string]z3.BV
}

func newTranslator(ctx *z3.Context) *translator {
	return &translator{ctx: ctx, sort: ctx.BVSort(width), vars: make(map[string]z3.BV)}
}

func (tr *translator) zero() z3.BV { return tr.ctx.FromInt(0, tr.sort).(z3.BV) }

func (tr *translator) varFor(name string) z3.BV {
	if bv, ok := tr.vars[name]; ok {
		return bv
	}
	bv := tr.ctx.Const(name, tr.sort).(z3.BV)
	tr.vars[name] = bv
	return bv
}

// boolExpr interprets e as a boolean constraint: a recognized comparison
// translates natively, anything else is "truthy" EVM-style (nonzero).
func (tr *translator) boolExpr(e symbolic.Expr) z3.Bool {
	switch v := e.(type) {
	case *symbolic.BinOp:
		switch v.Op {
		case "==":
			return tr.bv(v.X).Eq(tr.bv(v.Y))
		case "!=":
			return tr.bv(v.X).Eq(tr.bv(v.Y)).Not()
		case "<":
			return tr.bv(v.X).ULT(tr.bv(v.Y))
		case ">":
			return tr.bv(v.X).UGT(tr.bv(v.Y))
		case "slt":
			return tr.bv(v.X).SLT(tr.bv(v.Y))
		case "sgt":
			return tr.bv(v.X).SGT(tr.bv(v.Y))
		}
	case *symbolic.UnOp:
		if v.Op == "ISZERO" {
			return tr.bv(v.X).Eq(tr.zero())
		}
	case *symbolic.MulOverflow:
		return tr.mulOverflow(v)
	}
	return tr.bv(e).Eq(tr.zero()).Not()
}

func (tr *translator) bv(e symbolic.Expr) z3.BV {
	switch v := e.(type) {
	case *symbolic.Const:
		return tr.ctx.FromBigInt(v.Val.ToBig(), tr.sort).(z3.BV)
	case *symbolic.Var:
		return tr.varFor(v.Name)
	case *symbolic.BinOp:
		return tr.binOp(v)
	case *symbolic.UnOp:
		return tr.unOp(v)
	case *symbolic.TernOp:
		return tr.ternOp(v)
	case *symbolic.IfExpr:
		return tr.boolExpr(v.Cond).IfThenElse(tr.bv(v.Then), tr.bv(v.Else)).(z3.BV)
	case *symbolic.Concat:
		return tr.concat(v)
	case *symbolic.ByteExtract:
		return tr.byteExtract(v)
	}
	// Unrecognized node: treat as an independent free variable keyed by
	// its rendered text, so the query stays satisfiable-or-not rather
	// than failing outright.
	return tr.varFor(e.String())
}

func (tr *translator) binOp(v *symbolic.BinOp) z3.BV {
	x, y := tr.bv(v.X), tr.bv(v.Y)
	switch v.Op {
	case "+":
		return x.Add(y)
	case "-":
		return x.Sub(y)
	case "*":
		return x.Mul(y)
	case "/":
		return x.UDiv(y)
	case "sdiv":
		return x.SDiv(y)
	case "%":
		return x.URem(y)
	case "smod":
		return x.SMod(y)
	case "&":
		return x.And(y)
	case "|":
		return x.Or(y)
	case "^":
		return x.Xor(y)
	case "<<":
		return x.Lsh(y)
	case ">>":
		return x.URsh(y)
	case "sar":
		return x.SRsh(y)
	case "==":
		return tr.boolAsBV(x.Eq(y))
	case "!=":
		return tr.boolAsBV(x.Eq(y).Not())
	case "<":
		return tr.boolAsBV(x.ULT(y))
	case ">":
		return tr.boolAsBV(x.UGT(y))
	case "slt":
		return tr.boolAsBV(x.SLT(y))
	case "sgt":
		return tr.boolAsBV(x.SGT(y))
	case "byte":
		return tr.byteOp(x, y)
	}
	return tr.varFor(v.String())
}

func (tr *translator) boolAsBV(b z3.Bool) z3.BV {
	return b.IfThenElse(tr.ctx.FromInt(1, tr.sort), tr.zero()).(z3.BV)
}

// byteOp models BYTE(i, x): most-significant-byte-first indexing, 0 for
// out-of-range i (spec.md §4.3).
func (tr *translator) byteOp(i, x z3.BV) z3.BV {
	shift := i.Sub(tr.ctx.FromInt(31, tr.sort)).Mul(tr.ctx.FromInt(-8, tr.sort))
	shifted := x.URsh(shift)
	return shifted.And(tr.ctx.FromInt(0xff, tr.sort).(z3.BV))
}

func (tr *translator) unOp(v *symbolic.UnOp) z3.BV {
	x := tr.bv(v.X)
	switch v.Op {
	case "NOT":
		return x.Not()
	case "ISZERO":
		return tr.boolAsBV(x.Eq(tr.zero()))
	}
	return tr.varFor(v.String())
}

// ternOp models ADDMOD/MULMOD like uint256's AddMod/MulMod: the sum or
// product is formed at 512 bits so it does not wrap at 2^256, reduced by
// n, and truncated back to 256 bits; n == 0 yields 0 as EVM defines.
func (tr *translator) ternOp(v *symbolic.TernOp) z3.BV {
	x, y, n := tr.bv(v.X), tr.bv(v.Y), tr.bv(v.N)
	xw, yw, nw := x.ZeroExt(width), y.ZeroExt(width), n.ZeroExt(width)
	var combined z3.BV
	switch v.Op {
	case "addmod":
		combined = xw.Add(yw)
	case "mulmod":
		combined = xw.Mul(yw)
	default:
		return tr.varFor(v.String())
	}
	isZero := n.Eq(tr.zero())
	return isZero.IfThenElse(tr.zero(), combined.URem(nw).Extract(uint(width-1), 0)).(z3.BV)
}

// concat folds byte-granularity parts most significant first, keeping the
// low 8 bits of each, the same way Simplify folds an all-constant Concat.
func (tr *translator) concat(v *symbolic.Concat) z3.BV {
	out := tr.zero()
	eight := tr.ctx.FromInt(8, tr.sort).(z3.BV)
	mask := tr.ctx.FromInt(0xff, tr.sort).(z3.BV)
	for _, p := range v.Parts {
		out = out.Lsh(eight).Or(tr.bv(p).And(mask))
	}
	return out
}

// mulOverflow widens both operands to 512 bits, multiplies, and reports
// whether the top 256 bits of the true product are nonzero -- the actual
// no-overflow check, unlike comparing against the wrapped MUL result
// (which already lost the bits that would prove overflow).
func (tr *translator) mulOverflow(v *symbolic.MulOverflow) z3.Bool {
	xw := tr.bv(v.X).ZeroExt(width)
	yw := tr.bv(v.Y).ZeroExt(width)
	product := xw.Mul(yw)
	hi := product.Extract(uint(2*width-1), uint(width))
	return hi.Eq(tr.zero()).Not()
}

func (tr *translator) byteExtract(v *symbolic.ByteExtract) z3.BV {
	of := tr.bv(v.Of)
	totalBits := uint(v.Size * 8)
	hi := totalBits - uint(v.Index*8) - 1
	lo := totalBits - uint(v.Index*8) - 8
	extracted := of.Extract(hi, lo)
	return extracted.ZeroExt(width - 8)
}
