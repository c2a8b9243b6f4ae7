package symbolic

import "github.com/holiman/uint256"

// Simplify returns an equisatisfiable, idempotent-under-repeated-calls
// rewrite of e: constant folding, identity absorption, and collapsing an
// IfExpr whose condition is already a constant. spec.md §4.1 requires
// simplify to be idempotent and satisfiability-preserving; we achieve
// idempotence structurally (every rewrite produces a tree simplify would
// leave unchanged) rather than via a fixed-point loop.
func Simplify(e Expr) Expr {
	switch n := e.(type) {
	case *Const, *Var:
		return n
	case *UnOp:
		x := Simplify(n.X)
		if c, ok := x.(*Const); ok {
			if v, ok := foldUnary(n.Op, c.Val); ok {
				return &Const{Val: v}
			}
		}
		return &UnOp{Op: n.Op, X: x}
	case *BinOp:
		x, y := Simplify(n.X), Simplify(n.Y)
		cx, xIsConst := x.(*Const)
		cy, yIsConst := y.(*Const)
		if xIsConst && yIsConst {
			if v, ok := foldBinary(n.Op, cx.Val, cy.Val); ok {
				return &Const{Val: v}
			}
		}
		if simplified, ok := absorb(n.Op, x, y); ok {
			return simplified
		}
		return &BinOp{Op: n.Op, X: x, Y: y}
	case *TernOp:
		x, y, m := Simplify(n.X), Simplify(n.Y), Simplify(n.N)
		cx, xc := x.(*Const)
		cy, yc := y.(*Const)
		cm, mc := m.(*Const)
		if xc && yc && mc {
			var r uint256.Int
			if cm.Val.IsZero() {
				return &Const{Val: &r}
			}
			switch n.Op {
			case "addmod":
				r.AddMod(cx.Val, cy.Val, cm.Val)
			case "mulmod":
				r.MulMod(cx.Val, cy.Val, cm.Val)
			}
			return &Const{Val: &r}
		}
		return &TernOp{Op: n.Op, X: x, Y: y, N: m}
	case *IfExpr:
		cond := Simplify(n.Cond)
		then := Simplify(n.Then)
		els := Simplify(n.Else)
		if c, ok := cond.(*Const); ok {
			if c.Val.IsZero() {
				return els
			}
			return then
		}
		return &IfExpr{Cond: cond, Then: then, Else: els}
	case *Concat:
		parts := make([]Expr, len(n.Parts))
		allConst := true
		for i, p := range n.Parts {
			sp := Simplify(p)
			parts[i] = sp
			if _, ok := sp.(*Const); !ok {
				allConst = false
			}
		}
		if allConst && len(parts) > 0 {
			var v uint256.Int
			for _, p := range parts {
				v.Lsh(&v, 8)
				b := p.(*Const).Val
				var lo uint256.Int
				lo.And(b, uint256.NewInt(0xff))
				v.Or(&v, &lo)
			}
			return &Const{Val: &v}
		}
		return &Concat{Parts: parts}
	case *ByteExtract:
		of := Simplify(n.Of)
		if c, ok := of.(*Const); ok {
			shift := uint((n.Size - 1 - n.Index) * 8)
			var v uint256.Int
			v.Rsh(c.Val, shift)
			v.And(&v, uint256.NewInt(0xff))
			return &Const{Val: &v}
		}
		return &ByteExtract{Of: of, Size: n.Size, Index: n.Index}
	default:
		return e
	}
}

// IsLiteralTrue/IsLiteralFalse report whether a simplified expression
// reduced all the way down to the boolean constant 1/0 — used where an
// analysis needs to distinguish "provably true/false" from "still
// symbolic" (spec.md §4.8 reentrancy post-call check, §9 "the interaction
// with simplify is subtle").
func IsLiteralTrue(e Expr) bool {
	c, ok := e.(*Const)
	return ok && !c.Val.IsZero()
}

func IsLiteralFalse(e Expr) bool {
	c, ok := e.(*Const)
	return ok && c.Val.IsZero()
}

func foldUnary(op string, x *uint256.Int) (*uint256.Int, bool) {
	var r uint256.Int
	switch op {
	case "NOT":
		r.Not(x)
	case "ISZERO":
		if x.IsZero() {
			r.SetOne()
		}
	default:
		return nil, false
	}
	return &r, true
}

func foldBinary(op string, x, y *uint256.Int) (*uint256.Int, bool) {
	var r uint256.Int
	switch op {
	case "+":
		r.Add(x, y)
	case "-":
		r.Sub(x, y)
	case "*":
		r.Mul(x, y)
	case "/":
		r.Div(x, y)
	case "sdiv":
		r.SDiv(x, y)
	case "%":
		r.Mod(x, y)
	case "smod":
		r.SMod(x, y)
	case "&":
		r.And(x, y)
	case "|":
		r.Or(x, y)
	case "^":
		r.Xor(x, y)
	case "<<":
		if !y.IsUint64() || y.Uint64() >= 256 {
			r.Clear()
		} else {
			r.Lsh(x, uint(y.Uint64()))
		}
	case ">>":
		if !y.IsUint64() || y.Uint64() >= 256 {
			r.Clear()
		} else {
			r.Rsh(x, uint(y.Uint64()))
		}
	case "sar":
		shift := uint(255)
		if y.IsUint64() && y.Uint64() < 256 {
			shift = uint(y.Uint64())
		}
		r.SRsh(x, shift)
	case "<":
		if x.Lt(y) {
			r.SetOne()
		}
	case ">":
		if x.Gt(y) {
			r.SetOne()
		}
	case "slt":
		if x.Slt(y) {
			r.SetOne()
		}
	case "sgt":
		if x.Sgt(y) {
			r.SetOne()
		}
	case "==":
		if x.Eq(y) {
			r.SetOne()
		}
	case "!=":
		if !x.Eq(y) {
			r.SetOne()
		}
	default:
		return nil, false
	}
	return &r, true
}

// absorb applies identity-element rewrites that do not require both
// operands to be constant (e.g. x+0 = x even when x is symbolic).
func absorb(op string, x, y Expr) (Expr, bool) {
	cx, xConst := x.(*Const)
	cy, yConst := y.(*Const)
	switch op {
	case "==":
		if x.String() == y.String() {
			return &Const{Val: uint256.NewInt(1)}, true
		}
	case "!=":
		if x.String() == y.String() {
			return &Const{Val: uint256.NewInt(0)}, true
		}
	case "+":
		if yConst && cy.Val.IsZero() {
			return x, true
		}
		if xConst && cx.Val.IsZero() {
			return y, true
		}
	case "-":
		if yConst && cy.Val.IsZero() {
			return x, true
		}
	case "*":
		if yConst && cy.Val.Eq(uint256.NewInt(1)) {
			return x, true
		}
		if xConst && cx.Val.Eq(uint256.NewInt(1)) {
			return y, true
		}
		if (xConst && cx.Val.IsZero()) || (yConst && cy.Val.IsZero()) {
			return &Const{Val: uint256.NewInt(0)}, true
		}
	case "^":
		if yConst && cy.Val.IsZero() {
			return x, true
		}
	case "|":
		if yConst && cy.Val.IsZero() {
			return x, true
		}
	case "&":
		if yConst && cy.Val.IsZero() {
			return &Const{Val: uint256.NewInt(0)}, true
		}
	}
	return nil, false
}
