package symbolic

import (
	"github.com/holiman/uint256"
)

// Word is a 256-bit value that is either concrete or symbolic (spec.md §3
// "Value"). The zero Word holds no value: IsConcrete reports false and Expr
// returns nil, so every usable Word comes from one of the constructors
// below.
type Word struct {
	concrete bool
	val      *uint256.Int
	expr     Expr
}

var zero = uint256.NewInt(0)
var one = uint256.NewInt(1)
var maxU256 = func() *uint256.Int {
	var m uint256.Int
	m.SetAllOne()
	return &m
}()

// FromUint256 wraps a concrete value.
func FromUint256(v *uint256.Int) Word {
	c := *v
	return Word{concrete: true, val: &c}
}

// FromUint64 wraps a small concrete value.
func FromUint64(v uint64) Word {
	return Word{concrete: true, val: uint256.NewInt(v)}
}

// FromBytes wraps a big-endian byte string, left-padded/truncated to 256
// bits (spec.md §3 "concrete values round-trip through a canonical 32-byte
// big-endian encoding").
func FromBytes(b []byte) Word {
	var v uint256.Int
	v.SetBytes(b)
	return Word{concrete: true, val: &v}
}

// NewSymbol builds a fresh symbolic word carrying a free variable of the
// given name. Names follow the wire convention of spec.md §6.
func NewSymbol(name string) Word {
	return Word{concrete: false, expr: &Var{Name: name}}
}

// FromExpr simplifies e and wraps the result, folding down to a concrete
// Word if simplification fully resolved it.
func FromExpr(e Expr) Word {
	s := Simplify(e)
	if c, ok := s.(*Const); ok {
		return Word{concrete: true, val: c.Val}
	}
	return Word{concrete: false, expr: s}
}

func (w Word) IsConcrete() bool { return w.concrete }
func (w Word) IsSymbolic() bool { return !w.concrete }

// Uint256 returns the underlying concrete value; callers must check
// IsConcrete first.
func (w Word) Uint256() *uint256.Int {
	if w.concrete {
		return w.val
	}
	return zero
}

// Expr returns the symbolic expression tree, wrapping a concrete value in
// a Const node on demand.
func (w Word) Expr() Expr {
	if w.concrete {
		return &Const{Val: w.val}
	}
	return w.expr
}

func (w Word) String() string {
	if w.concrete {
		return w.val.Hex()
	}
	return w.expr.String()
}

// AllConcrete reports whether every given word is concrete.
func AllConcrete(ws ...Word) bool {
	for _, w := range ws {
		if !w.concrete {
			return false
		}
	}
	return true
}

func binWord(op string, a, b Word, fold func(r, x, y *uint256.Int)) Word {
	if a.concrete && b.concrete {
		var r uint256.Int
		fold(&r, a.val, b.val)
		return FromUint256(&r)
	}
	return FromExpr(&BinOp{Op: op, X: a.Expr(), Y: b.Expr()})
}

func Add(a, b Word) Word { return binWord("+", a, b, func(r, x, y *uint256.Int) { r.Add(x, y) }) }
func Sub(a, b Word) Word { return binWord("-", a, b, func(r, x, y *uint256.Int) { r.Sub(x, y) }) }
func Mul(a, b Word) Word { return binWord("*", a, b, func(r, x, y *uint256.Int) { r.Mul(x, y) }) }

// Div is unsigned division; division by zero yields 0 (EVM semantics,
// spec.md §4.1).
func Div(a, b Word) Word {
	return binWord("/", a, b, func(r, x, y *uint256.Int) {
		if y.IsZero() {
			r.Clear()
			return
		}
		r.Div(x, y)
	})
}

func SDiv(a, b Word) Word {
	return binWord("sdiv", a, b, func(r, x, y *uint256.Int) {
		if y.IsZero() {
			r.Clear()
			return
		}
		r.SDiv(x, y)
	})
}

func Mod(a, b Word) Word {
	return binWord("%", a, b, func(r, x, y *uint256.Int) {
		if y.IsZero() {
			r.Clear()
			return
		}
		r.Mod(x, y)
	})
}

func SMod(a, b Word) Word {
	return binWord("smod", a, b, func(r, x, y *uint256.Int) {
		if y.IsZero() {
			r.Clear()
			return
		}
		r.SMod(x, y)
	})
}

// AddMod and MulMod are ternary; modulus 0 yields 0.
func AddMod(a, b, n Word) Word {
	if AllConcrete(a, b, n) {
		var r uint256.Int
		if n.val.IsZero() {
			return FromUint256(&r)
		}
		r.AddMod(a.val, b.val, n.val)
		return FromUint256(&r)
	}
	return FromExpr(&TernOp{Op: "addmod", X: a.Expr(), Y: b.Expr(), N: n.Expr()})
}

func MulMod(a, b, n Word) Word {
	if AllConcrete(a, b, n) {
		var r uint256.Int
		if n.val.IsZero() {
			return FromUint256(&r)
		}
		r.MulMod(a.val, b.val, n.val)
		return FromUint256(&r)
	}
	return FromExpr(&TernOp{Op: "mulmod", X: a.Expr(), Y: b.Expr(), N: n.Expr()})
}

// Exp approximates any symbolic exponentiation as a fresh symbolic word
// (spec.md §4.1, §1 non-goals: hashing/returns/exponentiation with symbolic
// operands are approximated). name should be the SSA result's symbol name.
func Exp(base, exponent Word, freshName string) Word {
	if AllConcrete(base, exponent) {
		var r uint256.Int
		r.Exp(base.val, exponent.val)
		return FromUint256(&r)
	}
	return NewSymbol(freshName)
}

// SignExtend implements SIGNEXTEND(b, x): sign-extend x from byte index b
// (0 = least significant byte). b >= 31 is identity (spec.md §4.3).
func SignExtend(b, x Word) Word {
	if AllConcrete(b, x) {
		if b.val.Cmp(uint256.NewInt(31)) >= 0 {
			return x
		}
		byteIdx := uint(b.val.Uint64())
		bitIdx := byteIdx*8 + 7
		var mask, signBit uint256.Int
		signBit.Lsh(one, bitIdx)
		var r uint256.Int
		r.And(x.val, andMaskBelow(bitIdx+1))
		if !signBitSet(x.val, bitIdx) {
			return FromUint256(&r)
		}
		mask.Not(andMaskBelow(bitIdx + 1))
		r.Or(&r, &mask)
		return FromUint256(&r)
	}
	return FromExpr(&BinOp{Op: "signextend", X: b.Expr(), Y: x.Expr()})
}

func andMaskBelow(bits uint) *uint256.Int {
	if bits >= 256 {
		var m uint256.Int
		m.SetAllOne()
		return &m
	}
	var m uint256.Int
	m.Lsh(one, bits)
	var one256 uint256.Int
	one256.SetOne()
	m.Sub(&m, &one256)
	return &m
}

func signBitSet(x *uint256.Int, bitIdx uint) bool {
	var shifted uint256.Int
	shifted.Rsh(x, bitIdx)
	var lsb uint256.Int
	lsb.And(&shifted, one)
	return !lsb.IsZero()
}

// Shl/Shr/Sar: shifts >= 256 produce 0 (or the sign bit repeated, for Sar).
func Shl(shift, x Word) Word {
	return binWord("<<", shift, x, func(r, s, v *uint256.Int) {
		if !s.IsUint64() || s.Uint64() >= 256 {
			r.Clear()
			return
		}
		r.Lsh(v, uint(s.Uint64()))
	})
}

func Shr(shift, x Word) Word {
	return binWord(">>", shift, x, func(r, s, v *uint256.Int) {
		if !s.IsUint64() || s.Uint64() >= 256 {
			r.Clear()
			return
		}
		r.Rsh(v, uint(s.Uint64()))
	})
}

func Sar(shift, x Word) Word {
	return binWord("sar", shift, x, func(r, s, v *uint256.Int) {
		n := uint(255)
		if s.IsUint64() && s.Uint64() < 256 {
			n = uint(s.Uint64())
		}
		r.SRsh(v, n)
	})
}

func Lt(a, b Word) Word  { return boolWord("<", a, b, func(x, y *uint256.Int) bool { return x.Lt(y) }) }
func Gt(a, b Word) Word  { return boolWord(">", a, b, func(x, y *uint256.Int) bool { return x.Gt(y) }) }
func Slt(a, b Word) Word { return boolWord("slt", a, b, func(x, y *uint256.Int) bool { return x.Slt(y) }) }
func Sgt(a, b Word) Word { return boolWord("sgt", a, b, func(x, y *uint256.Int) bool { return x.Sgt(y) }) }
func Eq(a, b Word) Word  { return boolWord("==", a, b, func(x, y *uint256.Int) bool { return x.Eq(y) }) }

func boolWord(op string, a, b Word, pred func(x, y *uint256.Int) bool) Word {
	if a.concrete && b.concrete {
		if pred(a.val, b.val) {
			return FromUint256(one)
		}
		return FromUint256(zero)
	}
	return FromExpr(&BinOp{Op: op, X: a.Expr(), Y: b.Expr()})
}

func IsZero(a Word) Word {
	if a.concrete {
		if a.val.IsZero() {
			return FromUint256(one)
		}
		return FromUint256(zero)
	}
	return FromExpr(&UnOp{Op: "ISZERO", X: a.expr})
}

func And(a, b Word) Word { return binWord("&", a, b, func(r, x, y *uint256.Int) { r.And(x, y) }) }
func Or(a, b Word) Word  { return binWord("|", a, b, func(r, x, y *uint256.Int) { r.Or(x, y) }) }
func Xor(a, b Word) Word { return binWord("^", a, b, func(r, x, y *uint256.Int) { r.Xor(x, y) }) }

// Not is 2^256 - 1 - x (spec.md §4.3).
func Not(a Word) Word {
	if a.concrete {
		var r uint256.Int
		r.Sub(maxU256, a.val)
		return FromUint256(&r)
	}
	return FromExpr(&UnOp{Op: "NOT", X: a.expr})
}

// Byte returns byte index i (0 = most significant) of x, or 0 if i > 31.
func Byte(i, x Word) Word {
	if AllConcrete(i, x) {
		if i.val.Cmp(uint256.NewInt(31)) > 0 {
			return FromUint256(zero)
		}
		idx := uint(i.val.Uint64())
		shift := (31 - idx) * 8
		var r uint256.Int
		r.Rsh(x.val, shift)
		r.And(&r, uint256.NewInt(0xff))
		return FromUint256(&r)
	}
	return FromExpr(&BinOp{Op: "byte", X: i.Expr(), Y: x.Expr()})
}
