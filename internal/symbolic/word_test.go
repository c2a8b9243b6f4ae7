package symbolic

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestAddWraps(t *testing.T) {
	max := FromUint256(maxU256)
	two := FromUint64(2)
	got := Add(max, two)
	require.True(t, got.IsConcrete())
	require.Equal(t, uint256.NewInt(1).Hex(), got.Uint256().Hex())
}

func TestDivByZero(t *testing.T) {
	a := FromUint64(10)
	b := FromUint64(0)
	require.True(t, Div(a, b).Uint256().IsZero())
	require.True(t, Mod(a, b).Uint256().IsZero())
}

func TestAddModZeroModulus(t *testing.T) {
	a, b, n := FromUint64(5), FromUint64(5), FromUint64(0)
	require.True(t, AddMod(a, b, n).Uint256().IsZero())
}

func TestNot(t *testing.T) {
	got := Not(FromUint64(0))
	require.Equal(t, maxU256.Hex(), got.Uint256().Hex())
}

func TestSignExtendIdentityAboveThreshold(t *testing.T) {
	x := FromUint64(0xff)
	got := SignExtend(FromUint64(32), x)
	require.Equal(t, x.Uint256().Hex(), got.Uint256().Hex())
}

func TestSymbolicAddSimplifiesIdentity(t *testing.T) {
	sym := NewSymbol("callvalue")
	got := Add(sym, FromUint64(0))
	require.True(t, got.IsSymbolic())
	require.Equal(t, "callvalue", got.Expr().String())
}

func TestMulSymbolicFoldsConcreteZero(t *testing.T) {
	sym := NewSymbol("callvalue")
	got := Mul(sym, FromUint64(0))
	require.True(t, got.IsConcrete())
	require.True(t, got.Uint256().IsZero())
}
