package state

import (
	"testing"

	"github.com/core-coin/conkas/internal/symbolic"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLoadRoundTrip(t *testing.T) {
	m := NewMemory()
	v := symbolic.FromUint64(0x1234)
	m.Store(0, v, 32)
	got := m.Load(0, 32, -1)
	require.True(t, got.IsConcrete())
	require.Equal(t, v.Uint256().Hex(), got.Uint256().Hex())
	require.EqualValues(t, 32, m.Size())
}

func TestMemoryVersionedLoad(t *testing.T) {
	m := NewMemory()
	m.Store(0, symbolic.FromUint64(1), 32)
	m.Store(0, symbolic.FromUint64(2), 32)
	require.Equal(t, uint64(2), m.Load(0, 32, -1).Uint256().Uint64())
	require.Equal(t, uint64(1), m.Load(0, 32, -2).Uint256().Uint64())
}

func TestMemorySymbolicOffsetRoundTrip(t *testing.T) {
	m := NewMemory()
	offset := symbolic.NewSymbol("calldataload_0")
	v := symbolic.FromUint64(42)
	m.StoreSymbolicOffset(offset.Expr(), v)
	got := m.LoadSymbolicOffset(offset.Expr())
	require.True(t, got.IsConcrete())
	require.Equal(t, uint64(42), got.Uint256().Uint64())
	require.EqualValues(t, 0, m.Size())
}

func TestStorageRoundTripAndVersioning(t *testing.T) {
	s := NewStorage()
	key := symbolic.FromUint64(0)
	s.Store(key, symbolic.FromUint64(100))
	s.Store(key, symbolic.FromUint64(200))
	latest, ok := s.Load(key, -1)
	require.True(t, ok)
	require.Equal(t, uint64(200), latest.Uint256().Uint64())
	prev, ok := s.Load(key, -2)
	require.True(t, ok)
	require.Equal(t, uint64(100), prev.Uint256().Uint64())
}

func TestStorageUnsetKeyIsFreshSymbol(t *testing.T) {
	s := NewStorage()
	key := symbolic.FromUint64(7)
	w, ok := s.Load(key, -1)
	require.False(t, ok)
	require.True(t, w.IsSymbolic())
	require.Contains(t, w.Expr().String(), "storage,7,conc")
}

func TestStorageSymbolicKeyIdentity(t *testing.T) {
	s := NewStorage()
	k1 := symbolic.NewSymbol("callvalue")
	s.Store(k1, symbolic.FromUint64(9))
	got, ok := s.Load(k1, -1)
	require.True(t, ok)
	require.Equal(t, uint64(9), got.Uint256().Uint64())

	k2 := symbolic.NewSymbol("callvalue") // distinct object, same name
	_, ok = s.Load(k2, -1)
	require.False(t, ok, "distinct symbolic expressions are distinct keys even if semantically equal")
}

func TestCloneIsDeep(t *testing.T) {
	st := New(NewEnvironment("c", nil))
	st.Storage.Store(symbolic.FromUint64(1), symbolic.FromUint64(5))
	clone := st.Clone()
	clone.Storage.Store(symbolic.FromUint64(1), symbolic.FromUint64(6))

	orig, _ := st.Storage.Load(symbolic.FromUint64(1), -1)
	require.Equal(t, uint64(5), orig.Uint256().Uint64())
}
