package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/core-coin/conkas/internal/symbolic"
)

// Memory is the byte-addressed, versioned memory container of spec.md §3/
// §4.2. Each byte position keeps an append-only stack of single-byte
// words; a load reconstructs a range by concatenating the per-byte stacks
// at a chosen version (default latest, negative counts back from the
// latest — spec.md §9 "Versioned memory & storage stacks").
//
// Writes to a symbolic offset cannot be placed into the per-byte stacks
// (the actual touched positions aren't known), so they are recorded
// separately and do not advance Size, exactly as spec.md §3 specifies.
type Memory struct {
	cells      map[uint64][]symbolic.Word
	size       uint64
	symWrites  []symWrite
}

type symWrite struct {
	offsetKey string
	value     symbolic.Word
}

func NewMemory() *Memory {
	return &Memory{cells: make(map[uint64][]symbolic.Word)}
}

func (m *Memory) Size() uint64 { return m.size }

func ceil32(n uint64) uint64 {
	return (n + 31) / 32 * 32
}

// Extend raises Size to ceil32(off+len) if that is larger than the
// current size (spec.md §3 "Size advances only via explicit extension").
func (m *Memory) Extend(off, length uint64) {
	if length == 0 {
		return
	}
	need := ceil32(off + length)
	if need > m.size {
		m.size = need
	}
}

// Store writes value, decomposed into `size` big-endian bytes, at byte
// offset off (concrete). A later store at the same position pushes a new
// version rather than overwriting, so an earlier write remains reachable
// via a negative version (spec.md §3).
func (m *Memory) Store(off uint64, value symbolic.Word, size int) {
	m.Extend(off, uint64(size))
	for i := 0; i < size; i++ {
		b := byteOf(value, size, i)
		pos := off + uint64(i)
		m.cells[pos] = append(m.cells[pos], b)
	}
}

// StoreSymbolicOffset records a store whose destination offset is itself
// symbolic; it does not touch Size or the per-byte stacks (spec.md §3).
func (m *Memory) StoreSymbolicOffset(offsetExpr symbolic.Expr, value symbolic.Word) {
	key := symbolic.Simplify(offsetExpr).String()
	m.symWrites = append(m.symWrites, symWrite{offsetKey: key, value: value})
}

func byteOf(value symbolic.Word, size, index int) symbolic.Word {
	if value.IsConcrete() {
		shift := uint((size - 1 - index) * 8)
		v := value.Uint256()
		shifted := symbolic.FromUint256(v)
		shifted = symbolic.Shr(symbolic.FromUint64(uint64(shift)), shifted)
		return symbolic.And(shifted, symbolic.FromUint64(0xff))
	}
	return symbolic.FromExpr(&symbolic.ByteExtract{Of: value.Expr(), Size: size, Index: index})
}

func (m *Memory) readByte(pos uint64, version int) symbolic.Word {
	stack := m.cells[pos]
	if len(stack) == 0 {
		return symbolic.FromUint64(0)
	}
	idx := len(stack) - 1
	if version < -1 {
		idx += version + 1
	}
	if idx < 0 {
		return symbolic.FromUint64(0)
	}
	return stack[idx]
}

// Load reconstructs a `size`-byte big-endian word starting at concrete
// offset off, at the given version (-1 = latest, -2 = the write before
// that, ...). If every byte read is concrete, the result folds to a
// concrete word; otherwise it is the simplified concatenation expression
// (spec.md §3 "Loads at symbolic offsets return the simplified expression
// formed by concatenation of the per-byte stacks" — the same
// reconstruction serves concrete-offset loads over partly symbolic bytes).
func (m *Memory) Load(off uint64, size int, version int) symbolic.Word {
	parts := make([]symbolic.Expr, size)
	for i := 0; i < size; i++ {
		parts[i] = m.readByte(off+uint64(i), version).Expr()
	}
	return symbolic.FromExpr(&symbolic.Concat{Parts: parts})
}

// LoadSymbolicOffset returns the most recent value stored by
// StoreSymbolicOffset at an offset expression identical (after
// simplification) to offsetExpr, or a fresh symbolic word named after the
// offset if none matches.
func (m *Memory) LoadSymbolicOffset(offsetExpr symbolic.Expr) symbolic.Word {
	key := symbolic.Simplify(offsetExpr).String()
	for i := len(m.symWrites) - 1; i >= 0; i-- {
		if m.symWrites[i].offsetKey == key {
			return m.symWrites[i].value
		}
	}
	return symbolic.NewSymbol("memory,sym_offset_" + key)
}

// LoadBytes reads a raw byte range for opcodes that consume bytes rather
// than a single word (CALLDATACOPY/CODECOPY/RETURN/SHA3 inputs). ok is
// true only when every byte in range is concrete.
func (m *Memory) LoadBytes(off uint64, length int, version int) (out []byte, ok bool) {
	out = make([]byte, length)
	for i := 0; i < length; i++ {
		w := m.readByte(off+uint64(i), version)
		if !w.IsConcrete() {
			return nil, false
		}
		b := w.Uint256().Bytes()
		if len(b) == 0 {
			out[i] = 0
		} else {
			out[i] = b[len(b)-1]
		}
	}
	return out, true
}

// Data returns the concrete byte image of memory up to Size, used for
// pretty-printing; symbolic bytes render as 0.
func (m *Memory) Data() []byte {
	out := make([]byte, m.size)
	for i := range out {
		w := m.readByte(uint64(i), -1)
		if w.IsConcrete() {
			b := w.Uint256().Bytes()
			if len(b) > 0 {
				out[i] = b[len(b)-1]
			}
		}
	}
	return out
}

// Fingerprint renders a deterministic summary of memory's content for use
// in AnalyzedBlock content equality: size, every cell's version stack, and
// the symbolic-offset write log, in stable order.
func (m *Memory) Fingerprint() string {
	positions := make([]uint64, 0, len(m.cells))
	for pos := range m.cells {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	var b strings.Builder
	fmt.Fprintf(&b, "size=%d;", m.size)
	for _, pos := range positions {
		fmt.Fprintf(&b, "%d:[", pos)
		for _, w := range m.cells[pos] {
			fmt.Fprintf(&b, "%s,", w.String())
		}
		b.WriteString("];")
	}
	for _, sw := range m.symWrites {
		fmt.Fprintf(&b, "sym:%s=%s;", sw.offsetKey, sw.value.String())
	}
	return b.String()
}

// Clone deep-copies memory, including every byte's version stack and the
// symbolic-offset write log (spec.md §3, §9 "Deep clone on fork").
func (m *Memory) Clone() *Memory {
	cells := make(map[uint64][]symbolic.Word, len(m.cells))
	for k, v := range m.cells {
		cp := make([]symbolic.Word, len(v))
		copy(cp, v)
		cells[k] = cp
	}
	sw := make([]symWrite, len(m.symWrites))
	copy(sw, m.symWrites)
	return &Memory{cells: cells, size: m.size, symWrites: sw}
}
