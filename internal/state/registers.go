// Package state is the state-container layer (spec.md §4.2, C2): SSA
// registers, byte-addressed versioned memory, keyed versioned storage, and
// the immutable per-contract environment, aggregated into a State.
//
// Grounded on the teacher's core/vm Stack/Memory/StateDB split
// (jump_table.go's executionFunc signature takes *Memory, *Stack
// separately; interface.go's StateDB is the storage/account boundary) —
// generalized from "one concrete call frame" to "one symbolic trace's
// register file, memory, and storage", each independently fork-cloneable.
package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/core-coin/conkas/internal/symbolic"
)

// Registers maps SSA index -> Word (spec.md §3 "Registers"). Reads of
// unset indices return "undefined", propagated as the second return value.
type Registers struct {
	values map[int]symbolic.Word
}

func NewRegisters() *Registers {
	return &Registers{values: make(map[int]symbolic.Word)}
}

// Get returns the word at index i, or ok=false if never set.
func (r *Registers) Get(i int) (symbolic.Word, bool) {
	w, ok := r.values[i]
	return w, ok
}

// Set normalizes concrete values are already canonical 256-bit words
// (symbolic.Word carries its own canonical concrete encoding), so Set is a
// plain overwrite: writes to the same index replace the prior value.
func (r *Registers) Set(i int, w symbolic.Word) {
	r.values[i] = w
}

// Fingerprint renders a deterministic summary of every set register,
// ordered by index, for use in AnalyzedBlock content equality.
func (r *Registers) Fingerprint() string {
	keys := make([]int, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%d=%s;", k, r.values[k].String())
	}
	return b.String()
}

// Clone performs the shallow copy on trace fork spec.md §3 specifies:
// Word is an immutable value type, so copying the index->Word map entries
// is sufficient — no later mutation of one trace's registers can be seen
// through another's.
func (r *Registers) Clone() *Registers {
	out := make(map[int]symbolic.Word, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return &Registers{values: out}
}
