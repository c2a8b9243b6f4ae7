package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/holiman/uint256"

	"github.com/core-coin/conkas/internal/symbolic"
)

// Storage is the keyed, versioned storage container of spec.md §3/§4.2.
// Concrete keys are compared by value; symbolic keys are compared by Go
// pointer identity of the underlying symbolic.Expr ("distinct symbolic
// expressions are distinct keys even if semantically equal" — spec.md §3).
type Storage struct {
	concrete map[string][]symbolic.Word
	symbolic []symbolicSlot
}

type symbolicSlot struct {
	key   symbolic.Expr
	stack []symbolic.Word
}

func NewStorage() *Storage {
	return &Storage{concrete: make(map[string][]symbolic.Word)}
}

func (s *Storage) findSymbolic(key symbolic.Expr) *symbolicSlot {
	for i := range s.symbolic {
		if s.symbolic[i].key == key {
			return &s.symbolic[i]
		}
	}
	return nil
}

// Store writes value at key, pushing a new version onto that key's stack.
func (s *Storage) Store(key symbolic.Word, value symbolic.Word) {
	if key.IsConcrete() {
		k := key.Uint256().Hex()
		s.concrete[k] = append(s.concrete[k], value)
		return
	}
	expr := key.Expr()
	if slot := s.findSymbolic(expr); slot != nil {
		slot.stack = append(slot.stack, value)
		return
	}
	s.symbolic = append(s.symbolic, symbolicSlot{key: expr, stack: []symbolic.Word{value}})
}

// Load reads key at the given version (-1 = latest). If the key was never
// written, it returns a fresh symbolic word named per spec.md §4.3's SLOAD
// convention ("storage,<key>,<"sym"|"conc">") and ok=false.
func (s *Storage) Load(key symbolic.Word, version int) (symbolic.Word, bool) {
	var stack []symbolic.Word
	if key.IsConcrete() {
		stack = s.concrete[key.Uint256().Hex()]
	} else if slot := s.findSymbolic(key.Expr()); slot != nil {
		stack = slot.stack
	}
	if len(stack) == 0 {
		return s.freshFor(key), false
	}
	idx := len(stack) - 1
	if version < -1 {
		idx += version + 1
	}
	if idx < 0 {
		return s.freshFor(key), false
	}
	return stack[idx], true
}

func (s *Storage) freshFor(key symbolic.Word) symbolic.Word {
	if key.IsConcrete() {
		return symbolic.NewSymbol(symbolic.StorageVarName(key.Uint256().Dec(), false))
	}
	return symbolic.NewSymbol(symbolic.StorageVarName(key.Expr().String(), true))
}

// Fingerprint renders a deterministic summary of storage's content for use
// in AnalyzedBlock content equality. Symbolic keys are identified by their
// Expr's pointer identity, consistent with Store/Load's own key semantics.
func (s *Storage) Fingerprint() string {
	keys := make([]string, 0, len(s.concrete))
	for k := range s.concrete {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(":[")
		for _, w := range s.concrete[k] {
			fmt.Fprintf(&b, "%s,", w.String())
		}
		b.WriteString("];")
	}
	for _, slot := range s.symbolic {
		fmt.Fprintf(&b, "%p:[", slot.key)
		for _, w := range slot.stack {
			fmt.Fprintf(&b, "%s,", w.String())
		}
		b.WriteString("];")
	}
	return b.String()
}

// Clone deep-copies every key's version stack (spec.md §9 "Deep clone on
// fork"). Symbolic keys keep the same Expr pointer (identity, not the
// stack, is what the key equality hinges on).
func (s *Storage) Clone() *Storage {
	concrete := make(map[string][]symbolic.Word, len(s.concrete))
	for k, v := range s.concrete {
		cp := make([]symbolic.Word, len(v))
		copy(cp, v)
		concrete[k] = cp
	}
	sym := make([]symbolicSlot, len(s.symbolic))
	for i, slot := range s.symbolic {
		cp := make([]symbolic.Word, len(slot.stack))
		copy(cp, slot.stack)
		sym[i] = symbolicSlot{key: slot.key, stack: cp}
	}
	return &Storage{concrete: concrete, symbolic: sym}
}

// LookupByDescriptor resolves a storage cell from the textual key
// descriptor the SLOAD naming convention embeds (spec.md §6, §9 "Symbolic
// variable names as a side channel"): a decimal string for a concrete key,
// or an Expr.String() rendering for a symbolic one, matched by content
// since the original Expr object isn't recoverable from the name alone.
// Used by the reentrancy and TOD analyses, which only have the name to go
// on.
func (s *Storage) LookupByDescriptor(keyDesc string, isSymbolic bool, version int) (symbolic.Word, bool) {
	if !isSymbolic {
		var k uint256.Int
		if err := k.SetFromDecimal(keyDesc); err != nil {
			return symbolic.Word{}, false
		}
		return s.Load(symbolic.FromUint256(&k), version)
	}
	for _, slot := range s.symbolic {
		if slot.key.String() == keyDesc {
			if len(slot.stack) == 0 {
				return symbolic.Word{}, false
			}
			idx := len(slot.stack) - 1
			if version < -1 {
				idx += version + 1
			}
			if idx < 0 {
				return symbolic.Word{}, false
			}
			return slot.stack[idx], true
		}
	}
	return symbolic.Word{}, false
}

// CurrentValue returns the value a key holds at its latest version,
// ignoring the `ignoreMostRecent` most recent writes — used
// by the reentrancy analysis to reconstruct a pre-call storage value while
// discounting writes the same block performed after the CALL (spec.md §4.8
// "pre-call check").
func (s *Storage) CurrentValue(key symbolic.Word, ignoreMostRecent int) (symbolic.Word, bool) {
	return s.Load(key, -1-ignoreMostRecent)
}
