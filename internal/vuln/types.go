// Package vuln implements the five vulnerability analyses of spec.md §4.8
// (C7): each walks the finished traces of an exploration and emits
// Vulnerability records, consulting the solver facade (C6) over symbolic
// queries it cannot resolve by construction alone.
package vuln

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/core-coin/conkas/internal/engine"
)

// Type names a vulnerability class, rendered verbatim in the finding
// output (spec.md §6 "Vulnerability: <Type>.").
type Type string

// The Reentrancy/TimeManipulation/TransactionOrderingDependence/
// UncheckedLowLevelCall constants carry a "Finding" suffix the rendered
// string (spec.md §6 "Vulnerability: <Type>.") does not: each analysis's
// entry point function already claims the bare name.
const (
	IntegerOverflow                      Type = "Integer Overflow"
	IntegerUnderflow                     Type = "Integer Underflow"
	ReentrancyFinding                    Type = "Reentrancy"
	TimeManipulationFinding              Type = "Time Manipulation"
	TransactionOrderingDependenceFinding Type = "Transaction Ordering Dependence"
	UncheckedLowLevelCallFinding         Type = "Unchecked Low Level Call"
)

// Vulnerability is a single finding (spec.md §3 "Vulnerability", §6
// finding-output format).
type Vulnerability struct {
	Type         Type
	Block        *engine.AnalyzedBlock
	FunctionName string
	PC           uint64
	// InstructionOffset is the instruction's SSA index, used for
	// equality when no source line is available.
	InstructionOffset int
	// LineNumber is filled in by the driver after consulting C8; nil
	// until then.
	LineNumber *int
	// Model is the SMT counter-example, keyed by free-variable name, when
	// one was computed.
	Model map[string]*uint256.Int
}

// Key dedupes by (type, line_number or instruction_offset), per spec.md
// §3 "Equality uses (type, line_number or instruction_offset)".
func (v *Vulnerability) Key() string {
	if v.LineNumber != nil {
		return fmt.Sprintf("%s@line:%d", v.Type, *v.LineNumber)
	}
	return fmt.Sprintf("%s@off:%d", v.Type, v.InstructionOffset)
}

// Dedup collapses findings that share a Key, keeping the first occurrence.
func Dedup(vs []*Vulnerability) []*Vulnerability {
	seen := make(map[string]bool, len(vs))
	out := make([]*Vulnerability, 0, len(vs))
	for _, v := range vs {
		k := v.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

// Options controls the shared analysis behavior of spec.md §4.8's opening
// paragraph: dedup AnalyzedBlocks across traces, and either stop at the
// first finding per analysis or collect all.
type Options struct {
	FindAll bool
	// MaxDepth matches the explorer's configured bound. No analysis reads
	// it: the unchecked-low-level-call analysis skips depth-bound-hit
	// traces through Trace.HitDepthBound.
	MaxDepth int
}

// visitedBlocks dedupes AnalyzedBlocks across traces by content key
// (spec.md §4.8 "deduplicate AnalyzedBlocks across traces").
type visitedBlocks map[string]bool

func (v visitedBlocks) seen(ab *engine.AnalyzedBlock) bool {
	k := ab.Key()
	if v[k] {
		return true
	}
	v[k] = true
	return false
}
